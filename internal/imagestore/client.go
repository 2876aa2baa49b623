package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/pkg/circuitbreaker"
	"github.com/biblioenspy/biblio-service/pkg/metrics"
)

type Config struct {
	BaseURL string        `envconfig:"IMAGESTORE_URL" default:"https://api.imgbackend.example/v1"`
	APIKey  string        `envconfig:"IMAGESTORE_API_KEY"`
	Timeout time.Duration `envconfig:"IMAGESTORE_TIMEOUT" default:"1m"`
}

// UploadResult is the hosted blob descriptor returned by the image host.
type UploadResult struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int64  `json:"bytes"`
	Format string `json:"format"`
}

// ProgressFunc receives the upload percentage in [0, 100].
type ProgressFunc func(pct int)

// Client uploads images to the external hosting service. Calls run behind
// a circuit breaker so a dead host fails fast as ErrUnavailable.
type Client struct {
	cfg    Config
	client *http.Client
	cb     circuitbreaker.CircuitBreaker
	log    *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb:  circuitbreaker.New(10, 10*time.Second, 0.5, 3),
		log: log.Named("imagestore"),
	}
}

// Upload sends the file to the destination folder and returns the hosted
// URL with its metadata. progress may be nil.
func (c *Client) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, progress ProgressFunc) (UploadResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, err
	}
	if err := w.WriteField("folder", folder); err != nil {
		return UploadResult{}, err
	}
	if err := w.Close(); err != nil {
		return UploadResult{}, err
	}

	var result UploadResult
	callErr := c.cb.Call(func() error {
		reader := io.Reader(&body)
		if progress != nil {
			reader = &progressReader{r: &body, total: int64(body.Len()), progress: progress}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload", reader)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return errs.ErrUnavailable
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("image host returned %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode upload response: %w", err)
		}
		return nil
	})

	if callErr != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		if errors.Is(callErr, circuitbreaker.ErrOpen) {
			return UploadResult{}, errs.ErrUnavailable
		}
		return UploadResult{}, callErr
	}
	if result.Bytes == 0 {
		result.Bytes = size
	}
	if progress != nil {
		progress(100)
	}
	metrics.Uploads.WithLabelValues("ok").Inc()
	return result, nil
}

// progressReader reports percent read of a known-size payload.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress ProgressFunc
	lastPct  int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct != p.lastPct {
			p.lastPct = pct
			p.progress(pct)
		}
	}
	return n, err
}
