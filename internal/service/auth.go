package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/repository"
	"github.com/biblioenspy/biblio-service/pkg/auth"
	"github.com/biblioenspy/biblio-service/pkg/redis"
)

// Mailer delivers identity mails (verification, password reset). Actual
// delivery is an external concern; the default implementation only logs.
type Mailer interface {
	SendVerification(email, token string)
	SendPasswordReset(email, token string)
}

type logMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) Mailer {
	return &logMailer{log: log.Named("mailer")}
}

func (m *logMailer) SendVerification(email, token string) {
	m.log.Info("verification mail", zap.String("email", email), zap.String("token", token))
}

func (m *logMailer) SendPasswordReset(email, token string) {
	m.log.Info("password reset mail", zap.String("email", email), zap.String("token", token))
}

type AuthConfig struct {
	TokenTTL          time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	ResetTokenTTL     time.Duration `envconfig:"AUTH_RESET_TTL" default:"1h"`
	RecentLoginWindow time.Duration `envconfig:"AUTH_RECENT_WINDOW" default:"10m"`
	JWTKey            string        `envconfig:"AUTH_JWT_KEY"`
}

type AuthService struct {
	log      *zap.Logger
	cfg      AuthConfig
	users    repository.UserRepository
	settings repository.SettingsRepository
	mailer   Mailer
	cache    *redis.Client
}

func NewAuthService(
	users repository.UserRepository,
	settings repository.SettingsRepository,
	mailer Mailer,
	cache *redis.Client,
	cfg AuthConfig,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		log:      log,
		cfg:      cfg,
		users:    users,
		settings: settings,
		mailer:   mailer,
		cache:    cache,
	}
}

type RegisterRequest struct {
	Username   string           `json:"username" validate:"required,min=3"`
	Email      string           `json:"email" validate:"required,email"`
	Password   string           `json:"password" validate:"required,min=8"`
	FullName   string           `json:"fullName" validate:"required"`
	Phone      string           `json:"phone"`
	Status     model.UserStatus `json:"status" validate:"required,oneof=STUDENT TEACHER"`
	Department string           `json:"department"`
	Level      string           `json:"level"`
}

// Register creates the account with its full free slot bank and sends the
// verification token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	cfg, err := s.settings.GetSettings(ctx)
	if err != nil {
		return err
	}
	token := uuid.NewString()
	user := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Status:       req.Status,
		Department:   req.Department,
		Level:        req.Level,
	}
	if err := s.users.CreateUser(ctx, user, token, cfg.MaxLoans); err != nil {
		return err
	}
	s.mailer.SendVerification(req.Email, token)
	return nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	username, err := s.users.VerifyEmail(ctx, token)
	if err != nil {
		return err
	}
	s.log.Info("email verified", zap.String("username", username))
	return nil
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if err == errs.ErrNotFound {
			return AuthResponse{}, errs.ErrInvalidCredentials
		}
		return AuthResponse{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return AuthResponse{}, errs.ErrInvalidCredentials
	}

	token, expiresAt, err := auth.NewToken(user.Username, string(user.Status), user.Email, user.EmailVerified, s.cfg.TokenTTL)
	if err != nil {
		return AuthResponse{}, err
	}
	s.noteRecentLogin(ctx, user.Username)
	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	token := uuid.NewString()
	if err := s.users.SetResetToken(ctx, email, token, time.Now().Add(s.cfg.ResetTokenTTL)); err != nil {
		// Do not leak which addresses exist.
		if err == errs.ErrNotFound {
			return nil
		}
		return err
	}
	s.mailer.SendPasswordReset(email, token)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.ResetPassword(ctx, token, hash)
}

// DeleteAccount removes the user. It requires a login within the recent
// window and refuses while any slot is still reserved or borrowed.
func (s *AuthService) DeleteAccount(ctx context.Context, username string) error {
	if !s.hasRecentLogin(ctx, username) {
		return errs.ErrRequiresRecentLogin
	}
	active, err := s.users.ActiveSlotCount(ctx, username)
	if err != nil {
		return err
	}
	if active > 0 {
		return errs.ErrPermissionDenied
	}
	return s.users.DeleteUser(ctx, username)
}

func (s *AuthService) Profile(ctx context.Context, username string) (model.User, error) {
	return s.users.GetUser(ctx, username)
}

func (s *AuthService) UpdateProfile(ctx context.Context, username string, upd model.ProfileUpdate) error {
	return s.users.UpdateProfile(ctx, username, upd)
}

func (s *AuthService) SetAvatar(ctx context.Context, username, url string) error {
	return s.users.SetAvatar(ctx, username, url)
}

func recentLoginKey(username string) string {
	return fmt.Sprintf("recentauth:%s", username)
}

func (s *AuthService) noteRecentLogin(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, recentLoginKey(username), time.Now().Unix(), s.cfg.RecentLoginWindow).Err(); err != nil {
		s.log.Warn("note recent login", zap.Error(err))
	}
}

func (s *AuthService) hasRecentLogin(ctx context.Context, username string) bool {
	if s.cache == nil {
		return false
	}
	n, err := s.cache.Exists(ctx, recentLoginKey(username)).Result()
	if err != nil {
		s.log.Warn("recent login lookup", zap.Error(err))
		return false
	}
	return n > 0
}
