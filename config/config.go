package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/biblioenspy/biblio-service/internal/imagestore"
	"github.com/biblioenspy/biblio-service/internal/service"
	"github.com/biblioenspy/biblio-service/pkg/kafka"
	"github.com/biblioenspy/biblio-service/pkg/logger"
	"github.com/biblioenspy/biblio-service/pkg/postgres"
	"github.com/biblioenspy/biblio-service/pkg/redis"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"30s"`
	WriteTimeout time.Duration
}

type Config struct {
	Server     HTTPServer         `yaml:"server"`
	Database   postgres.DB        `yaml:"db"`
	Kafka      kafka.Config       `yaml:"kafka"`
	Redis      redis.Config       `yaml:"redis"`
	Auth       service.AuthConfig `yaml:"auth"`
	ImageStore imagestore.Config  `yaml:"imagestore"`
	Log        logger.Log         `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
