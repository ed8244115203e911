package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	defaultTransformBaseURL = "http://localhost:8000"
	defaultCORSOrigin       = "http://localhost:3001"
	defaultS3Endpoint       = "s3.amazonaws.com"
	defaultS3Region         = "us-east-1"
	defaultScratchDir       = "uploads"
	defaultListenAddr       = ":8080"
)

type Config struct {
	DBDSN            string `json:"db_dsn"`
	S3Endpoint       string `json:"s3_endpoint"`
	S3Region         string `json:"s3_region"`
	S3AccessKey      string `json:"s3_access_key"`
	S3SecretKey      string `json:"s3_secret_key"`
	S3Bucket         string `json:"s3_bucket"`
	S3UseSSL         *bool  `json:"s3_use_ssl"`
	TransformBaseURL string `json:"transform_base_url"`
	CORSOrigin       string `json:"cors_origin"`
	ScratchDir       string `json:"scratch_dir"`
	ListenAddr       string `json:"listen_addr"`
}

func (c Config) UseSSL() bool {
	if c.S3UseSSL == nil {
		return true
	}
	return *c.S3UseSSL
}

func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("db_dsn is required")
	}
	if cfg.S3AccessKey == "" {
		return Config{}, fmt.Errorf("s3_access_key is required")
	}
	if cfg.S3SecretKey == "" {
		return Config{}, fmt.Errorf("s3_secret_key is required")
	}
	if cfg.S3Bucket == "" {
		return Config{}, fmt.Errorf("s3_bucket is required")
	}

	if cfg.S3Endpoint == "" {
		cfg.S3Endpoint = defaultS3Endpoint
	}
	if cfg.S3Region == "" {
		cfg.S3Region = defaultS3Region
	}
	if cfg.TransformBaseURL == "" {
		cfg.TransformBaseURL = defaultTransformBaseURL
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = defaultCORSOrigin
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = defaultScratchDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	return cfg, nil
}
