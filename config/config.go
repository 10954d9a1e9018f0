package config

import (
	"os"
	"strconv"

	"github.com/okosten/hallbook/internal/util"
)

type Config struct {
	DatabaseDSN string
	Addr        string
	CacheURL    string
	MQURL       string

	BlobDir     string
	BlobBaseURL string

	SMTPAddr     string
	SMTPHost     string
	SMTPFrom     string
	SMTPPassword string

	// MaxBookingsPerEmail caps active bookings per customer email.
	// Zero means unlimited.
	MaxBookingsPerEmail int
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseDSN:  os.Getenv("DATABASE_DSN"),
		Addr:         os.Getenv("ADDR"),
		CacheURL:     os.Getenv("CACHE_URL"),
		MQURL:        os.Getenv("RABBIT_MQ_URL"),
		BlobDir:      os.Getenv("BLOB_DIR"),
		BlobBaseURL:  os.Getenv("BLOB_BASE_URL"),
		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":4000"
	}
	if cfg.BlobDir == "" {
		cfg.BlobDir = "uploads"
	}
	if v := os.Getenv("MAX_BOOKINGS_PER_EMAIL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		cfg.MaxBookingsPerEmail = n
	}
	return cfg, nil
}
