package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hooklog/pkg/hooklog/webhook"
)

// Validate checks cfg without side effects. A malformed webhook URL is
// reported here so it surfaces at load time rather than on the first send.
func Validate(_ context.Context, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error

	if cfg.Telegram == nil || strings.TrimSpace(cfg.Webhook.URL) != "" {
		if _, err := webhook.New(cfg.Webhook.URL); err != nil {
			errs = append(errs, fmt.Errorf("webhook.url: %w", err))
		}
	}
	if _, err := cfg.WebhookTimeout(); err != nil {
		errs = append(errs, err)
	}
	if t := cfg.Telegram; t != nil {
		if strings.TrimSpace(t.Token) == "" {
			errs = append(errs, errors.New("telegram.token: required"))
		}
		if t.ChatID == 0 {
			errs = append(errs, errors.New("telegram.chat_id: required"))
		}
	}
	if _, err := cfg.Renderer(); err != nil {
		errs = append(errs, err)
	}
	for path, lvl := range map[string]string{
		"logging.level":             cfg.Logging.Level,
		"logging.webhook.min_level": cfg.Logging.Webhook.MinLevel,
	} {
		if err := validLevel(lvl); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	if cfg.Logging.Webhook.RatePerSec < 0 {
		errs = append(errs, errors.New("logging.webhook.rate_per_sec: must be >= 0"))
	}
	return errors.Join(errs...)
}

func validLevel(s string) error {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "CRITICAL", "FATAL":
		return nil
	default:
		return fmt.Errorf("unknown level %q", s)
	}
}
