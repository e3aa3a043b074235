package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hooklog/pkg/hooklog"
	"hooklog/pkg/logx"
)

type Config struct {
	Logging  LoggingConfig   `json:"logging"`
	Webhook  WebhookConfig   `json:"webhook"`
	Render   RenderConfig    `json:"render,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
	Metrics  MetricsConfig   `json:"metrics,omitempty"`
}

// WebhookConfig names the chat webhook records are delivered to.
//
// Example:
//
//	"webhook": { "url": "https://discord.com/api/webhooks/<id>/<token>", "timeout": "10s" }
type WebhookConfig struct {
	// URL is required unless the telegram transport is configured instead.
	URL       string `json:"url"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	// Timeout is a Go duration string (e.g. "5s"). Default: 10s.
	Timeout string `json:"timeout,omitempty"`
}

// RenderConfig customizes the rendered message.
type RenderConfig struct {
	// Mode is "rich" (text + embed, default) or "plain".
	Mode   string `json:"mode,omitempty"`
	Footer string `json:"footer,omitempty"`
	// Fields lists extra record attributes to include; Exclude turns default ones off.
	Fields  []FieldConfig `json:"fields,omitempty"`
	Exclude []string      `json:"exclude,omitempty"`
	// Colors overrides severity colors, e.g. {"TRACE": "#AABBCC"}.
	Colors map[string]string `json:"colors,omitempty"`
}

type FieldConfig struct {
	Attr  string `json:"attr"`
	Label string `json:"label,omitempty"`
}

// TelegramConfig routes records to a Telegram chat instead of the webhook.
type TelegramConfig struct {
	Token    string `json:"token"`
	ChatID   int64  `json:"chat_id"`
	ThreadID int    `json:"thread_id,omitempty"`
	Silent   bool   `json:"silent,omitempty"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: "127.0.0.1:9464"
}

type LoggingConfig struct {
	Level   string         `json:"level"`
	Console bool           `json:"console"`
	File    LoggingFile    `json:"file"`
	Webhook LoggingWebhook `json:"webhook"`
}

type LoggingFile struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty"`
}

type LoggingWebhook struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// LogxConfig converts the logging section for logx.Service.
func (c *Config) LogxConfig() logx.Config {
	l := c.Logging
	return logx.Config{
		Level:   l.Level,
		Console: l.Console,
		File: logx.FileConfig{
			Enabled:    l.File.Enabled,
			Path:       l.File.Path,
			MaxSizeMB:  l.File.MaxSizeMB,
			MaxBackups: l.File.MaxBackups,
			MaxAgeDays: l.File.MaxAgeDays,
			Compress:   l.File.Compress,
		},
		Webhook: logx.WebhookConfig{
			Enabled:    l.Webhook.Enabled,
			MinLevel:   l.Webhook.MinLevel,
			RatePerSec: l.Webhook.RatePerSec,
		},
	}
}

// WebhookTimeout returns the parsed timeout or the 10s default.
func (c *Config) WebhookTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Webhook.Timeout)
	if raw == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("webhook.timeout: invalid duration %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("webhook.timeout: must be > 0, got %s", d)
	}
	return d, nil
}

// Renderer builds the renderer described by the render section.
func (c *Config) Renderer() (*hooklog.Renderer, error) {
	rd := hooklog.NewRenderer()
	mode, err := hooklog.ParseMode(strings.ToLower(strings.TrimSpace(c.Render.Mode)))
	if err != nil {
		return nil, fmt.Errorf("render.mode: %w", err)
	}
	rd.Mode = mode
	if c.Render.Footer != "" {
		rd.Footer = c.Render.Footer
	}
	for _, f := range c.Render.Fields {
		if strings.TrimSpace(f.Attr) == "" {
			return nil, fmt.Errorf("render.fields: attr is empty")
		}
		rd.Fields = rd.Fields.Include(f.Attr, f.Label)
	}
	for _, attr := range c.Render.Exclude {
		rd.Fields = rd.Fields.Exclude(attr)
	}
	for lvl, raw := range c.Render.Colors {
		col, err := parseColor(raw)
		if err != nil {
			return nil, fmt.Errorf("render.colors.%s: %w", lvl, err)
		}
		rd.Palette = rd.Palette.With(lvl, col)
	}
	return rd, nil
}

func parseColor(raw string) (hooklog.Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q (want #RRGGBB)", raw)
	}
	return hooklog.Color(v), nil
}
