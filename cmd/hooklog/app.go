package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hooklog/internal/config"
	"hooklog/internal/metrics"
	"hooklog/internal/runtime/supervisor"
	"hooklog/internal/transport/telegram"
	"hooklog/pkg/hooklog"
	"hooklog/pkg/hooklog/webhook"
	"hooklog/pkg/logx"
)

const defaultMetricsAddr = "127.0.0.1:9464"

type app struct {
	stdin  io.Reader
	stderr io.Writer

	// httpClient overrides the webhook transport (tests).
	httpClient *http.Client
}

type flags struct {
	config string
	msg    string
	level  string
	logger string
	watch  bool
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("hooklog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "./hooklog.yaml", "path to config (json or yaml)")
	fs.StringVar(&f.msg, "m", "", "send a single message instead of reading stdin")
	fs.StringVar(&f.level, "level", "INFO", "record level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	fs.StringVar(&f.logger, "logger", "", "logger name shown on records")
	fs.BoolVar(&f.watch, "watch", false, "hot-reload the logging section on config change")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	f, err := parseFlags(args, a.stderr)
	if err != nil {
		return err
	}
	level, err := slogLevel(f.level)
	if err != nil {
		return err
	}

	mgr := config.NewManager(f.config)
	cfg, err := mgr.Load(ctx)
	if err != nil {
		return err
	}

	var observer *metrics.Collector
	if cfg.Metrics.Enabled {
		observer = metrics.New()
	}
	handler, err := a.buildHandler(cfg, observer)
	if err != nil {
		return err
	}

	svc, log := logx.New(cfg.LogxConfig(), handler)
	defer func() { _ = svc.Close() }()
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	sup := supervisor.New(ctx, supervisor.WithLogger(log), supervisor.WithCancelOnError(true))
	if observer != nil {
		addr := strings.TrimSpace(cfg.Metrics.Addr)
		if addr == "" {
			addr = defaultMetricsAddr
		}
		sup.Go("metrics", func(ctx context.Context) error {
			return serveMetrics(ctx, addr, observer.Handler(), log)
		})
	}
	if f.watch {
		ch := mgr.Subscribe(1)
		sup.GoRestart("config.watch", mgr.Watch, 250*time.Millisecond, 5*time.Second)
		sup.Go("config.apply", func(ctx context.Context) error {
			defer mgr.Unsubscribe(ch)
			for {
				select {
				case <-ctx.Done():
					return nil
				case next := <-ch:
					svc.Apply(next.LogxConfig())
				}
			}
		})
	}

	logger := slog.New(hooklog.NewSlogHandler(handler, &hooklog.SlogOptions{Level: slog.LevelDebug, Name: f.logger}))
	if f.msg != "" {
		err = emit(sup.Context(), logger, level, f.msg)
	} else {
		err = forward(sup.Context(), logger, level, a.stdin)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := sup.Stop(stopCtx); serr != nil {
		// A failed background loop is the reason the send was cut short.
		return serr
	}
	if hooklog.IsInterrupt(err) {
		log.Info("interrupted")
		return nil
	}
	return err
}

// buildHandler wires the configured transport into a hooklog.Handler.
func (a *app) buildHandler(cfg *config.Config, observer *metrics.Collector) (*hooklog.Handler, error) {
	sender, err := a.buildSender(cfg)
	if err != nil {
		return nil, err
	}
	rd, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}
	opts := []hooklog.Option{
		hooklog.WithRenderer(rd),
		hooklog.WithErrorHandler(hooklog.StderrErrorHandler(a.stderr)),
	}
	if observer != nil {
		opts = append(opts, hooklog.WithObserver(observer))
	}
	return hooklog.New(sender, opts...)
}

func (a *app) buildSender(cfg *config.Config) (hooklog.Sender, error) {
	if t := cfg.Telegram; t != nil {
		return telegram.New(telegram.Config{Token: t.Token, ChatID: t.ChatID, ThreadID: t.ThreadID, Silent: t.Silent})
	}
	timeout, err := cfg.WebhookTimeout()
	if err != nil {
		return nil, err
	}
	return webhook.New(cfg.Webhook.URL,
		webhook.WithTimeout(timeout),
		webhook.WithUsername(cfg.Webhook.Username),
		webhook.WithAvatarURL(cfg.Webhook.AvatarURL),
		webhook.WithHTTPClient(a.httpClient),
	)
}

func emit(ctx context.Context, logger *slog.Logger, level slog.Level, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return logger.Handler().Handle(ctx, slog.NewRecord(time.Now(), level, msg, 0))
}

// forward sends every non-empty line of r as one record.
func forward(ctx context.Context, logger *slog.Logger, level slog.Level, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := emit(ctx, logger, level, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func serveMetrics(ctx context.Context, addr string, h http.Handler, log logx.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("metrics listening", logx.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func slogLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case hooklog.LevelDebug:
		return slog.LevelDebug, nil
	case hooklog.LevelInfo, "":
		return slog.LevelInfo, nil
	case hooklog.LevelWarning, "WARN":
		return slog.LevelWarn, nil
	case hooklog.LevelError:
		return slog.LevelError, nil
	case hooklog.LevelCritical:
		return hooklog.SlogLevelCritical, nil
	}
	return 0, fmt.Errorf("unknown level %q", name)
}
