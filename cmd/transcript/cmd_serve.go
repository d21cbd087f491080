package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/transcript/internal/config"
	"github.com/user/transcript/internal/dispatch"
	"github.com/user/transcript/internal/fetch"
	"github.com/user/transcript/internal/ingest"
	"github.com/user/transcript/internal/telegram"
	"github.com/user/transcript/internal/types"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transcript daemon",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func pidFilePath() string {
	return filepath.Join(filepath.Dir(cfgPath), "transcript.pid")
}

func writePIDFile() (string, error) {
	pidPath := pidFilePath()
	if err := os.MkdirAll(filepath.Dir(pidPath), 0o755); err != nil {
		return "", fmt.Errorf("create pid dir: %w", err)
	}
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	factory, err := syncFactory(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pidPath, err := writePIDFile()
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := dispatch.NewHub(factory, dispatch.WithMaxConcurrent(int64(cfg.MaxConcurrent)))
	hub.Start(ctx)
	defer hub.Stop()

	for _, c := range cfg.Fetch.Conversations {
		hub.Resolve(types.ConversationKey(c))
	}

	slog.Info("transcript started",
		"log_level", cfg.LogLevel,
		"max_concurrent", cfg.MaxConcurrent,
		"section_threshold", cfg.Timeline.SectionThreshold,
		"width", cfg.Render.Width,
		"conversations", len(cfg.Fetch.Conversations),
		"pid_file", pidPath,
	)

	if cfg.Fetch.BaseURL != "" {
		poller := fetch.NewPoller(fetchRegistry(cfg), hub, cfg.Fetch.PollSchedule)
		if err := poller.Start(ctx); err != nil {
			return err
		}
		defer poller.Stop()
	} else {
		slog.Warn("poller disabled (no fetch.base_url)")
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.HTTP.Enabled {
		srv := ingest.NewServer(hub)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, cfg.HTTP.Listen)
		})
	}

	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(cfg.Telegram.Token, hub)
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("create telegram adapter: %w", err)
		}
		g.Go(func() error {
			slog.Info("telegram adapter started")
			adapter.Start(gctx)
			return nil
		})
	} else {
		slog.Warn("telegram adapter disabled (no token)")
	}

	go watchRestart(gctx, cfg)

	<-gctx.Done()
	slog.Info("shutting down")
	return g.Wait()
}

// watchRestart re-execs the binary on SIGHUP.
func watchRestart(ctx context.Context, cfg *config.Config) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
		}
		slog.Info("received SIGHUP, restarting", "log_level", cfg.LogLevel)
		execPath, err := os.Executable()
		if err != nil {
			slog.Error("failed to get executable path", "error", err)
			continue
		}
		os.Remove(pidFilePath())
		if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
			slog.Error("failed to re-exec", "error", err)
			if _, writeErr := writePIDFile(); writeErr != nil {
				slog.Error("failed to re-write PID file", "error", writeErr)
			}
		}
	}
}
