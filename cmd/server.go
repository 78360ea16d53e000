package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/niktheblak/temperature-assistant/internal/server"
	"github.com/niktheblak/temperature-assistant/internal/service"
	"github.com/niktheblak/temperature-assistant/pkg/assistant"
	"github.com/niktheblak/temperature-assistant/pkg/middleware"
	"github.com/niktheblak/temperature-assistant/pkg/statefile"
)

var serverCmd = &cobra.Command{
	Use:          "server",
	Short:        "Start temperature assistant API server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			stateFile      = viper.GetString("state.file")
			host           = viper.GetString("server.host")
			port           = viper.GetInt("server.port")
			staticDir      = viper.GetString("server.static_dir")
			llmPath        = viper.GetString("assistant.path")
			llmTimeout     = viper.GetDuration("assistant.timeout")
			breakerEnabled = viper.GetBool("assistant.breaker.enabled")
		)
		logger.LogAttrs(
			nil,
			slog.LevelInfo,
			"Starting LLM API service",
			slog.String("state_file", stateFile),
			slog.String("llm", llmPath),
			slog.Duration("timeout", llmTimeout),
		)
		var asker assistant.Asker
		asker, err := assistant.NewExec(assistant.ExecConfig{
			Path:    llmPath,
			Timeout: llmTimeout,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		if breakerEnabled {
			cfg := assistant.BreakerConfig{
				Failures: viper.GetUint32("assistant.breaker.failures"),
				Cooldown: viper.GetDuration("assistant.breaker.cooldown"),
			}
			logger.Info("Using circuit breaker", "failures", cfg.Failures, "cooldown", cfg.Cooldown)
			asker = assistant.WithBreaker(asker, cfg)
		}
		svc := service.New(statefile.New(stateFile), asker, logger)
		handler := server.New(svc, server.Config{
			StaticDir: staticDir,
			Logger:    logger,
		})
		httpServer := &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			Handler:           middleware.AccessLog(handler, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		var serveErr error
		go func() {
			logger.LogAttrs(nil, slog.LevelInfo, "Starting server", slog.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "err", err)
				serveErr = err
				cancel()
			}
		}()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			logger.Info("Shutting down service")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shut down HTTP server", "err", err)
			}
		}()
		wg.Wait()
		return serveErr
	},
}

func init() {
	serverCmd.Flags().String("server.host", "", "Server listen address; empty listens on all interfaces")
	serverCmd.Flags().Int("server.port", 0, "Server port")
	serverCmd.Flags().String("server.static_dir", "", "Directory of frontend files to serve at /")
	serverCmd.Flags().String("assistant.path", "", "LLM executable")
	serverCmd.Flags().Duration("assistant.timeout", 0, "LLM execution timeout")
	serverCmd.Flags().Bool("assistant.breaker.enabled", false, "Fail fast after repeated LLM failures")
	serverCmd.Flags().Uint32("assistant.breaker.failures", 0, "Consecutive LLM failures that open the breaker")
	serverCmd.Flags().Duration("assistant.breaker.cooldown", 0, "How long the breaker stays open")

	cobra.CheckErr(viper.BindPFlags(serverCmd.Flags()))

	viper.SetDefault("server.port", 5000)
	viper.SetDefault("assistant.path", homePath(filepath.Join("llm", "run_local_llm.sh")))
	viper.SetDefault("assistant.timeout", assistant.DefaultTimeout)
	viper.SetDefault("assistant.breaker.failures", 5)
	viper.SetDefault("assistant.breaker.cooldown", time.Minute)

	rootCmd.AddCommand(serverCmd)
}
