package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api"
	"github.com/Senpai-Sama7/Astro-sub000/internal/logging"
	"github.com/Senpai-Sama7/Astro-sub000/internal/service"
	"github.com/Senpai-Sama7/Astro-sub000/internal/tasks"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := f.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		operatorKey, err := operatorSigningKey(cmd)
		if err != nil {
			return err
		}

		log.Info().
			Int("roles", len(cfg.Roles)).
			Int("actions", len(cfg.Actions)).
			Msg("Initializing gateway...")
		gw, err := buildGateway(cfg)
		if err != nil {
			return fmt.Errorf("building gateway: %w", err)
		}

		// background tasks
		taskManager := tasks.NewManager()
		registerTasks(taskManager, gw, cfg.Approvals.SweepInterval)
		defer taskManager.Stop()

		// audit notifications, consumed for operational logging only
		go consumeNotifications(gw)

		// setup server
		srv := api.NewServer(gw, taskManager)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes(operatorKey),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func registerTasks(tm *tasks.Manager, gw *service.Gateway, sweepInterval time.Duration) {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	tm.Register("approval-sweep", sweepInterval, func(ctx context.Context, logger logging.InternalLogger) error {
		expired, err := gw.ExpireApprovals(ctx, time.Now())
		if err != nil {
			return err
		}
		if expired > 0 {
			logger.Info("auto-denied %d expired approvals", expired)
		}
		return nil
	})

	tm.Register("limit-window-sweep", time.Hour, func(ctx context.Context, logger logging.InternalLogger) error {
		removed := gw.SweepLimits(time.Now())
		if removed > 0 {
			logger.Info("dropped %d stale rate limit windows", removed)
		}
		return nil
	})

	// The retry flush runs often and should fail fast when the archive is
	// still down, so it gets a tighter timeout than the default.
	tm.RegisterTask(tasks.TaskDefinition{
		Name:     "audit-retry",
		Interval: 30 * time.Second,
		Timeout:  15 * time.Second,
		Handler: func(ctx context.Context, logger logging.InternalLogger) error {
			flushed, err := gw.FlushAuditRetries(ctx)
			if flushed > 0 {
				logger.Info("flushed %d deferred audit entries", flushed)
			}
			return err
		},
	})
}

// consumeNotifications drains the ledger's append notifications. The
// channel drops oldest under pressure, so a slow consumer never blocks
// the decision path.
func consumeNotifications(gw *service.Gateway) {
	for id := range gw.Notifications() {
		log.Debug().Str("audit_id", id).Msg("audit entry appended")
	}
}

// operatorSigningKey resolves the HMAC key validating operator session
// tokens: flag first, then ASTROGATE_OPERATOR_KEY.
func operatorSigningKey(cmd *cobra.Command) ([]byte, error) {
	raw, _ := cmd.Flags().GetString("operator-key")
	if raw == "" {
		raw = os.Getenv("ASTROGATE_OPERATOR_KEY")
	}
	if raw == "" {
		return nil, fmt.Errorf("operator signing key not configured (use --operator-key or ASTROGATE_OPERATOR_KEY)")
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && len(decoded) >= 32 {
		return decoded, nil
	}
	return []byte(raw), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().String("operator-key", "", "HMAC key for operator session tokens")
}
