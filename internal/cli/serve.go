package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hackeddesign/claire/internal/config"
	httpadapter "github.com/hackeddesign/claire/pkg/adapters/http"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 5 * time.Second

// Serve exposes svc over HTTP until ctx is cancelled or the listener fails.
func Serve(ctx context.Context, cfg *config.Config, svc *Services, logger *slog.Logger, out io.Writer) error {
	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
	}
	return serve(ctx, ln, cfg, svc, logger, out)
}

func serve(ctx context.Context, ln net.Listener, cfg *config.Config, svc *Services, logger *slog.Logger, out io.Writer) error {
	opts := []httpadapter.Option{
		httpadapter.WithLogger(logger),
		httpadapter.WithPIIPatterns(cfg.Store.PIIPatterns),
	}
	if cfg.HTTP.Metrics && svc.Metrics != nil {
		opts = append(opts, httpadapter.WithMetricsHandler(svc.Metrics.Handler()))
	}

	srv := &http.Server{
		Handler:           httpadapter.NewHandler(svc.Engine, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(out, "Serving conversations on http://%s (store: %s)", ln.Addr(), cfg.Store.Backend)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Shutting down", "reason", context.Cause(ctx))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		printSystemMessage(out, "Server stopped gracefully")
		return nil
	}
}
