package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eduviz/eduviz-chat-api/api/handlers"
	"github.com/eduviz/eduviz-chat-api/config"
)

const shutdownTimeout = 15 * time.Second

func main() {
	a := handlers.App{}
	a.Config = *config.New()
	defer zap.L().Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//initialize database and router
	if err := a.Initialize(ctx); err != nil {
		zap.S().Fatalw("failed to initialize", "error", err)
	}
	go a.Hub.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		zap.S().Fatalw("failed to listen", "addr", srv.Addr, "error", err)
	}

	zap.S().Infow("eduviz-chat-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
		"env", a.Config.Env,
	)
	if err := serve(ctx, srv, ln, a.Close); err != nil {
		zap.S().Fatalw("server stopped", "error", err)
	}
	zap.S().Info("eduviz-chat-api stopped")
}

// serve runs srv on ln until ctx is done, then drains in-flight requests and
// calls cleanup. It returns only after cleanup has finished.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, cleanup func(context.Context) error) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.S().Warnw("http shutdown", "error", err)
		}
		if err := cleanup(shutdownCtx); err != nil {
			zap.S().Warnw("database disconnect", "error", err)
		}
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
