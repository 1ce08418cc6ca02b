package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

type parcelAPIOpts struct {
	httpAddr    string
	swaggerPath string

	onListen func(httpAddr string)
}

// runParcelAPI блокируется до отмены ctx или ошибки сервера.
func runParcelAPI(ctx context.Context, opts parcelAPIOpts, api chi.Router) error {
	if opts.swaggerPath != "" {
		if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
			return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
		}
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runHTTPServer(ctx, lis, api, opts.swaggerPath)
	}()

	select {
	case <-ctx.Done():
		<-httpErr
		return ctx.Err()
	case err := <-httpErr:
		if err == nil {
			return ctx.Err()
		}
		return err
	}
}

func runHTTPServer(ctx context.Context, lis net.Listener, api chi.Router, swaggerPath string) error {
	if swaggerPath != "" {
		api.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, swaggerPath)
		})
		api.Get("/docs/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger.json"),
		))
	}

	srv := &http.Server{
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP API listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
