package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-widgetlist/components/widgetlist"
	"github.com/goliatone/go-widgetlist/internal/logx"
	"github.com/goliatone/go-widgetlist/pkg/controller"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a widget list as server-rendered HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			logger := logx.WithList(ctx, cfg.ListID)

			routeOpts := []widgetlist.OptionFn{
				widgetlist.WithRoutePath(cfg.HTTP.RoutePath),
				widgetlist.WithLogger(logger),
			}
			mount := widgetlist.MountPath(cfg.HTTP.BasePath, routeOpts...)
			ctrl, err := a.controller(cfg, controller.WithSlotProps(widgetlist.SlotProps(mount, nil)))
			if err != nil {
				return err
			}

			handler, err := newServeMux(ctrl, cfg.HTTP.BasePath, routeOpts...)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", "addr", cfg.HTTP.Addr, "mount", mount)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				logger.Info("http server shutting down")
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

// newServeMux mounts the component and sends the site root to it.
func newServeMux(ctrl *controller.Controller, basePath string, fns ...widgetlist.OptionFn) (http.Handler, error) {
	mux := http.NewServeMux()
	pattern, err := widgetlist.RegisterRoutes(mux, basePath, ctrl, fns...)
	if err != nil {
		return nil, err
	}
	if pattern != "/" {
		mux.Handle("/{$}", http.RedirectHandler(pattern+"/", http.StatusFound))
	}
	return mux, nil
}
