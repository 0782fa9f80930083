package leafcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamilpajak/leafcheck/internal/database"
	"github.com/kamilpajak/leafcheck/internal/lifecycle"
	"github.com/kamilpajak/leafcheck/internal/predict"
	"github.com/kamilpajak/leafcheck/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local web dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				g.cfg.Port = port
			}
			return serve(cmd.Context(), g)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	return cmd
}

func serve(ctx context.Context, g *globalOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log := g.cfg, g.log

	client := predict.NewClient(cfg.ServiceURL, cfg.Timeout,
		predict.WithRateLimit(cfg.RateLimit),
		predict.WithLogger(log),
	)
	machine := lifecycle.New(client, lifecycle.WithLogger(log))

	handlerOpts := []web.Option{web.WithLogger(log)}
	if cfg.DatabaseURL != "" {
		db, err := openHistory(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		machine.Subscribe(database.NewRecorder(db, log))
		handlerOpts = append(handlerOpts, web.WithHistory(db))
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           web.NewHandler(machine, handlerOpts...),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown on interrupt (Ctrl+C)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		<-quit
		log.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("shutdown error")
		}
	}()

	log.WithField("service_url", cfg.ServiceURL).Infof("Dashboard: http://localhost:%d", cfg.Port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
