package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lawn-irrigation/internal/infra/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve skill requests over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport, closeTransport, err := newTransport(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeTransport()

	skill, err := newSkill(a.cfg, transport, a.logger)
	if err != nil {
		return err
	}

	server := httpapi.NewServer(httpapi.Config{
		Addr:       a.cfg.Server.Addr,
		RateLimit:  a.cfg.Server.RateLimit,
		TrustProxy: a.cfg.Server.TrustProxy,
	}, skill, a.logger)
	if err := server.Start(ctx); err != nil {
		return err
	}

	a.logger.Info("starting irrigation skill",
		zap.String("addr", server.Addr()),
		zap.String("transport", transport.Name()),
		zap.String("topic", a.cfg.UpdateTopic()),
	)

	<-ctx.Done()
	a.logger.Info("shutting down")
	return server.Stop()
}
