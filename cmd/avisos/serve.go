package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/itsaavisos/gateway/internal/assets"
	"github.com/itsaavisos/gateway/internal/config"
	"github.com/itsaavisos/gateway/internal/directory"
	"github.com/itsaavisos/gateway/internal/dispatch"
	"github.com/itsaavisos/gateway/internal/graph"
	"github.com/itsaavisos/gateway/internal/handlers"
	"github.com/itsaavisos/gateway/internal/logger"
	"github.com/itsaavisos/gateway/internal/msal"
	"github.com/itsaavisos/gateway/internal/server"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideMSALClient,
			provideGraphClient,
			provideDirectoryService,
			provideAssetService,
			provideDispatchService,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(handlers.NewUsersHandler),
			provideServerHandler(handlers.NewTeamsHandler),
			provideServerHandler(handlers.NewSwaggerHandler),
			provideServer,
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideMSALClient(log *slog.Logger, cfg config.Config) *msal.Client {
	return msal.NewClient(log, msal.Config{
		ClientID:     cfg.MSAL.ClientID,
		ClientSecret: cfg.MSAL.ClientSecret,
		TenantID:     cfg.MSAL.TenantID,
		RedirectURI:  cfg.MSAL.RedirectURI,
		Scopes:       cfg.MSAL.Scopes(),
		LoginBaseURL: cfg.Graph.LoginBaseURL,
	})
}

func provideGraphClient(log *slog.Logger, cfg config.Config) *graph.Client {
	return graph.NewClient(log, cfg.Graph.BaseURL, cfg.Graph.Timeout())
}

func provideDirectoryService(log *slog.Logger, client *graph.Client, cfg config.Config) *directory.Service {
	return directory.NewService(log, client, cfg.Graph.DirectoryMaxPages)
}

func provideAssetService(log *slog.Logger, client *graph.Client, cfg config.Config) *assets.Service {
	return assets.NewService(log, client, cfg.Graph.MaxUploadBytes)
}

func provideDispatchService(log *slog.Logger, client *graph.Client, assetService *assets.Service) *dispatch.Service {
	return dispatch.NewService(log, client, assetService)
}

func provideAuthHandler(log *slog.Logger, msalClient *msal.Client, graphClient *graph.Client, cfg config.Config) *handlers.AuthHandler {
	return handlers.NewAuthHandler(log, msalClient, graphClient, cfg.MSAL.FrontendOrigin)
}

type serverParams struct {
	fx.In
	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Handlers...)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
