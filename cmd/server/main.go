// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jason-s-yu/uno/internal/auth"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/handlers"
	"github.com/jason-s-yu/uno/internal/lobby"
	"github.com/jason-s-yu/uno/internal/server"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var CLI struct {
	Config    string `short:"c" default:"uno.hcl" env:"UNO_CONFIG" help:"Path to HCL configuration file"`
	TCPAddr   string `name:"tcp-addr" help:"TCP address for the line protocol (overrides config)"`
	HTTPAddr  string `name:"http-addr" help:"HTTP address for /ws, /rooms and /healthz (overrides config)"`
	LogLevel  string `short:"l" name:"log-level" help:"Log level (overrides config)"`
	RedisAddr string `name:"redis-addr" help:"Redis address for the game action log (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("uno-server"),
		kong.Description("Multiplayer UNO room server over TCP and WebSocket."),
	)

	logger := logrus.New()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		logger.WithError(err).Error("load config")
		kctx.Exit(1)
	}
	if CLI.TCPAddr != "" {
		cfg.TCPAddr = CLI.TCPAddr
	}
	if CLI.HTTPAddr != "" {
		cfg.HTTPAddr = CLI.HTTPAddr
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	if CLI.RedisAddr != "" {
		cfg.RedisAddr = CLI.RedisAddr
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("invalid configuration")
		kctx.Exit(1)
	}
	logger.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("server exited")
		kctx.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	hasher, err := auth.NewPasswordHasher(nil)
	if err != nil {
		return err
	}
	store := lobby.NewRoomStore(hasher, cfg.Rules)

	var opts server.DispatcherOptions
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("action log disabled")
		} else {
			pub := cache.NewActionPublisher(rdb, cfg.QueueName, logger)
			defer pub.Close()
			opts.OnAction = pub.OnAction
			logger.WithFields(logrus.Fields{"redis": cfg.RedisAddr, "queue": pub.Queue()}).Info("publishing game actions")
		}
	}

	d := server.NewDispatcher(store, server.NewHub(nil), logger, opts)
	tcp := server.NewServer(cfg.TCPAddr, d, logger)
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(logger, d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := tcp.Serve(gctx); !errors.Is(err, server.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		tcp.Close()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
