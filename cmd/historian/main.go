// cmd/historian/main.go drains the game action queue published by the
// server and appends each record as a JSON line to a file or stdout.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

var CLI struct {
	RedisAddr  string        `name:"redis-addr" default:"localhost:6379" env:"REDIS_ADDR" help:"Redis address"`
	RedisDB    int           `name:"redis-db" default:"0" env:"REDIS_DB" help:"Redis database index"`
	Queue      string        `default:"uno_actions" env:"HISTORIAN_QUEUE_NAME" help:"Redis list holding action records"`
	BatchSize  int           `name:"batch-size" default:"20" env:"HISTORIAN_BATCH_SIZE" help:"Records per write"`
	Flush      time.Duration `default:"500ms" env:"HISTORIAN_FLUSH" help:"Flush interval for partial batches"`
	Inactivity time.Duration `default:"10m" env:"GAME_INACTIVITY_TIMEOUT" help:"Idle time before a game counts as abandoned"`
	Out        string        `short:"o" help:"Append records to this file instead of stdout"`
	LogLevel   string        `short:"l" name:"log-level" default:"info" env:"UNO_LOG_LEVEL" enum:"debug,info,warn,error" help:"Log level"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("uno-historian"),
		kong.Description("Drains the UNO game action log from Redis."),
	)

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(CLI.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	var out io.Writer = os.Stdout
	if CLI.Out != "" {
		f, err := os.OpenFile(CLI.Out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.WithError(err).Error("open output")
			kctx.Exit(1)
		}
		defer f.Close()
		out = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.ConnectRedis(ctx, CLI.RedisAddr, CLI.RedisDB)
	if err != nil {
		logger.WithError(err).Error("connect redis")
		kctx.Exit(1)
	}
	defer rdb.Close()

	h := historian.New(
		historian.NewRedisSource(rdb, CLI.Queue),
		historian.NewJSONLinesSink(out),
		logger,
		historian.Options{
			BatchSize:  CLI.BatchSize,
			FlushDelay: CLI.Flush,
			Inactivity: CLI.Inactivity,
		},
	)

	logger.WithFields(logrus.Fields{"redis": CLI.RedisAddr, "queue": CLI.Queue}).Info("historian started")
	if err := h.Run(ctx); err != nil {
		logger.WithError(err).Error("historian stopped")
		kctx.Exit(1)
	}
	logger.Info("historian shutdown complete")
}
