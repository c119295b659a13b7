// Package main runs the asset worker that parses the configured GLB on
// request and replies over MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/config"
	"github.com/Faultbox/glbstage/internal/logger"
	"github.com/Faultbox/glbstage/internal/worker"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mqtt.ERROR = zap.NewStdLog(logger.Named("mqtt"))

	logger.Info("=== glbstage worker ===",
		zap.String("asset", cfg.Asset.Path),
		zap.String("broker", cfg.MQTT.Broker),
	)

	cfg.MQTT.ClientID += "-worker"
	client, err := worker.Dial(cfg.MQTT)
	if err != nil {
		logger.Error("failed to connect", zap.Error(err))
		os.Exit(1)
	}
	defer client.Disconnect(250)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := worker.NewServer(cfg.Asset.Path)
	if err := worker.ServeMQTT(ctx, client, srv, cfg.MQTT.RequestTopic, cfg.MQTT.ReplyTopic); err != nil {
		logger.Error("worker error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("worker stopped")
}
