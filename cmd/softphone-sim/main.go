package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sweeney/softphone-sim/internal/backend"
	"github.com/sweeney/softphone-sim/internal/bus"
	"github.com/sweeney/softphone-sim/internal/config"
	"github.com/sweeney/softphone-sim/internal/engine"
	"github.com/sweeney/softphone-sim/internal/gate"
	"github.com/sweeney/softphone-sim/internal/registry"
	"github.com/sweeney/softphone-sim/internal/transport"
)

func main() {
	configPath := flag.String("config", "/etc/softphone-sim/softphone-sim.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("loading config: %v", err)
	}

	log := initLogging(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received signal %v, shutting down", sig)
		cancel()
	}()

	store, closeStore, err := openStore(ctx, cfg.Storage, cfg.Agent.ID)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer closeStore()

	reg, err := registry.New(store)
	if err != nil {
		log.Fatalf("restoring active calls: %v", err)
	}
	if n := reg.Len(); n > 0 {
		log.Infof("restored %d active calls", n)
	}

	eventBus, err := bus.NewMQTTBus(bus.MQTTOptions{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		QoS:         1,
	})
	if err != nil {
		log.Fatalf("connecting to MQTT: %v", err)
	}
	defer eventBus.Close()
	log.Infof("connected to MQTT broker %s", cfg.MQTT.Broker)

	tr := transport.NewWSTransport(cfg.Signaling.URL, cfg.Agent.ID, log.WithField("component", "signaling"))
	defer tr.Close()

	eng := engine.New(cfg, reg,
		gate.New(cfg.Caps, cfg.Simulation),
		eventBus, tr,
		backend.NewSimulator(),
		engine.WithLogger(log.WithField("component", "engine")),
	)

	// OnMessage is registered by engine.New; connect after so no inbound
	// message is dropped.
	if err := tr.Start(ctx); err != nil {
		log.Fatalf("connecting to signaling endpoint: %v", err)
	}
	log.Infof("connected to signaling endpoint %s", cfg.Signaling.URL)

	eng.SetAvailable(true)
	if _, err := eng.SetAgentStatus(ctx, "online"); err != nil {
		log.Warnf("announcing presence: %v", err)
	}

	<-ctx.Done()
	log.Info("shutdown complete")
}

func initLogging(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})

	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
	}
	return log
}

func openStore(ctx context.Context, cfg config.StorageConfig, agentID string) (registry.Store, func(), error) {
	switch cfg.Driver {
	case config.StorageFile:
		return registry.NewFileStore(cfg.Path), func() {}, nil
	case config.StoragePostgres:
		store, err := registry.NewPGStore(ctx, cfg.DSN, agentID)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return registry.NewMemStore(), func() {}, nil
	}
}
