package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/simp-lee/catalog/internal/client"
	"github.com/simp-lee/catalog/internal/config"
	"github.com/simp-lee/catalog/internal/loadgen"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	envFile := flag.String("env-file", ".env", "optional dotenv file applied before APP__ overrides")
	flag.Parse()

	cfg, err := config.LoadGenerator(*configPath, *envFile)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	lg, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		log.Fatal("failed to setup logger: ", err)
	}
	defer lg.Close()
	logger := config.ServiceLogger(lg.Logger, cfg.Telemetry).With("component", "loadgen")

	c, err := client.New(cfg.LoadGen.BaseURL,
		client.WithTimeout(cfg.LoadGen.Timeout()),
		client.WithLogger(logger),
	)
	if err != nil {
		log.Fatal("failed to create client: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loadgen.New(c, cfg.LoadGen, logger).Run(ctx); err != nil {
		logger.Error("load generator failed", "error", err)
	}
}
