// Command api serves the interactive BTC macro prediction tool.
package main

import (
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/macroquant/btcmacro/dataset"
	"github.com/macroquant/btcmacro/internal/api"
	"github.com/macroquant/btcmacro/internal/config"
	"github.com/macroquant/btcmacro/pkg/log"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// .env is optional; real environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.LogError(err, "Failed to load config")
		os.Exit(1)
	}

	log.SetupLogger(cfg.LogLevel)
	logger := log.GetLoggerWithName("api")

	table, err := dataset.Load(cfg.DataFile)
	if err != nil {
		// Data-unavailable is fatal for the session: no retry, no server.
		log.LogError(err, "Failed to load dataset")
		os.Exit(1)
	}
	logger.Info("Dataset loaded",
		"file", cfg.DataFile,
		log.SamplesKey, table.NumRows(),
	)

	if os.Getenv("BTCMACRO_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(table)

	logger.Info("Starting server", "addr", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.LogError(err, "Server stopped")
		os.Exit(1)
	}
}
