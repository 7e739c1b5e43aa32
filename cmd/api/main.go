package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	apiinvestment "bizplan_engine/pkg/api/investment"
	apiprojection "bizplan_engine/pkg/api/projection"
	apistatus "bizplan_engine/pkg/api/status"
	"bizplan_engine/pkg/core/consolidation"
	"bizplan_engine/pkg/core/store"
	"bizplan_engine/pkg/logger"
	"bizplan_engine/pkg/metrics"
)

// ServerConfig is the engine service configuration, loaded from
// config/engine.yaml. DATABASE_URL comes from the environment.
type ServerConfig struct {
	ServiceName string `yaml:"service_name"`
	ListenAddr  string `yaml:"listen_addr"`
	LogLevel    string `yaml:"log_level"`
	Environment string `yaml:"environment"`
}

func main() {
	godotenv.Load()

	cfg := ServerConfig{
		ServiceName: "bizplan-engine",
		ListenAddr:  ":8080",
		LogLevel:    "info",
	}
	if data, err := os.ReadFile("config/engine.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Printf("[FATAL] Bad config file: %v\n", err)
			os.Exit(1)
		}
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		fmt.Printf("[FATAL] Logger init failed: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()

	// Postgres when DATABASE_URL is set, otherwise the in-memory
	// repository (useful for local runs and demos).
	var repo consolidation.OutputRepository
	var analysisStore apiinvestment.AnalysisStore
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			log.Fatal("database init failed", zap.Error(err))
		}
		defer store.Close()
		repo = store.NewOutputRepo()
		analysisStore = store.NewAnalysisRepo()
		log.Info("using postgres output repository")
	} else {
		repo = store.NewMemoryRepo()
		log.Warn("DATABASE_URL not set, using in-memory output repository")
	}

	engine := consolidation.NewEngine(repo, log)
	apiprojection.InitHandler(engine)
	apiinvestment.InitHandler(engine, analysisStore)
	apistatus.InitHandler(engine)

	http.HandleFunc("/api/projection/compute", apiprojection.HandleCompute)
	http.HandleFunc("/api/projection/output", apiprojection.HandleOutput)
	http.HandleFunc("/api/investment/analysis", apiinvestment.HandleAnalysis)
	http.HandleFunc("/api/investment/stored", apiinvestment.HandleStored)
	http.HandleFunc("/api/status", apistatus.HandleStatus)
	http.Handle("/metrics", metrics.Handler())

	log.Info("API server starting",
		zap.String("addr", cfg.ListenAddr),
		zap.Strings("routes", []string{
			"POST /api/projection/compute",
			"POST /api/projection/output",
			"POST /api/investment/analysis",
			"POST /api/investment/stored",
			"GET  /api/status",
			"GET  /metrics",
		}),
	)

	if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
