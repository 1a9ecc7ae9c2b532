package main

import (
	"fmt"
	"os"

	"github.com/oakhaven/contracts/internal/auth"
	"github.com/oakhaven/contracts/internal/catalog"
	"github.com/oakhaven/contracts/internal/config"
	"github.com/oakhaven/contracts/internal/db"
	"github.com/oakhaven/contracts/internal/excel"
	httphandler "github.com/oakhaven/contracts/internal/http"
	"github.com/oakhaven/contracts/internal/http/middleware"
	"github.com/oakhaven/contracts/internal/logger"
	"github.com/oakhaven/contracts/internal/pdf"
	"github.com/oakhaven/contracts/internal/repository"
	"github.com/oakhaven/contracts/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	lookup, err := catalog.LoadFile(cfg.Contracts.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	contractService := service.NewContractService(contractRepo, excelGenerator, pdfGenerator, cfg, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, lookup, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
