package main

import (
	"fmt"
	"os"

	"shopkeeper/internal/config"
	"shopkeeper/internal/logger"
	"shopkeeper/internal/repository"
	"shopkeeper/internal/service"
	"shopkeeper/internal/shell"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Shop.Env, cfg.Files.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting shop management system",
		zap.String("env", cfg.Shop.Env),
		zap.String("inventory_file", cfg.Files.Inventory),
		zap.String("sales_file", cfg.Files.Sales),
	)

	// Initialize repositories
	inventoryRepo := repository.NewInventoryRepository(cfg.Files.Inventory, log)
	salesRepo := repository.NewSalesRepository(cfg.Files.Sales, log)

	// Initialize services
	inventoryService := service.NewInventoryService(inventoryRepo, log)
	salesService := service.NewSalesService(salesRepo, inventoryService, log)

	// Run the interactive menu until the user exits
	sh := shell.New(inventoryService, salesService, log, os.Stdin, os.Stdout)
	sh.Run()
}
