package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Shop  ShopConfig
	Files FilesConfig
}

type ShopConfig struct {
	Env string
}

type FilesConfig struct {
	Inventory string
	Sales     string
	Log       string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SHOP_ENV", "development")
	viper.SetDefault("INVENTORY_FILE", "inventory.csv")
	viper.SetDefault("SALES_FILE", "sales.csv")
	viper.SetDefault("LOG_FILE", "shop.log")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Shop: ShopConfig{
			Env: viper.GetString("SHOP_ENV"),
		},
		Files: FilesConfig{
			Inventory: viper.GetString("INVENTORY_FILE"),
			Sales:     viper.GetString("SALES_FILE"),
			Log:       viper.GetString("LOG_FILE"),
		},
	}
}
