package config

import (
	"fmt"

	"pz-mod-manager/internal/models"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// LoadConfig reads the configuration from the specified path (defaulting to
// "config.toml") and populates a models.Config with sensible defaults for
// anything left unset.
func LoadConfig(configFilePath string) (models.Config, error) {
	if configFilePath == "" {
		configFilePath = "config.toml"
	}
	var cfg models.Config
	_, err := toml.DecodeFile(configFilePath, &cfg)
	if err != nil {
		return models.Config{}, fmt.Errorf("error loading config file %s: %w", configFilePath, err)
	}

	if cfg.AppID == "" {
		cfg.AppID = "108600" // Project Zomboid
	}
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = 25
	}
	if cfg.ApiClientTimeoutSec <= 0 {
		cfg.ApiClientTimeoutSec = 15
	}
	if cfg.WorkshopPath == "" {
		log.Warn("Warning: WorkshopPath is not set; mod/workshop pairing falls back to positional matching")
	}

	log.Infof("Configuration loaded from %s", configFilePath)
	return cfg, nil
}
