package app

import (
	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/services"
	"github.com/farsightlab/arv-backend/internal/utils"
)

type Config struct {
	Port           string
	SelectorPolicy services.SelectorPolicy
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		SelectorPolicy: services.LoadSelectorPolicy(log),
	}
}
