package app

import (
	"github.com/farsightlab/arv-backend/internal/handlers"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
)

type Handlers struct {
	Session *handlers.SessionHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Session: handlers.NewSessionHandler(serviceset.PredictionSession),
	}
}
