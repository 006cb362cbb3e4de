package app

import (
	"github.com/farsightlab/arv-backend/internal/middleware"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
)

type Middleware struct {
	RequestLog *middleware.RequestLogMiddleware
}

func wireMiddleware(log *logger.Logger) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		RequestLog: middleware.NewRequestLogMiddleware(log),
	}
}
