package app

import (
	"github.com/gin-gonic/gin"

	"github.com/farsightlab/arv-backend/internal/server"
)

func wireRouter(handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		SessionHandler:       handlerset.Session,
		RequestLogMiddleware: middlewareset.RequestLog,
	})
}
