package app

import (
	"gorm.io/gorm"

	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/repos"
)

type Repos struct {
	PredictionSession repos.PredictionSessionRepo
	OracleCallLog     repos.OracleCallLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		PredictionSession: repos.NewPredictionSessionRepo(db, log),
		OracleCallLog:     repos.NewOracleCallLogRepo(db, log),
	}
}
