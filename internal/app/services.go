package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/farsightlab/arv-backend/internal/clients/openai"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/services"
)

type Services struct {
	Selector          services.Selector
	PredictionSession services.PredictionSessionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	recorder := services.NewOracleCallRecorder(log, reposet.OracleCallLog)
	adjudicator, err := openai.NewAdjudicator(log, clients.OpenaiClient, recorder)
	if err != nil {
		return Services{}, fmt.Errorf("init adjudicator: %w", err)
	}

	selector := services.NewSelector(log, clients.PictureSource, cfg.SelectorPolicy)

	sessionService := services.NewPredictionSessionService(
		db,
		log,
		reposet.PredictionSession,
		selector,
		adjudicator,
		clients.RecentPictures,
	)

	return Services{
		Selector:          selector,
		PredictionSession: sessionService,
	}, nil
}
