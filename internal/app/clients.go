package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/farsightlab/arv-backend/internal/clients/openai"
	"github.com/farsightlab/arv-backend/internal/clients/pictures"
	"github.com/farsightlab/arv-backend/internal/clients/redis"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
)

type Clients struct {
	OpenaiClient   openai.Client
	PictureSource  pictures.Source
	RecentPictures redis.RecentPictures
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is optional: without REDIS_ADDR the selector simply runs
	// without cross-session exclusions.
	var recent redis.RecentPictures
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		r, err := redis.NewRecentPictures(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis recent pictures: %w", err)
		}
		recent = r
	}

	// Openai
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Picture source: Unsplash when a key is configured, the built-in pool
	// otherwise.
	var source pictures.Source
	if strings.TrimSpace(os.Getenv("UNSPLASH_ACCESS_KEY")) != "" {
		source, err = pictures.NewUnsplashSource(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init picture source: %w", err)
		}
	} else {
		log.Warn("UNSPLASH_ACCESS_KEY not set, serving pictures from the built-in pool")
		source, err = pictures.NewDefaultPoolSource()
		if err != nil {
			return Clients{}, fmt.Errorf("init picture pool: %w", err)
		}
	}

	return Clients{
		OpenaiClient:   openaiClient,
		PictureSource:  source,
		RecentPictures: recent,
	}, nil
}
