package services

import (
	"context"

	"github.com/farsightlab/arv-backend/internal/clients/openai"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/repos"
	"github.com/farsightlab/arv-backend/internal/types"
)

type oracleCallRecorder struct {
	log  *logger.Logger
	repo repos.OracleCallLogRepo
}

// NewOracleCallRecorder persists adjudication round trips for diagnostics.
// Inserts are best-effort: a failed write is logged and dropped.
func NewOracleCallRecorder(log *logger.Logger, repo repos.OracleCallLogRepo) openai.CallRecorder {
	return &oracleCallRecorder{
		log:  log.With("service", "OracleCallRecorder"),
		repo: repo,
	}
}

func (r *oracleCallRecorder) Record(ctx context.Context, entry *types.OracleCallLog) {
	if entry == nil {
		return
	}
	if err := r.repo.Create(ctx, nil, entry); err != nil {
		r.log.Warn("Failed to persist oracle call log", "error", err, "call_type", entry.CallType)
	}
}
