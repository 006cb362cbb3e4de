package repos

import (
	"context"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/types"
	"gorm.io/gorm"
)

type OracleCallLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.OracleCallLog) error
}

type oracleCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOracleCallLogRepo(db *gorm.DB, baseLog *logger.Logger) OracleCallLogRepo {
	repoLog := baseLog.With("repo", "OracleCallLogRepo")
	return &oracleCallLogRepo{db: db, log: repoLog}
}

func (or *oracleCallLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.OracleCallLog) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	if entry == nil {
		return nil
	}

	return transaction.WithContext(ctx).Create(entry).Error
}
