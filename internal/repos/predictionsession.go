package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/types"
)

type PredictionSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.PredictionSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PredictionSession, error)
	// ConditionalUpdate applies patch only if the row still has
	// expectedStatus. Returns false (no error) when the precondition failed,
	// i.e. a concurrent writer already advanced the session.
	ConditionalUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectedStatus types.SessionStatus, patch map[string]any) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PredictionSession, error)
}

type predictionSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPredictionSessionRepo(db *gorm.DB, baseLog *logger.Logger) PredictionSessionRepo {
	repoLog := baseLog.With("repo", "PredictionSessionRepo")
	return &predictionSessionRepo{db: db, log: repoLog}
}

func (pr *predictionSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.PredictionSession) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if session == nil {
		return errors.New("nil session")
	}

	return transaction.WithContext(ctx).Create(session).Error
}

func (pr *predictionSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PredictionSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.PredictionSession
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (pr *predictionSessionRepo) ConditionalUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID, expectedStatus types.SessionStatus, patch map[string]any) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(patch) == 0 {
		return false, errors.New("empty patch")
	}

	res := transaction.WithContext(ctx).
		Model(&types.PredictionSession{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(patch)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (pr *predictionSessionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.PredictionSession{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (pr *predictionSessionRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PredictionSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if limit <= 0 {
		limit = 20
	}

	var results []*types.PredictionSession
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
