package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/farsightlab/arv-backend/internal/clients/openai"
	redisclient "github.com/farsightlab/arv-backend/internal/clients/redis"
	"github.com/farsightlab/arv-backend/internal/platform/apierr"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/repos"
	"github.com/farsightlab/arv-backend/internal/types"
)

// PredictionSessionService owns the double-blind protocol state machine.
// It returns full session entities; callers must project them through
// Project before anything crosses the trust boundary.
type PredictionSessionService interface {
	Create(ctx context.Context, labelA, labelB string) (*types.PredictionSession, error)
	Get(ctx context.Context, id uuid.UUID) (*types.PredictionSession, error)
	List(ctx context.Context, limit int) ([]*types.PredictionSession, error)
	Predict(ctx context.Context, id uuid.UUID, text, sketchURL string) (*types.PredictionSession, error)
	// PreviewPrediction runs the adjudicator without persisting anything:
	// same inputs and preconditions as Predict, no state transition.
	PreviewPrediction(ctx context.Context, id uuid.UUID, text, sketchURL string) (*types.Verdict, error)
	Reveal(ctx context.Context, id uuid.UUID, winningLabel string) (*types.PredictionSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type predictionSessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.PredictionSessionRepo
	selector    Selector
	adjudicator openai.Adjudicator
	recent      redisclient.RecentPictures // optional, may be nil

	// coinFlip returns 0 or 1 with uniform probability; injectable so binding
	// assignment is deterministic in tests.
	coinFlip func() int
}

func NewPredictionSessionService(
	db *gorm.DB,
	log *logger.Logger,
	sessionRepo repos.PredictionSessionRepo,
	selector Selector,
	adjudicator openai.Adjudicator,
	recent redisclient.RecentPictures,
) PredictionSessionService {
	return &predictionSessionService{
		db:          db,
		log:         log.With("service", "PredictionSessionService"),
		sessionRepo: sessionRepo,
		selector:    selector,
		adjudicator: adjudicator,
		recent:      recent,
		coinFlip:    func() int { return rand.Intn(2) },
	}
}

func (s *predictionSessionService) Create(ctx context.Context, labelA, labelB string) (*types.PredictionSession, error) {
	labelA = strings.TrimSpace(labelA)
	labelB = strings.TrimSpace(labelB)
	if labelA == "" || labelB == "" {
		return nil, apierr.Validation("both labels are required")
	}
	if labelA == labelB {
		return nil, apierr.Validation("labels must be distinct")
	}

	excluded := s.recentExclusions(ctx)

	picA, picB, err := s.selector.SelectPair(ctx, excluded)
	if err != nil {
		return nil, err
	}

	rawA, err := json.Marshal(picA)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("encode picture A: %w", err))
	}
	rawB, err := json.Marshal(picB)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("encode picture B: %w", err))
	}

	binding := picA.ID
	if s.coinFlip() == 1 {
		binding = picB.ID
	}

	session := &types.PredictionSession{
		ID:               uuid.New(),
		Status:           types.SessionStatusCreated,
		LabelA:           labelA,
		LabelB:           labelB,
		PictureA:         datatypes.JSON(rawA),
		PictureB:         datatypes.JSON(rawB),
		BindingPictureID: binding,
	}

	if err := s.sessionRepo.Create(ctx, nil, session); err != nil {
		return nil, apierr.Internal(fmt.Errorf("persist session: %w", err))
	}

	if s.recent != nil {
		if err := s.recent.Add(ctx, picA.ID, picB.ID); err != nil {
			s.log.Warn("Failed to record recently served pictures", "error", err)
		}
	}

	s.log.Info("Created prediction session", "session_id", session.ID, "label_a", labelA, "label_b", labelB)
	return session, nil
}

func (s *predictionSessionService) Get(ctx context.Context, id uuid.UUID) (*types.PredictionSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if session == nil {
		return nil, apierr.NotFound("session %s not found", id)
	}
	return session, nil
}

func (s *predictionSessionService) List(ctx context.Context, limit int) ([]*types.PredictionSession, error) {
	sessions, err := s.sessionRepo.List(ctx, nil, limit)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return sessions, nil
}

func (s *predictionSessionService) Predict(ctx context.Context, id uuid.UUID, text, sketchURL string) (*types.PredictionSession, error) {
	session, verdict, err := s.adjudicateFor(ctx, id, text, sketchURL, "adjudicate")
	if err != nil {
		return nil, err
	}

	// The verdict and the status transition commit as one conditional write:
	// either the full verdict lands with the new status, or nothing does.
	patch := map[string]any{
		"status":                types.SessionStatusPredictionMade,
		"prediction_text":       strings.TrimSpace(text),
		"prediction_sketch_url": strings.TrimSpace(sketchURL),
		"matched_label":         verdict.MatchedLabel,
		"confidence_score":      verdict.Confidence,
		"reasoning":             verdict.Reasoning,
		"analysis_a":            verdict.AnalysisA,
		"analysis_b":            verdict.AnalysisB,
	}

	applied, err := s.sessionRepo.ConditionalUpdate(ctx, nil, id, types.SessionStatusCreated, patch)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("persist prediction: %w", err))
	}
	if !applied {
		return nil, apierr.InvalidState("session %s is no longer awaiting a prediction", id)
	}

	s.log.Info("Recorded prediction", "session_id", session.ID, "matched_label", verdict.MatchedLabel, "confidence", verdict.Confidence)
	return s.Get(ctx, id)
}

func (s *predictionSessionService) PreviewPrediction(ctx context.Context, id uuid.UUID, text, sketchURL string) (*types.Verdict, error) {
	_, verdict, err := s.adjudicateFor(ctx, id, text, sketchURL, "preview")
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

// adjudicateFor validates the prediction inputs against the session's
// current state and runs the adjudicator. Shared by Predict and
// PreviewPrediction; only Predict commits the result.
func (s *predictionSessionService) adjudicateFor(ctx context.Context, id uuid.UUID, text, sketchURL, callType string) (*types.PredictionSession, *types.Verdict, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != types.SessionStatusCreated {
		return nil, nil, apierr.InvalidState("session %s has status %s, expected %s", id, session.Status, types.SessionStatusCreated)
	}

	text = strings.TrimSpace(text)
	sketchURL = strings.TrimSpace(sketchURL)
	if text == "" && sketchURL == "" {
		return nil, nil, apierr.Validation("a prediction needs text or a sketch")
	}

	picA, err := decodePicture(session.PictureA)
	if err != nil {
		return nil, nil, apierr.Internal(fmt.Errorf("decode picture A: %w", err))
	}
	picB, err := decodePicture(session.PictureB)
	if err != nil {
		return nil, nil, apierr.Internal(fmt.Errorf("decode picture B: %w", err))
	}

	raw := s.adjudicator.Adjudicate(ctx, openai.AdjudicationRequest{
		SessionID: &session.ID,
		CallType:  callType,
		Text:      text,
		SketchURL: sketchURL,
		PictureA:  *picA,
		PictureB:  *picB,
	})

	return session, mapVerdict(raw, session.LabelA, session.LabelB), nil
}

// mapVerdict resolves the adjudicator's side-relative answer to the
// session's actual outcome labels.
func mapVerdict(raw *openai.Verdict, labelA, labelB string) *types.Verdict {
	out := &types.Verdict{
		Confidence: raw.Confidence,
		Reasoning:  raw.Reasoning,
		AnalysisA:  raw.AnalysisA,
		AnalysisB:  raw.AnalysisB,
	}
	switch raw.Matched {
	case "A":
		out.MatchedLabel = labelA
	case "B":
		out.MatchedLabel = labelB
	}
	return out
}

func (s *predictionSessionService) Reveal(ctx context.Context, id uuid.UUID, winningLabel string) (*types.PredictionSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	winningLabel = strings.TrimSpace(winningLabel)
	if winningLabel != session.LabelA && winningLabel != session.LabelB {
		return nil, apierr.Validation("winning label %q is not one of the session's labels", winningLabel)
	}

	// A session may be revealed straight from created: abandoned sessions
	// still get closed out when the outcome resolves.
	switch session.Status {
	case types.SessionStatusCreated, types.SessionStatusPredictionMade:
	default:
		return nil, apierr.InvalidState("session %s has status %s and cannot be revealed", id, session.Status)
	}

	revealedID, err := resolveBoundPicture(session, winningLabel)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	patch := map[string]any{
		"status":              types.SessionStatusRevealed,
		"winning_label":       winningLabel,
		"revealed_picture_id": revealedID,
	}

	applied, err := s.sessionRepo.ConditionalUpdate(ctx, nil, id, session.Status, patch)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("persist reveal: %w", err))
	}
	if !applied {
		return nil, apierr.InvalidState("session %s was advanced concurrently", id)
	}

	s.log.Info("Revealed session", "session_id", session.ID, "winning_label", winningLabel)
	return s.Get(ctx, id)
}

// resolveBoundPicture returns the id of the picture bound to winningLabel:
// the binding picture for labelA, its complement for labelB.
func resolveBoundPicture(session *types.PredictionSession, winningLabel string) (string, error) {
	picA, err := decodePicture(session.PictureA)
	if err != nil {
		return "", fmt.Errorf("decode picture A: %w", err)
	}
	picB, err := decodePicture(session.PictureB)
	if err != nil {
		return "", fmt.Errorf("decode picture B: %w", err)
	}

	var complement string
	switch session.BindingPictureID {
	case picA.ID:
		complement = picB.ID
	case picB.ID:
		complement = picA.ID
	default:
		return "", fmt.Errorf("binding %q matches neither candidate", session.BindingPictureID)
	}

	if winningLabel == session.LabelA {
		return session.BindingPictureID, nil
	}
	return complement, nil
}

func (s *predictionSessionService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.sessionRepo.Delete(ctx, nil, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !found {
		return apierr.NotFound("session %s not found", id)
	}
	s.log.Info("Deleted session", "session_id", id)
	return nil
}

func (s *predictionSessionService) recentExclusions(ctx context.Context) map[string]struct{} {
	if s.recent == nil {
		return nil
	}
	excluded, err := s.recent.Snapshot(ctx)
	if err != nil {
		s.log.Warn("Failed to read recently served pictures, proceeding without exclusions", "error", err)
		return nil
	}
	return excluded
}
