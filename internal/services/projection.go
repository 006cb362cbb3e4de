package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/farsightlab/arv-backend/internal/types"
)

// SessionView is what a session looks like from outside the trust boundary.
// Every handler response passes through Project; nothing else serializes a
// session. None of the variants has a binding field, so the double-blind
// guarantee holds structurally rather than by per-endpoint field stripping.
type SessionView interface {
	sessionView()
}

type sessionViewBase struct {
	ID        uuid.UUID           `json:"id"`
	Status    types.SessionStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	LabelA    string              `json:"label_a"`
	LabelB    string              `json:"label_b"`

	PredictionText      string `json:"prediction_text,omitempty"`
	PredictionSketchURL string `json:"prediction_sketch_url,omitempty"`

	MatchedLabel    string `json:"matched_label,omitempty"`
	ConfidenceScore *int   `json:"confidence_score,omitempty"`
	Reasoning       string `json:"reasoning,omitempty"`
	AnalysisA       string `json:"analysis_a,omitempty"`
	AnalysisB       string `json:"analysis_b,omitempty"`
}

// BlindSessionView is the default pre-reveal projection: no pictures at all.
type BlindSessionView struct {
	sessionViewBase
}

// InspectSessionView is the opt-in reduced-validity projection: both
// candidates are visible, the binding still is not. Looking at the pictures
// before predicting weakens the experiment, which is why this is never the
// default.
type InspectSessionView struct {
	sessionViewBase
	PictureA *types.Picture `json:"picture_a"`
	PictureB *types.Picture `json:"picture_b"`
}

// RevealedSessionView shows only the picture the winning label was bound
// to. The losing candidate stays hidden.
type RevealedSessionView struct {
	sessionViewBase
	WinningLabel    string         `json:"winning_label"`
	RevealedPicture *types.Picture `json:"revealed_picture"`
}

func (BlindSessionView) sessionView()    {}
func (InspectSessionView) sessionView()  {}
func (RevealedSessionView) sessionView() {}

// Project computes the externally visible subset of a session as a function
// of its status and the caller's inspect intent only.
func Project(session *types.PredictionSession, inspect bool) (SessionView, error) {
	if session == nil {
		return nil, fmt.Errorf("nil session")
	}

	base := sessionViewBase{
		ID:                  session.ID,
		Status:              session.Status,
		CreatedAt:           session.CreatedAt,
		UpdatedAt:           session.UpdatedAt,
		LabelA:              session.LabelA,
		LabelB:              session.LabelB,
		PredictionText:      session.PredictionText,
		PredictionSketchURL: session.PredictionSketchURL,
		MatchedLabel:        session.MatchedLabel,
		ConfidenceScore:     session.ConfidenceScore,
		Reasoning:           session.Reasoning,
		AnalysisA:           session.AnalysisA,
		AnalysisB:           session.AnalysisB,
	}

	switch session.Status {
	case types.SessionStatusRevealed:
		revealed, err := resolveRevealedPicture(session)
		if err != nil {
			return nil, err
		}
		return RevealedSessionView{
			sessionViewBase: base,
			WinningLabel:    session.WinningLabel,
			RevealedPicture: revealed,
		}, nil

	case types.SessionStatusCreated, types.SessionStatusPredictionMade:
		if !inspect {
			return BlindSessionView{sessionViewBase: base}, nil
		}
		picA, err := decodePicture(session.PictureA)
		if err != nil {
			return nil, fmt.Errorf("decode picture A: %w", err)
		}
		picB, err := decodePicture(session.PictureB)
		if err != nil {
			return nil, fmt.Errorf("decode picture B: %w", err)
		}
		return InspectSessionView{
			sessionViewBase: base,
			PictureA:        picA,
			PictureB:        picB,
		}, nil

	default:
		// Unknown or future statuses expose nothing beyond the base.
		return BlindSessionView{sessionViewBase: base}, nil
	}
}

func resolveRevealedPicture(session *types.PredictionSession) (*types.Picture, error) {
	picA, err := decodePicture(session.PictureA)
	if err != nil {
		return nil, fmt.Errorf("decode picture A: %w", err)
	}
	picB, err := decodePicture(session.PictureB)
	if err != nil {
		return nil, fmt.Errorf("decode picture B: %w", err)
	}
	switch session.RevealedPictureID {
	case picA.ID:
		return picA, nil
	case picB.ID:
		return picB, nil
	default:
		return nil, fmt.Errorf("revealed picture id %q matches neither candidate", session.RevealedPictureID)
	}
}

func decodePicture(raw datatypes.JSON) (*types.Picture, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty picture payload")
	}
	var pic types.Picture
	if err := json.Unmarshal(raw, &pic); err != nil {
		return nil, err
	}
	return &pic, nil
}
