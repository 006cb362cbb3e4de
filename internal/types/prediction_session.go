package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionStatusCreated        SessionStatus = "created"
	SessionStatusPredictionMade SessionStatus = "prediction_made"
	SessionStatusRevealed       SessionStatus = "revealed"
	// SessionStatusExpired is declared for forward compatibility; no
	// transition currently produces it and no expiry timer exists.
	SessionStatusExpired SessionStatus = "expired"
)

// PredictionSession is one run of the double-blind protocol. The two
// candidate pictures are stored as JSONB snapshots; BindingPictureID holds
// which of the two is secretly associated with LabelA (the other is
// implicitly LabelB's). The binding is fixed at creation and never updated.
type PredictionSession struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Status SessionStatus `gorm:"column:status;not null;index" json:"status"`

	LabelA string `gorm:"column:label_a;not null" json:"label_a"`
	LabelB string `gorm:"column:label_b;not null" json:"label_b"`

	PictureA         datatypes.JSON `gorm:"type:jsonb;column:picture_a;not null" json:"picture_a"`
	PictureB         datatypes.JSON `gorm:"type:jsonb;column:picture_b;not null" json:"picture_b"`
	BindingPictureID string         `gorm:"column:binding_picture_id;not null" json:"binding_picture_id"`

	PredictionText      string `gorm:"column:prediction_text" json:"prediction_text,omitempty"`
	PredictionSketchURL string `gorm:"column:prediction_sketch_url" json:"prediction_sketch_url,omitempty"`

	MatchedLabel    string `gorm:"column:matched_label" json:"matched_label,omitempty"`
	ConfidenceScore *int   `gorm:"column:confidence_score" json:"confidence_score,omitempty"`
	Reasoning       string `gorm:"column:reasoning" json:"reasoning,omitempty"`
	AnalysisA       string `gorm:"column:analysis_a" json:"analysis_a,omitempty"`
	AnalysisB       string `gorm:"column:analysis_b" json:"analysis_b,omitempty"`

	WinningLabel      string `gorm:"column:winning_label" json:"winning_label,omitempty"`
	RevealedPictureID string `gorm:"column:revealed_picture_id" json:"revealed_picture_id,omitempty"`
}

func (PredictionSession) TableName() string { return "prediction_session" }
