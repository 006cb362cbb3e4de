package types

import (
	"time"

	"github.com/google/uuid"
)

// OracleCallLog records one adjudication attempt against the reasoning
// oracle. Rows are written best-effort; a failed insert never fails the
// protocol operation that triggered the call.
type OracleCallLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID *uuid.UUID `gorm:"type:uuid;index" json:"session_id,omitempty"`
	CallType  string     `gorm:"column:call_type;not null" json:"call_type"` // adjudicate|preview
	Model     string     `gorm:"column:model;not null" json:"model"`
	Prompt    string     `gorm:"column:prompt" json:"prompt"`
	Response  string     `gorm:"column:response" json:"response"`
	Success   bool       `gorm:"column:success;not null" json:"success"`
	Error     string     `gorm:"column:error" json:"error"`
	LatencyMs int64      `gorm:"column:latency_ms" json:"latency_ms"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (OracleCallLog) TableName() string { return "oracle_call_log" }
