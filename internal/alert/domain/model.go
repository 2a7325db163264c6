package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

type Alert struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	Severity      AlertSeverity `json:"severity" gorm:"type:text;not null;index"`
	Source        string        `json:"source" gorm:"type:text;not null;index"`
	Message       string        `json:"message" gorm:"type:text;not null"`
	ReferenceType string        `json:"reference_type" gorm:"type:text;not null"`
	ReferenceID   string        `json:"reference_id" gorm:"type:text;not null;index"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Alert) TableName() string { return "alerts" }

type RaiseRequest struct {
	Severity      AlertSeverity
	Source        string
	Message       string
	ReferenceType string
	ReferenceID   string
}

type Service interface {
	Raise(ctx context.Context, req RaiseRequest) (*Alert, error)
	List(ctx context.Context, severity AlertSeverity, limit int) ([]Alert, error)
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, alert *Alert) error
	FindRecent(ctx context.Context, db *gorm.DB, severity AlertSeverity, limit int) ([]Alert, error)
}

var (
	ErrInvalidSeverity = errors.New("invalid_severity")
	ErrInvalidMessage  = errors.New("invalid_message")
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case AlertSeverityInfo, AlertSeverityWarning, AlertSeverityCritical:
		return true
	default:
		return false
	}
}
