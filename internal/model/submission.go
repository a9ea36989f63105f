package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusCompleted SubmissionStatus = "completed"
	StatusFailed    SubmissionStatus = "failed"
)

// Terminal reports whether no further transition is expected.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type PaymentMode string

const (
	ModeTest PaymentMode = "test"
	ModeLive PaymentMode = "live"
)

type Submission struct {
	ID     string `gorm:"primaryKey;size:64;not null"`
	FormID string `gorm:"size:64;index;not null"`
	// submitted values keyed by field label
	Data   map[string]string `gorm:"serializer:json"`
	Status SubmissionStatus  `gorm:"size:32;index;not null"`
	// payment processor intent id; unique when present
	TransactionRef *string         `gorm:"size:128;uniqueIndex"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"size:8;not null"`
	Mode           PaymentMode     `gorm:"size:8;not null"`
	// true once a terminal-state notification went out; guards duplicates
	Notified  bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
