package model

import (
	"time"

	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
)

// Appointment statuses. Cancelled appointments stay on record but no longer
// block slot generation or conflict checks.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

type Appointment struct {
	ID            string
	ClientID      string
	Name          string
	Email         string
	Phone         string
	Company       string
	Interest      string
	Date          slots.Date
	StartMinute   int
	Status        string
	ChatSessionID string // empty when the booking did not come from a chat session
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type BlackoutDate struct {
	ID        string
	ClientID  string
	Date      slots.Date
	Reason    string
	CreatedAt time.Time
}

type ChatMessage struct {
	ID        string
	ClientID  string
	SessionID string
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}

type Operator struct {
	ID           string
	ClientID     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
