package models

import (
	"time"

	"github.com/google/uuid"
)

// Ticket categories.
const (
	TicketCategoryBug      = "bug"
	TicketCategoryIdea     = "idea"
	TicketCategoryQuestion = "question"
	TicketCategoryOther    = "other"
)

// Ticket statuses.
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// Ticket priorities.
const (
	TicketPriorityLow      = "low"
	TicketPriorityMedium   = "medium"
	TicketPriorityHigh     = "high"
	TicketPriorityCritical = "critical"
)

// ValidTicketCategory reports whether s is one of the known categories.
func ValidTicketCategory(s string) bool {
	switch s {
	case TicketCategoryBug, TicketCategoryIdea, TicketCategoryQuestion, TicketCategoryOther:
		return true
	}
	return false
}

// ValidTicketStatus reports whether s is one of the known statuses.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is a support request filed by a user.
type Ticket struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Category    string    `json:"category"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	IsArchived  bool      `json:"is_archived"`
	SeenByAdmin bool      `json:"seen_by_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
