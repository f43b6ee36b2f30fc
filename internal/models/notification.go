package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationInvite       = "invite"
	NotificationReminder     = "reminder"
	NotificationGiftReceived = "gift_received"
	NotificationService      = "service"
)

// Notification is a per-user inbox entry.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
