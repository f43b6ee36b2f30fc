package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/chinazes/secretsanta/internal/database"
)

// ListNotificationsHandler returns the caller's inbox, newest first.
func ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	ns, err := database.ListNotifications(r.Context(), userID)
	if err != nil {
		http.Error(w, "error listing notifications", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ns)
}

// MarkNotificationReadHandler marks one of the caller's notifications read.
func MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		NotificationID string `json:"notification_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	notificationID, err := uuid.Parse(req.NotificationID)
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	if err := database.MarkNotificationRead(r.Context(), userID, notificationID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		http.Error(w, "error updating notification", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
