package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/chinazes/secretsanta/internal/database"
	"github.com/chinazes/secretsanta/internal/models"
)

// CreateTicketHandler files a support ticket for the caller.
func CreateTicketHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Category string `json:"category"`
		Subject  string `json:"subject"`
		Message  string `json:"message"`
		Priority string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if !models.ValidTicketCategory(req.Category) {
		http.Error(w, "invalid category", http.StatusBadRequest)
		return
	}
	if req.Subject == "" || req.Message == "" {
		http.Error(w, "subject and message are required", http.StatusBadRequest)
		return
	}

	ticket := models.Ticket{
		UserID:   userID,
		Category: req.Category,
		Subject:  req.Subject,
		Message:  req.Message,
		Priority: req.Priority,
	}
	if err := database.CreateTicket(r.Context(), &ticket); err != nil {
		http.Error(w, "error creating ticket", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ticket)
}

// ListTicketsHandler lists the caller's own tickets; admins get the full
// non-archived queue.
func ListTicketsHandler(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := requireUser(w, r)
	if !ok {
		return
	}

	var (
		tickets []models.Ticket
		err     error
	)
	if role == models.RoleAdmin {
		tickets, err = database.ListOpenTickets(r.Context())
	} else {
		tickets, err = database.ListTicketsForUser(r.Context(), userID)
	}
	if err != nil {
		http.Error(w, "error listing tickets", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tickets)
}

// UpdateTicketStatusHandler moves a ticket through its lifecycle. Admin only.
func UpdateTicketStatusHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req struct {
		TicketID string `json:"ticket_id"`
		Status   string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	ticketID, err := uuid.Parse(req.TicketID)
	if err != nil {
		http.Error(w, "invalid ticket id", http.StatusBadRequest)
		return
	}
	if !models.ValidTicketStatus(req.Status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	if err := database.UpdateTicketStatus(r.Context(), ticketID, req.Status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "ticket not found", http.StatusNotFound)
			return
		}
		http.Error(w, "error updating ticket", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ArchiveTicketHandler hides a ticket from the admin queue. Admin only.
func ArchiveTicketHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req struct {
		TicketID string `json:"ticket_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	ticketID, err := uuid.Parse(req.TicketID)
	if err != nil {
		http.Error(w, "invalid ticket id", http.StatusBadRequest)
		return
	}

	if err := database.ArchiveTicket(r.Context(), ticketID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "ticket not found", http.StatusNotFound)
			return
		}
		http.Error(w, "error archiving ticket", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
