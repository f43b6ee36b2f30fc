package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chinazes/secretsanta/internal/models"
)

const ticketColumns = `id, user_id, category, subject, message, status, priority, is_archived, seen_by_admin, created_at, updated_at`

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.UserID, &t.Category, &t.Subject, &t.Message, &t.Status,
		&t.Priority, &t.IsArchived, &t.SeenByAdmin, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTicket files a new support ticket as open/medium.
func CreateTicket(ctx context.Context, t *models.Ticket) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Status = models.TicketStatusOpen
	if t.Priority == "" {
		t.Priority = models.TicketPriorityMedium
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	q := `INSERT INTO tickets (id, user_id, category, subject, message, status, priority, is_archived, seen_by_admin, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, false, false, $8, $9)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			t.ID, t.UserID, t.Category, t.Subject, t.Message,
			t.Status, t.Priority, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
}

// ListTicketsForUser returns the user's own tickets, newest first.
func ListTicketsForUser(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id=$1 ORDER BY created_at DESC`
	return queryTickets(ctx, q, userID)
}

// ListOpenTickets returns all non-archived tickets for the admin view
// and marks nothing; seen_by_admin is set explicitly via UpdateTicketStatus.
func ListOpenTickets(ctx context.Context) ([]models.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE NOT is_archived ORDER BY created_at DESC`
	return queryTickets(ctx, q)
}

func queryTickets(ctx context.Context, q string, args ...interface{}) ([]models.Ticket, error) {
	rows, err := DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ts []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		ts = append(ts, *t)
	}
	return ts, rows.Err()
}

// UpdateTicketStatus moves a ticket to a new status and flags it as seen.
func UpdateTicketStatus(ctx context.Context, ticketID uuid.UUID, status string) error {
	if !models.ValidTicketStatus(status) {
		return fmt.Errorf("invalid ticket status %q", status)
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE tickets SET status=$1, seen_by_admin=true, updated_at=NOW() WHERE id=$2`,
			status, ticketID,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return nil
	})
}

// ArchiveTicket hides a ticket from the admin list without deleting it.
func ArchiveTicket(ctx context.Context, ticketID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE tickets SET is_archived=true, updated_at=NOW() WHERE id=$1`, ticketID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return nil
	})
}
