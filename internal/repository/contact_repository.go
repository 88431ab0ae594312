package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innouni-api/internal/models"
)

// ContactRepository stores contact-form submissions.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository constructs the repository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create persists a message and populates generated columns.
func (r *ContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	const query = `INSERT INTO contact_messages (name, email, message, ip_address) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, msg.Name, msg.Email, msg.Message, msg.IPAddress).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}
