package models

import "time"

// ContactMessage is a stored contact-form submission.
type ContactMessage struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Message   string    `db:"message" json:"message"`
	IPAddress string    `db:"ip_address" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ContactRequest is the public contact-form payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}
