package models

import "time"

// User represents an application user stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	Avatar       *string   `db:"avatar" json:"avatar,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserProfile is the public projection of a user.
type UserProfile struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile strips private fields from the user.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRequest holds the payload for creating an account.
type RegisterRequest struct {
	FullName  string   `json:"full_name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     *string  `json:"phone" validate:"omitempty,max=50"`
	Password  string   `json:"password" validate:"required,min=8"`
	Role      UserRole `json:"role" validate:"omitempty,oneof=student teacher admin"`
	IP        string   `json:"-"`
	UserAgent string   `json:"-"`
}

// UpdateProfileRequest changes only the supplied fields.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Bio      *string `json:"bio"`
}
