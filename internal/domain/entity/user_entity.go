package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// Single active refresh token; empty after logout.
	RefreshToken string `json:"-"`

	// Reset code pair; both empty when no reset is pending.
	PasswordResetCode        string     `json:"-"`
	PasswordResetCodeExpires *time.Time `json:"-"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// UserSummary is the populated user shown next to an order.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// WishlistItem is one saved product, ordered by AddedAt.
type WishlistItem struct {
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
	Product   *Product  `json:"product,omitempty"`
}

// Session is the server-side record of a login; tokens carry its ID.
type Session struct {
	UserID    string    `json:"userId"`
	ID        string    `json:"sid"`
	Role      Role      `json:"role"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
