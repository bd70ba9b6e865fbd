package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleOrgAdmin  Role = "organization_admin"
	RoleOrgDriver Role = "organization_driver"
	RoleCustomer  Role = "customer"
)

// User represents an authenticated account in the system
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"password_hash" json:"-"`
	Role           Role               `bson:"role" json:"role"`
	OrganizationID string             `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	FirstName      string             `bson:"first_name" json:"first_name"`
	LastName       string             `bson:"last_name" json:"last_name"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	LastLogin      *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents the authenticated identity attached to a request
type Claims struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id"`
	Exp            int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleOrgAdmin, RoleOrgDriver, RoleCustomer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a user role may perform a specific action
func (c *Claims) HasPermission(action string) bool {
	switch c.Role {
	case RoleOrgAdmin:
		return true
	case RoleOrgDriver:
		return action == "view_fleet" || action == "view_trips" ||
			action == "update_stop_status"
	case RoleCustomer:
		return action == "view_trips" || action == "create_booking" ||
			action == "cancel_booking"
	default:
		return false
	}
}
