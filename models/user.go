package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleEmployee UserRole = "employee"
	UserRoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleEmployee, UserRoleAdmin:
		return true
	default:
		return false
	}
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive:
		return true
	default:
		return false
	}
}

type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	Name           string             `json:"name" bson:"name"`
	Role           UserRole           `json:"role" bson:"role"`
	Status         UserStatus         `json:"status" bson:"status"`
	HashedPassword string             `json:"-" bson:"hashed_password"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (u *User) IsEmployee() bool {
	return u.Role == UserRoleEmployee
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
