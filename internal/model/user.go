package model

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypeStudent    AccountType = "student"
	AccountTypeInstructor AccountType = "instructor"
	AccountTypeAdmin      AccountType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Email        string      `json:"email" db:"email"`
	FirstName    string      `json:"first_name" db:"first_name"`
	LastName     string      `json:"last_name" db:"last_name"`
	PasswordHash string      `json:"-" db:"password_hash"`
	AccountType  AccountType `json:"account_type" db:"account_type"`
	Status       UserStatus  `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}
