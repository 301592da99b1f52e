package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role determines which access policy scopes a caller's task queries.
type Role string

const (
	RoleGeneralist Role = "generalist"
	RoleSpecialist Role = "specialist"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
