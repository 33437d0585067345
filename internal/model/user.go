package model

import "time"

// User roles. Customers create and pay for reservations; guides scan
// check-in tokens at boarding time.
const (
	RoleCustomer = "CUSTOMER"
	RoleGuide    = "GUIDE"
)

// User is an account able to authenticate against the API.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique login email, stored lower-cased.
//  PasswordHash – bcrypt hash of the password.
//  Role         – CUSTOMER or GUIDE.
//  CreatedAt    – creation timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
