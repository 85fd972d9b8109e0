// Package identity persists user identity records and implements the
// login flow that creates them on first successful sign-in.
package identity

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an identity record. The (email, gasId) pair is unique, and
// each field is individually unique as well. Users are never deleted.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email        string             `bson:"email" json:"email"`
	GasID        primitive.ObjectID `bson:"gasId" json:"gasId"`
	FirstName    string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	LastLoggedIn *time.Time         `bson:"lastLoggedIn,omitempty" json:"lastLoggedIn,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins the optional name fields for display.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Summary is the denormalized identity shape embedded in list results.
type Summary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
}

// LoginRequest is the validated login payload.
type LoginRequest struct {
	Email     string
	GasID     primitive.ObjectID
	FirstName string
	LastName  string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User    *User
	Token   string
	Created bool
}
