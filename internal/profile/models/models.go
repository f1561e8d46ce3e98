package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

// Profile is a registered voter.
type Profile struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Registration is the input of Register.
type Registration struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Normalize trims every field and lowercases the email.
func (r *Registration) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate reports the first invalid field, or "" when r is valid.
func (r Registration) Validate() string {
	switch {
	case !govalidator.StringLength(r.FirstName, "1", "100"):
		return "first_name"
	case !govalidator.StringLength(r.LastName, "1", "100"):
		return "last_name"
	case !govalidator.StringLength(r.Email, "3", "255") || !govalidator.IsEmail(r.Email):
		return "email"
	}
	return ""
}
