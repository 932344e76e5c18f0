// Package auth validates bearer tokens and carries the acting user through
// request contexts. The user ID it yields becomes the changed_by attribution
// on fact history entries.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AnonymousUser is the acting user recorded when verification is disabled
// and no token accompanies the request.
const AnonymousUser = "anonymous"

// Claims are the JWT claims this service reads. Subject identifies the
// acting user.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
