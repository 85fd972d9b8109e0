// Package auth implements the authentication gate and role
// authorization for the HTTP API.
//
// Every request outside the public allow-list must carry either the
// static system API key (x-api-key header) or a signed bearer token.
// On success a resolved Principal is attached to the request context;
// the gate never mutates persisted state.
package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// principalKey is the echo context key the gate stores the resolved
// principal under.
const principalKey = "auth.principal"

// Principal is the authenticated actor attached to a request.
type Principal struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	GasID    string `json:"gasId"`
	// Roles is a comma-separated role string, matched case-insensitively.
	Roles string `json:"roles"`
	// APIKey marks the synthetic system principal.
	APIKey bool `json:"apiKey,omitempty"`
}

// HasRole reports whether the principal holds any of the required
// roles. Matching is case-insensitive and whitespace-trimmed.
func (p *Principal) HasRole(required ...string) bool {
	held := strings.Split(p.Roles, ",")
	for _, want := range required {
		want = strings.ToLower(strings.TrimSpace(want))
		for _, have := range held {
			if strings.ToLower(strings.TrimSpace(have)) == want {
				return true
			}
		}
	}
	return false
}

// SetPrincipal stores the principal in the request context.
func SetPrincipal(c echo.Context, p *Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal retrieves the principal attached by the gate.
func CurrentPrincipal(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}
