package auth

import (
	"strings"
	"time"
)

// Claims is the subset of the identity provider's JWT payload this service
// reads. UserMetadata is where OAuth providers park profile data; its shape
// varies per provider, so name extraction is best-effort.
type Claims struct {
	Subject      string         `json:"sub,omitempty"`
	Email        string         `json:"email,omitempty"`
	Issuer       string         `json:"iss,omitempty"`
	Audience     string         `json:"aud,omitempty"`
	ExpiresAt    int64          `json:"exp,omitempty"`
	IssuedAt     int64          `json:"iat,omitempty"`
	GivenName    string         `json:"given_name,omitempty"`
	FamilyName   string         `json:"family_name,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Valid checks the expiry claim. A zero exp is treated as unset.
func (c Claims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return ErrExpiredToken
	}
	return nil
}

// Name extracts a first/last name pair from the claims. OAuth providers are
// inconsistent: Google usually sends full_name or name inside user_metadata,
// sometimes explicit given/family fields, occasionally nothing at all.
// Returns empty strings when no name can be found.
func (c Claims) Name() (firstName, lastName string) {
	if c.UserMetadata != nil {
		for _, key := range []string{"full_name", "name"} {
			if full, ok := c.UserMetadata[key].(string); ok && full != "" {
				return splitName(full)
			}
		}

		firstName = stringField(c.UserMetadata, "first_name", "given_name")
		lastName = stringField(c.UserMetadata, "last_name", "family_name")
		if firstName != "" || lastName != "" {
			return firstName, lastName
		}
	}

	return c.GivenName, c.FamilyName
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
