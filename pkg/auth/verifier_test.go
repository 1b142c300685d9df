package auth_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurahabits/aura/pkg/auth"
)

func newVerifier(t *testing.T) *auth.Verifier {
	t.Helper()
	v, err := auth.NewVerifier(auth.Config{
		JWTSecret: "super-secret-signing-key-for-tests",
		Issuer:    "supabase",
	})
	require.NoError(t, err)
	return v
}

func validClaims() auth.Claims {
	return auth.Claims{
		Subject:   "user-123",
		Email:     "jordan@example.com",
		Issuer:    "https://abc.supabase.co/auth/v1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
}

func TestNewVerifier(t *testing.T) {
	t.Parallel()

	_, err := auth.NewVerifier(auth.Config{})
	assert.ErrorIs(t, err, auth.ErrMissingSecret)
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	v := newVerifier(t)

	t.Run("valid token round trip", func(t *testing.T) {
		t.Parallel()

		token, err := v.Sign(validClaims())
		require.NoError(t, err)

		claims, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.Subject)
		assert.Equal(t, "jordan@example.com", claims.Email)
	})

	t.Run("rejects tampered signature", func(t *testing.T) {
		t.Parallel()

		token, err := v.Sign(validClaims())
		require.NoError(t, err)

		_, err = v.Verify(token + "x")
		assert.ErrorIs(t, err, auth.ErrInvalidSignature)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		t.Parallel()

		other, err := auth.NewVerifier(auth.Config{JWTSecret: "different-secret", Issuer: "supabase"})
		require.NoError(t, err)
		token, err := other.Sign(validClaims())
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidSignature)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()

		claims := validClaims()
		claims.ExpiresAt = time.Now().Add(-time.Minute).Unix()
		token, err := v.Sign(claims)
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("rejects wrong issuer", func(t *testing.T) {
		t.Parallel()

		claims := validClaims()
		claims.Issuer = "https://evil.example.com"
		token, err := v.Sign(claims)
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrWrongIssuer)
	})

	t.Run("rejects missing subject", func(t *testing.T) {
		t.Parallel()

		claims := validClaims()
		claims.Subject = ""
		token, err := v.Sign(claims)
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrMissingSubject)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		t.Parallel()

		_, err := v.Verify("not-a-jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestVerifier_Subject(t *testing.T) {
	t.Parallel()

	v := newVerifier(t)
	token, err := v.Sign(validClaims())
	require.NoError(t, err)

	sub, err := v.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestClaims_Name(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		claims    auth.Claims
		wantFirst string
		wantLast  string
	}{
		{
			name: "full_name in metadata",
			claims: auth.Claims{UserMetadata: map[string]any{
				"full_name": "Ada Lovelace King",
			}},
			wantFirst: "Ada",
			wantLast:  "Lovelace King",
		},
		{
			name: "explicit metadata fields",
			claims: auth.Claims{UserMetadata: map[string]any{
				"given_name":  "Grace",
				"family_name": "Hopper",
			}},
			wantFirst: "Grace",
			wantLast:  "Hopper",
		},
		{
			name:      "root level claims",
			claims:    auth.Claims{GivenName: "Alan", FamilyName: "Turing"},
			wantFirst: "Alan",
			wantLast:  "Turing",
		},
		{
			name:      "nothing available",
			claims:    auth.Claims{},
			wantFirst: "",
			wantLast:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			first, last := tt.claims.Name()
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	t.Run("extracts bearer token", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer abc.def.ghi")

		token, err := auth.BearerToken(r)
		require.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", token)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		_, err := auth.BearerToken(r)
		assert.ErrorIs(t, err, auth.ErrNoToken)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := auth.BearerToken(r)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
