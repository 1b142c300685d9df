package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Config holds verifier settings. Issuer is matched as a substring so one
// deployment works across Supabase project URLs ("https://<ref>.supabase.co/auth/v1").
type Config struct {
	JWTSecret string `env:"SUPABASE_JWT_SECRET,required"`
	Issuer    string `env:"SUPABASE_JWT_ISSUER" envDefault:"supabase"`
}

// Verifier validates HS256 access tokens against the identity provider's
// shared JWT secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a token verifier. The secret must be the identity
// provider's JWT signing secret.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
	}, nil
}

// Verify checks the token's signature, algorithm, expiry, and issuer, and
// returns its claims.
func (v *Verifier) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}

	// Constant-time signature check before anything in the payload is trusted.
	payload := parts[0] + "." + parts[1]
	expected := v.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return Claims{}, ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	var header struct {
		Algorithm string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	// Reject anything but HS256 to close off algorithm-confusion tricks.
	if header.Algorithm != "HS256" {
		return Claims{}, ErrWrongAlgorithm
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if err := claims.Valid(); err != nil {
		return Claims{}, err
	}
	if v.issuer != "" && !strings.Contains(claims.Issuer, v.issuer) {
		return Claims{}, ErrWrongIssuer
	}
	if claims.Subject == "" {
		return Claims{}, ErrMissingSubject
	}

	return claims, nil
}

// Subject is a convenience wrapper returning only the user ID. pkg/billing
// uses it to resolve correlation tokens.
func (v *Verifier) Subject(token string) (string, error) {
	claims, err := v.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (v *Verifier) sign(payload string) string {
	h := hmac.New(sha256.New, v.secret)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
