package auth

import "errors"

var (
	ErrNoToken          = errors.New("auth: no bearer token")
	ErrInvalidToken     = errors.New("auth: invalid token")
	ErrExpiredToken     = errors.New("auth: token is expired")
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	ErrWrongAlgorithm   = errors.New("auth: unexpected signing algorithm")
	ErrWrongIssuer      = errors.New("auth: unexpected token issuer")
	ErrMissingSubject   = errors.New("auth: token has no subject")
	ErrMissingSecret    = errors.New("auth: signing secret is required")
)
