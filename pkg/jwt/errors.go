package jwt

import "errors"

var (
	ErrInvalidToken            = errors.New("jwt: invalid token")
	ErrExpiredToken            = errors.New("jwt: token is expired")
	ErrMissingSigningKey       = errors.New("jwt: missing signing key")
	ErrInvalidClaims           = errors.New("jwt: invalid claims")
	ErrMissingClaims           = errors.New("jwt: missing claims")
	ErrMissingSubject          = errors.New("jwt: token has no subject")
	ErrInvalidSignature        = errors.New("jwt: invalid signature")
	ErrInvalidAudience         = errors.New("jwt: token is not meant for this audience")
	ErrInvalidIssuer           = errors.New("jwt: unexpected issuer")
	ErrUnexpectedSigningMethod = errors.New("jwt: unexpected signing method")
)
