package handler

import (
	"errors"
	"net/mail"
	"net/url"
)

// Validation errors.
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrMissingTitle = errors.New("title is required")
	ErrInvalidImg   = errors.New("invalid img value")
)

// validateEmail checks that the address parses as a bare RFC 5322 address.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// validateImg checks that the image reference parses as an absolute URL with
// both a scheme and a host.
func validateImg(img string) error {
	parsed, err := url.Parse(img)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ErrInvalidImg
	}
	return nil
}
