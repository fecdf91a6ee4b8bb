package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidCredentials    = errors.New("Invalid credentials")
	ErrPendingApproval       = errors.New("Your account is pending approval. Please contact an admin.")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrEmailRegistered       = errors.New("Email already registered")
	ErrIntroducerNotFound    = errors.New("Introducer not found")
	ErrInvalidEmailFormat    = errors.New("Invalid email format")
	ErrInvalidPassword       = errors.New("Invalid password format")
	ErrInvalidName           = errors.New("Name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
)
