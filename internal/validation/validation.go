// Package validation holds the input rules shared by client and server.
package validation

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/driftlabs/driftsync/internal/models"
)

// UsernamePattern defines the accepted username format:
// letters (a-z, A-Z), digits (0-9) and underscores, 3-32 characters.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	// MinUsernameLen is the minimum username length
	MinUsernameLen = 3
	// MaxUsernameLen is the maximum username length
	MaxUsernameLen = 32

	// MinPasswordLen is the minimum password length
	MinPasswordLen = 12

	// MaxTitleLen is the maximum projection title length
	MaxTitleLen = 256
)

// ValidateUsername checks that a username matches the accepted format.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidatePassword checks the minimum password requirements.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateDocumentID checks that a document ID is a UUID.
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("document id must be a UUID")
	}
	return nil
}

// ValidateDocumentType checks that a document type is one of the known
// kinds.
func ValidateDocumentType(docType string) error {
	if _, err := models.ParseDocumentType(docType); err != nil {
		return err
	}
	return nil
}

// ValidateTitle bounds a projection title.
func ValidateTitle(title string) error {
	if len(title) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}
	return nil
}
