package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftlabs/driftsync/internal/client/storage"
	"github.com/driftlabs/driftsync/internal/validation"
	"github.com/driftlabs/driftsync/pkg/api"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Register ===")

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	resp, err := c.apiClient.Register(ctx, api.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	c.io.Printf("Registered %s. Run 'driftsync login' to start a session.\n", resp.Username)
	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	resp, err := c.apiClient.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	session := &storage.Session{
		UserID:      resp.UserID,
		Username:    username,
		AccessToken: resp.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if err := c.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.io.Printf("Logged in as %s (token expires in %ds).\n", username, resp.ExpiresIn)
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.sessions.DeleteSession(ctx); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("No active session.")
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	c.io.Println("Logged out.")
	return nil
}
