package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/feedhub/internal/client/auth"
)

func (c *Cli) runSignup(ctx context.Context) error {
	c.io.Println("=== Signup ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	name, err := c.io.ReadInput("Name: ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	userID, err := c.session.Signup(ctx, email, name, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Account created!")
	c.io.Printf("User ID: %s\n", userID)
	c.io.Println("Run 'feedhub login' to start a session.")
	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	session, err := c.session.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("User ID: %s\n", session.UserID)
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.session.Logout(ctx); err != nil {
		return err
	}
	c.io.Println("✓ Logged out")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	session, err := c.session.Current(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.io.Println("Session: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'feedhub login' to authenticate.")
		return nil
	}
	if err != nil {
		return err
	}

	status, err := c.api.Status(ctx, session.Token)
	if err != nil {
		return serverError(err)
	}

	c.io.Println("Session: Authenticated")
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Status: %s\n", status)
	return nil
}

func (c *Cli) runSetStatus(ctx context.Context, args []string) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	status := strings.TrimSpace(strings.Join(args, " "))
	if status == "" {
		if status, err = c.io.ReadInput("New status: "); err != nil {
			return fmt.Errorf("failed to read status: %w", err)
		}
	}

	if err := c.api.UpdateStatus(ctx, token, status); err != nil {
		return serverError(err)
	}

	c.io.Printf("✓ Status updated: %s\n", status)
	return nil
}

func (c *Cli) runSessions(ctx context.Context) error {
	sessions, err := c.session.Sessions(ctx)
	if err != nil {
		return err
	}

	c.io.Println("=== Saved Sessions ===")
	c.io.Println()

	if len(sessions) == 0 {
		c.io.Println("No sessions found.")
		return nil
	}

	for _, s := range sessions {
		marker := " "
		if s.Current {
			marker = "*"
		}
		c.io.Printf("%s %s\n", marker, s.ServerURL)
		c.io.Printf("  Email:   %s\n", s.Email)
		switch {
		case s.Expired:
			c.io.Println("  Expires: expired, login again")
		case s.ExpiresAt.IsZero():
			c.io.Println("  Expires: never")
		default:
			c.io.Printf("  Expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
		}
	}

	return nil
}
