package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// AuthRegister creates an account and signs in as it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")
	name := cmd.String("name")

	identity, err := r.session.Register(ctx, email, password, name)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	r.persistSession()

	r.writePlain("✓ Account created\n")
	r.writePlain("Signed in as %s <%s>\n", identity.Name, identity.Email)
	return nil
}

// AuthLogin signs in with email and password and stores the session secret.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	identity, err := r.session.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	r.persistSession()

	r.writePlain("✓ Signed in as %s <%s>\n", identity.Name, identity.Email)
	return nil
}

// AuthLogout invalidates the remote session and clears the stored secret.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession()

	if err := r.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	r.clearStoredSession()

	r.writePlain("✓ Signed out\n")
	return nil
}

// AuthWhoami shows the identity behind the current session, if any.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	r.restoreSession()

	identity, err := r.session.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	if identity == nil {
		return r.writePlain("Not signed in\n")
	}

	if useJSON {
		return r.writeJSON(identity, true)
	}

	r.writePlain("Signed in as %s <%s>\n", identity.Name, identity.Email)
	r.writePlain("User ID: %s\n", identity.ID)
	return nil
}

// AuthReset requests a password recovery email pointing at the recovery page.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")

	if err := r.session.RequestPasswordReset(ctx, email, r.config.Appwrite.RecoveryURL); err != nil {
		return fmt.Errorf("recovery request failed: %w", err)
	}

	r.writePlain("✓ Recovery email sent to %s\n", email)
	r.writePlain("Run 'reelist serve' to host the reset page at %s\n", r.config.Appwrite.RecoveryURL)
	return nil
}
