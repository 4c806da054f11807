package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clouddash/internal/client/services"
)

func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.println("Already logged in; use logout first.")
		return nil
	}

	userName, err := GetSimpleText(a.reader, "-Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	err = a.guard.SubmitCredentials(ctx, userName, string(password))
	switch {
	case errors.Is(err, services.ErrValidation):
		a.println("Username and password are required.")
		return err
	case errors.Is(err, services.ErrInvalidCredentials):
		a.println("Invalid username or password.")
		return err
	case err != nil:
		a.println("Login failed:", err)
		return err
	}

	a.println("Login successful")
	a.refresh(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.guard.Logout(ctx); err != nil {
		a.println("Not logged in.")
		return err
	}
	a.println("Logged out.")
	return nil
}
