package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/waterwatch/internal/client/api"
	"github.com/dmitrijs2005/waterwatch/internal/common"
)

func (a *App) Signup(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "-Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Signup(ctx, name, email, string(password)); err != nil {
		a.printf("Sign-up unsuccessful: %v", err)
		return err
	}

	a.printf("Account created, you can sign in now")
	return nil
}

func (a *App) Signin(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Signin(ctx, email, string(password)); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			a.printf("Sign-in unsuccessful: invalid credentials")
		} else {
			a.printf("Sign-in unsuccessful: %v", err)
		}
		return err
	}

	a.email = email
	a.saveSession(ctx)
	a.printf("Login successful")
	return nil
}

func (a *App) Signout(ctx context.Context) error {
	a.clearSession(ctx)
	a.printf("Signed out")
	return nil
}

// handleAuthError drops an expired session so the prompt reflects it.
func (a *App) handleAuthError(ctx context.Context, err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		a.clearSession(ctx)
		a.printf("Session expired, please sign in again")
	}
}

const (
	sessionEmailKey = "session.email"
	sessionTokenKey = "session.token"
)

// saveSession keeps the token so the next run starts signed in. Failures
// only cost the user a sign-in.
func (a *App) saveSession(ctx context.Context) {
	if err := a.meta.Set(ctx, sessionEmailKey, []byte(a.email)); err != nil {
		a.printf("Warning: session not saved: %v", err)
		return
	}
	if err := a.meta.Set(ctx, sessionTokenKey, []byte(a.api.Token())); err != nil {
		a.printf("Warning: session not saved: %v", err)
	}
}

func (a *App) restoreSession(ctx context.Context) {
	email, err := a.meta.Get(ctx, sessionEmailKey)
	if err != nil || len(email) == 0 {
		return
	}
	token, err := a.meta.Get(ctx, sessionTokenKey)
	if err != nil || len(token) == 0 {
		return
	}
	a.email = string(email)
	a.api.SetToken(string(token))
}

func (a *App) clearSession(ctx context.Context) {
	a.api.Signout()
	a.email = ""
	_ = a.meta.Delete(ctx, sessionTokenKey)
	_ = a.meta.Delete(ctx, sessionEmailKey)
}
