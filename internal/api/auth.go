// Package api holds the typed call wrappers over the gateway, one module
// per area of the service. The modules shape payloads and nothing else;
// failures from the gateway propagate unmodified.
package api

import (
	"context"

	"github.com/subdock/subdock-cli/internal/gateway"
	"github.com/subdock/subdock-cli/internal/models"
)

// CredentialStore is the auth module's view of the credential store. Only
// this module touches it on behalf of commands; everything else sees tokens
// indirectly through the gateway.
type CredentialStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

type Auth struct {
	gw    *gateway.Gateway
	store CredentialStore
}

func NewAuth(gw *gateway.Gateway, store CredentialStore) *Auth {
	return &Auth{gw: gw, store: store}
}

// Login exchanges credentials for a token and stores it, making the session
// authenticated for every subsequent request.
func (a *Auth) Login(ctx context.Context, username, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	err := a.gw.Post(ctx, "/login", models.LoginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return models.LoginResponse{}, err
	}
	if err := a.store.Set(resp.Token); err != nil {
		return models.LoginResponse{}, err
	}
	return resp, nil
}

func (a *Auth) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return a.gw.Post(ctx, "/change-password", models.ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
}

// Logout clears the stored credential. Purely local; the token itself is
// left to expire server-side.
func (a *Auth) Logout() error {
	return a.store.Clear()
}

// Token returns the stored credential, empty when the session is
// unauthenticated. Validity stays the server's call.
func (a *Auth) Token() (string, error) {
	return a.store.Get()
}
