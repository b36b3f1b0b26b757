package identity

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/numberskills/nsadmin/internal/session"
)

// Authority describes the identity provider the CLI authenticates against:
// a fixed tenant authority, the registered client, and the scope sets for
// sign-in and API access.
type Authority struct {
	URL          string
	ClientID     string
	SignInScopes []string
	APIScope     string
}

// Scopes returns the combined scope set requested during sign-in. Requesting
// the API scope alongside the profile scopes yields a refresh credential that
// can silently mint API tokens later.
func (a Authority) Scopes() []string {
	scopes := append([]string{}, a.SignInScopes...)
	if a.APIScope != "" {
		scopes = append(scopes, a.APIScope)
	}
	return scopes
}

// DeviceAuthenticator implements Authenticator with the OAuth2 device
// authorization grant - the terminal analog of a browser popup challenge.
// The user is told to visit a verification URL and enter a short code; the
// CLI polls the token endpoint until the grant completes.
type DeviceAuthenticator struct {
	cfg    oauth2.Config
	notify func(*oauth2.DeviceAuthResponse)
}

// NewDeviceAuthenticator builds a device-flow authenticator for the
// authority. The notify callback reports the verification URL and user code;
// when nil, they are printed to stderr.
func NewDeviceAuthenticator(auth Authority, notify func(*oauth2.DeviceAuthResponse)) *DeviceAuthenticator {
	base := strings.TrimRight(auth.URL, "/")
	if notify == nil {
		notify = printDeviceCode
	}
	return &DeviceAuthenticator{
		cfg: oauth2.Config{
			ClientID: auth.ClientID,
			Scopes:   auth.Scopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:       base + "/oauth2/v2.0/authorize",
				TokenURL:      base + "/oauth2/v2.0/token",
				DeviceAuthURL: base + "/oauth2/v2.0/devicecode",
			},
		},
		notify: notify,
	}
}

// Refresh redeems the refresh credential for a fresh access token without
// user interaction.
func (d *DeviceAuthenticator) Refresh(ctx context.Context, refreshToken string) (*session.Session, error) {
	src := d.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token grant: %w", err)
	}
	return sessionFromToken(tok), nil
}

// Interactive runs the device authorization flow from scratch.
func (d *DeviceAuthenticator) Interactive(ctx context.Context) (*session.Session, error) {
	da, err := d.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}

	d.notify(da)

	tok, err := d.cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("device authorization: %w", err)
	}
	return sessionFromToken(tok), nil
}

func printDeviceCode(da *oauth2.DeviceAuthResponse) {
	uri := da.VerificationURIComplete
	if uri != "" {
		fmt.Fprintf(os.Stderr, "To sign in, open %s in a browser.\n", uri)
		return
	}
	fmt.Fprintf(os.Stderr, "To sign in, open %s in a browser and enter the code: %s\n",
		da.VerificationURI, da.UserCode)
}

// accountClaims is the subset of token claims used to identify the signed-in
// account. Parsed without signature verification: the claims only label local
// output, the server validates every token it receives.
type accountClaims struct {
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	jwt.RegisteredClaims
}

func sessionFromToken(tok *oauth2.Token) *session.Session {
	sess := &session.Session{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		sess.ExpiresAtUnix = tok.Expiry.Unix()
	}

	sess.Account = accountFrom(tok)

	if sess.ExpiresAtUnix == 0 {
		var claims accountClaims
		if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
			sess.ExpiresAtUnix = claims.ExpiresAt.Unix()
		}
	}

	return sess
}

// accountFrom extracts the account identity, preferring the ID token when the
// provider returned one.
func accountFrom(tok *oauth2.Token) session.Account {
	raw := tok.AccessToken
	if id, ok := tok.Extra("id_token").(string); ok && id != "" {
		raw = id
	}

	var claims accountClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return session.Account{}
	}

	email := claims.PreferredUsername
	if email == "" {
		email = claims.Email
	}
	return session.Account{Name: claims.Name, Email: email}
}

var _ Authenticator = (*DeviceAuthenticator)(nil)
