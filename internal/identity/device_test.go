package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAuthorityScopes(t *testing.T) {
	auth := Authority{
		SignInScopes: []string{"openid", "profile", "email"},
		APIScope:     "api://client-id/.default",
	}
	assert.Equal(t, []string{"openid", "profile", "email", "api://client-id/.default"}, auth.Scopes())

	noAPI := Authority{SignInScopes: []string{"openid"}}
	assert.Equal(t, []string{"openid"}, noAPI.Scopes())
}

func TestNewDeviceAuthenticatorEndpoints(t *testing.T) {
	d := NewDeviceAuthenticator(Authority{
		URL:      "https://login.microsoftonline.com/tenant-id/",
		ClientID: "client-id",
	}, nil)

	assert.Equal(t, "https://login.microsoftonline.com/tenant-id/oauth2/v2.0/token", d.cfg.Endpoint.TokenURL)
	assert.Equal(t, "https://login.microsoftonline.com/tenant-id/oauth2/v2.0/devicecode", d.cfg.Endpoint.DeviceAuthURL)
	assert.Equal(t, "client-id", d.cfg.ClientID)
}

func signedTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionFromToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	access := signedTestToken(t, jwt.MapClaims{
		"name":               "Platform Admin",
		"preferred_username": "admin@numberskills.example",
		"exp":                expiry.Unix(),
	})

	sess := sessionFromToken(&oauth2.Token{
		AccessToken:  access,
		RefreshToken: "refresh-cred",
		Expiry:       expiry,
	})

	assert.Equal(t, access, sess.Token)
	assert.Equal(t, "refresh-cred", sess.RefreshToken)
	assert.Equal(t, expiry.Unix(), sess.ExpiresAtUnix)
	assert.Equal(t, "Platform Admin", sess.Account.Name)
	assert.Equal(t, "admin@numberskills.example", sess.Account.Email)
}

func TestSessionFromTokenFallsBackToExpClaim(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	access := signedTestToken(t, jwt.MapClaims{"exp": expiry.Unix()})

	// No Expiry on the token itself; the exp claim fills the gap.
	sess := sessionFromToken(&oauth2.Token{AccessToken: access})
	assert.Equal(t, expiry.Unix(), sess.ExpiresAtUnix)
}

func TestAccountFromPrefersIDToken(t *testing.T) {
	access := signedTestToken(t, jwt.MapClaims{"name": "From Access"})
	id := signedTestToken(t, jwt.MapClaims{
		"name":  "From ID Token",
		"email": "id@numberskills.example",
	})

	tok := (&oauth2.Token{AccessToken: access}).WithExtra(map[string]interface{}{"id_token": id})
	account := accountFrom(tok)
	assert.Equal(t, "From ID Token", account.Name)
	assert.Equal(t, "id@numberskills.example", account.Email)
}

func TestAccountFromMalformedToken(t *testing.T) {
	account := accountFrom(&oauth2.Token{AccessToken: "not-a-jwt"})
	assert.Empty(t, account.Name)
	assert.Empty(t, account.Email)
}
