package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
)

var defaults = Credentials{
	BaseURL:      "https://pega.example.com/prweb",
	ClientID:     "shared-id",
	ClientSecret: "shared-secret",
}

func TestResolve_DefaultsOnly(t *testing.T) {
	sess, err := Resolve(defaults, nil)
	require.NoError(t, err)

	require.Equal(t, "https://pega.example.com/prweb/api/application/v2", sess.APIBase)
	require.Equal(t, "https://pega.example.com/prweb/PRRestService/oauth2/v1/token", sess.TokenURL)
	require.Equal(t, "shared-id", sess.ClientID)
	require.Equal(t, "shared", sess.AuthMode)
	require.Equal(t, "env", sess.Source)
	require.NotEmpty(t, sess.SessionID)
	require.NotEmpty(t, sess.Fingerprint)
}

func TestResolve_ExplicitTokenURLWins(t *testing.T) {
	d := defaults
	d.TokenURL = "https://idp.example.com/oauth2/token"
	sess, err := Resolve(d, nil)
	require.NoError(t, err)
	require.Equal(t, "https://idp.example.com/oauth2/token", sess.TokenURL)
}

func TestResolve_OverrideReplacesSuppliedFields(t *testing.T) {
	sess, err := Resolve(defaults, &Credentials{
		ClientID:     "session-id",
		ClientSecret: "session-secret",
	})
	require.NoError(t, err)

	// Missing override fields fall through to the defaults.
	require.Equal(t, "https://pega.example.com/prweb/api/application/v2", sess.APIBase)
	require.Equal(t, "session-id", sess.ClientID)
	require.Equal(t, "session-secret", sess.ClientSecret)
	require.Equal(t, "session", sess.AuthMode)
	require.Equal(t, "request", sess.Source)
}

func TestResolve_BaseURLOverrideInvalidatesInheritedTokenURL(t *testing.T) {
	d := defaults
	d.TokenURL = "https://pega.example.com/prweb/PRRestService/oauth2/v1/token"

	sess, err := Resolve(d, &Credentials{BaseURL: "https://other.example.com/prweb"})
	require.NoError(t, err)
	require.Equal(t, "https://other.example.com/prweb/PRRestService/oauth2/v1/token", sess.TokenURL)
	require.Equal(t, "https://other.example.com/prweb/api/application/v2", sess.APIBase)
}

func TestResolve_FingerprintIdentity(t *testing.T) {
	a, err := Resolve(defaults, nil)
	require.NoError(t, err)
	b, err := Resolve(defaults, nil)
	require.NoError(t, err)

	// Same credential triple, same fingerprint; session ids differ.
	require.Equal(t, a.Fingerprint, b.Fingerprint)
	require.NotEqual(t, a.SessionID, b.SessionID)

	c, err := Resolve(defaults, &Credentials{ClientSecret: "other"})
	require.NoError(t, err)
	require.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestResolve_MissingFieldsAreConfigInvalid(t *testing.T) {
	cases := []struct {
		name  string
		creds Credentials
	}{
		{"no base URL", Credentials{ClientID: "x", ClientSecret: "y"}},
		{"no client id", Credentials{BaseURL: "https://h/prweb", ClientSecret: "y"}},
		{"no client secret", Credentials{BaseURL: "https://h/prweb", ClientID: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.creds, nil)
			var derr *dx.Error
			require.True(t, errors.As(err, &derr))
			require.Equal(t, dx.KindConfigInvalid, derr.Kind)
		})
	}
}

func TestResolve_TrailingSlashNormalized(t *testing.T) {
	d := defaults
	d.BaseURL = "https://pega.example.com/prweb/"
	sess, err := Resolve(d, nil)
	require.NoError(t, err)
	require.Equal(t, "https://pega.example.com/prweb/api/application/v2", sess.APIBase)
}
