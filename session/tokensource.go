package session

import (
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// TokenSource adapts the Manager to oauth2.TokenSource so clients built
// on the oauth2 transport can authenticate with the managed session.
// Tokens are opaque to this component; no expiry is attached, so each
// call reads the Manager's current token.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{manager: m}
}

type tokenSource struct {
	manager *Manager
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	token := ts.manager.Token()
	if token == "" {
		return nil, errors.New("[TokenSource] no authenticated session")
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
