package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"github.com/tutorbook/tutorbook/internal/domain"
)

// tokenVerifier is the subset of *auth.Client used here.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier resolves Firebase ID tokens to user IDs.
type Verifier struct {
	client       tokenVerifier
	checkRevoked bool
}

// NewVerifier wraps an auth client. checkRevoked costs one extra RPC per
// token.
func NewVerifier(client tokenVerifier, checkRevoked bool) *Verifier {
	return &Verifier{client: client, checkRevoked: checkRevoked}
}

// Verify returns the uid a token was issued for. Every rejection wraps
// domain.ErrUnauthenticated.
func (v *Verifier) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("empty token: %w", domain.ErrUnauthenticated)
	}

	var (
		tok *auth.Token
		err error
	)
	if v.checkRevoked {
		tok, err = v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	} else {
		tok, err = v.client.VerifyIDToken(ctx, idToken)
	}
	if err != nil {
		return "", fmt.Errorf("verify id token (%s): %w", reason(err), domain.ErrUnauthenticated)
	}
	if tok == nil || tok.UID == "" {
		return "", fmt.Errorf("token has no uid: %w", domain.ErrUnauthenticated)
	}
	return tok.UID, nil
}

func reason(err error) string {
	switch {
	case auth.IsIDTokenExpired(err):
		return "expired"
	case auth.IsIDTokenRevoked(err):
		return "revoked"
	case auth.IsUserDisabled(err):
		return "user disabled"
	case auth.IsIDTokenInvalid(err):
		return "invalid"
	case auth.IsCertificateFetchFailed(err):
		return "certificate fetch failed"
	default:
		return err.Error()
	}
}
