package auth

// TokenIssuer signs an access token for a principal id.
// jwt.Service is the production implementation.
type TokenIssuer interface {
	Issue(principalID int64) (string, error)
}

// TokenVerifier checks an access token and returns the principal id it names.
// It reports jwt.ErrTokenInvalid or jwt.ErrTokenExpired on failure.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// TokenIssuerFunc adapts an ordinary function to the TokenIssuer interface.
type TokenIssuerFunc func(principalID int64) (string, error)

// Issue implements TokenIssuer.
func (f TokenIssuerFunc) Issue(principalID int64) (string, error) {
	return f(principalID)
}

// TokenVerifierFunc adapts an ordinary function to the TokenVerifier interface.
type TokenVerifierFunc func(token string) (int64, error)

// Verify implements TokenVerifier.
func (f TokenVerifierFunc) Verify(token string) (int64, error) {
	return f(token)
}
