package proxy

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "pinecil-http-proxy"
	// MinSecretLength is the shortest HMAC secret NewAuthenticator accepts.
	MinSecretLength = 16
)

var ErrWeakSecret = fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)

// Authenticator issues and verifies HS256 access tokens for the proxy.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

func NewAuthenticator(secret []byte) (*Authenticator, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &Authenticator{secret: secret, now: time.Now}, nil
}

// IssueToken returns a signed token for subject. A zero ttl issues a token that never expires.
func (a *Authenticator) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:   tokenIssuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Verify checks the signature, algorithm, issuer and expiry of token and returns its subject.
func (a *Authenticator) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnauthorized, err)
	}
	return claims.Subject, nil
}

// Authorize verifies the bearer token of req. Browsers cannot set headers on websocket upgrades,
// so a "token" query parameter is accepted as well.
func (a *Authenticator) Authorize(req *http.Request) (string, error) {
	token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer ")
	if !ok {
		token = req.URL.Query().Get("token")
	}
	if token == "" {
		return "", fmt.Errorf("%w: client did not provide one", ErrUnauthorized)
	}
	return a.Verify(token)
}
