package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	csrfTokenVersion = "v1"
	nonceBytes       = 16
	minSecretBytes   = 16
)

// CSRF issues and checks signed double-submit tokens. A token is only accepted when the
// copy in the cookie and the copy in the form are identical and carry a valid signature.
type CSRF struct {
	secret []byte
}

// NewCSRF uses secret for signing. An empty secret gets a random one, which means
// tokens do not survive a restart.
func NewCSRF(secret string) (*CSRF, error) {
	if secret == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf secret: %w", err)
		}
		return &CSRF{secret: key}, nil
	}
	if len(secret) < minSecretBytes {
		return nil, errors.New("csrf secret must be at least 16 characters")
	}
	return &CSRF{secret: []byte(secret)}, nil
}

func (c *CSRF) Issue() (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate csrf nonce: %w", err)
	}
	encodedNonce := base64.RawURLEncoding.EncodeToString(nonce)
	encodedSig := base64.RawURLEncoding.EncodeToString(c.sign(encodedNonce))
	return csrfTokenVersion + "." + encodedNonce + "." + encodedSig, nil
}

func (c *CSRF) Valid(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != csrfTokenVersion {
		return false
	}
	nonce, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(nonce) != nonceBytes {
		return false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	return hmac.Equal(sig, c.sign(parts[1]))
}

func (c *CSRF) Matches(cookieToken, formToken string) bool {
	if cookieToken == "" || formToken == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) != 1 {
		return false
	}
	return c.Valid(cookieToken)
}

func (c *CSRF) sign(nonce string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(csrfTokenVersion + "." + nonce))
	return mac.Sum(nil)
}
