package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

// Identity is the verified caller of a privileged operation.
type Identity struct {
	Account string `json:"account"`
	Role    string `json:"role"`
}

// Verification failures.
var (
	ErrMissingToken = errors.New("auth: missing token")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Authorizer verifies a bearer credential and returns the caller's identity.
type Authorizer interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

const tokenName = "waitline_token"

// Codec issues and verifies compact signed (and, with a block key,
// encrypted) bearer tokens. It implements Authorizer.
type Codec struct {
	sc *securecookie.SecureCookie
}

// NewCodec builds a Codec. hashKey must be 32 or 64 bytes; blockKey may be
// nil for signed-but-unencrypted tokens, otherwise 16, 24 or 32 bytes. ttl
// bounds token age during verification.
func NewCodec(hashKey, blockKey []byte, ttl time.Duration) (*Codec, error) {
	if l := len(hashKey); l != 32 && l != 64 {
		return nil, fmt.Errorf("auth: hash key must be 32 or 64 bytes, got %d", l)
	}
	if l := len(blockKey); l != 0 && l != 16 && l != 24 && l != 32 {
		return nil, fmt.Errorf("auth: block key must be 16, 24 or 32 bytes, got %d", l)
	}
	sc := securecookie.New(hashKey, blockKey)
	if ttl > 0 {
		sc.MaxAge(int(ttl.Seconds()))
	}
	return &Codec{sc: sc}, nil
}

// ParseKeys decodes hex-encoded codec keys from configuration.
func ParseKeys(hashHex, blockHex string) (hashKey, blockKey []byte, err error) {
	if hashHex == "" {
		return nil, nil, errors.New("auth: hash key not configured")
	}
	hashKey, err = hex.DecodeString(hashHex)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: decode hash key: %w", err)
	}
	if blockHex != "" {
		blockKey, err = hex.DecodeString(blockHex)
		if err != nil {
			return nil, nil, fmt.Errorf("auth: decode block key: %w", err)
		}
	}
	return hashKey, blockKey, nil
}

// Issue mints a token for the identity.
func (c *Codec) Issue(id Identity) (string, error) {
	if id.Account == "" || id.Role == "" {
		return "", errors.New("auth: identity requires account and role")
	}
	return c.sc.Encode(tokenName, id)
}

// Verify decodes and validates a token. Expired or tampered tokens return
// ErrInvalidToken.
func (c *Codec) Verify(ctx context.Context, token string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	if token == "" {
		return Identity{}, ErrMissingToken
	}
	var id Identity
	if err := c.sc.Decode(tokenName, token, &id); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return id, nil
}

// BearerToken extracts the bearer credential from a request, empty when
// absent.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
