package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testKeys(t *testing.T) ([]byte, []byte) {
	t.Helper()
	hashKey := []byte(strings.Repeat("h", 32))
	blockKey := []byte(strings.Repeat("b", 32))
	return hashKey, blockKey
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	hashKey, blockKey := testKeys(t)
	c, err := NewCodec(hashKey, blockKey, time.Hour)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	token, err := c.Issue(Identity{Account: "owner-1", Role: "owner"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := c.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Account != "owner-1" || id.Role != "owner" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	hashKey, blockKey := testKeys(t)
	c, _ := NewCodec(hashKey, blockKey, time.Hour)
	token, _ := c.Issue(Identity{Account: "u1", Role: "admin"})
	bad := token[:len(token)-2] + "xx"
	if _, err := c.Verify(context.Background(), bad); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongKeys(t *testing.T) {
	hashKey, blockKey := testKeys(t)
	issuer, _ := NewCodec(hashKey, blockKey, time.Hour)
	otherHash := []byte(strings.Repeat("x", 32))
	verifier, _ := NewCodec(otherHash, blockKey, time.Hour)
	token, _ := issuer.Issue(Identity{Account: "u1", Role: "owner"})
	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyEmptyToken(t *testing.T) {
	hashKey, _ := testKeys(t)
	c, _ := NewCodec(hashKey, nil, time.Hour)
	if _, err := c.Verify(context.Background(), ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	hashKey, blockKey := testKeys(t)
	c, _ := NewCodec(hashKey, blockKey, time.Second)
	token, _ := c.Issue(Identity{Account: "u1", Role: "owner"})
	time.Sleep(1100 * time.Millisecond)
	if _, err := c.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expiry rejection, got %v", err)
	}
}

func TestNewCodecKeyLengths(t *testing.T) {
	if _, err := NewCodec([]byte("short"), nil, 0); err == nil {
		t.Fatalf("expected error for short hash key")
	}
	hashKey, _ := testKeys(t)
	if _, err := NewCodec(hashKey, []byte("bad"), 0); err == nil {
		t.Fatalf("expected error for bad block key")
	}
}

func TestParseKeys(t *testing.T) {
	hashHex := strings.Repeat("ab", 32)
	blockHex := strings.Repeat("cd", 16)
	hashKey, blockKey, err := ParseKeys(hashHex, blockHex)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(hashKey) != 32 || len(blockKey) != 16 {
		t.Fatalf("wrong key lengths: %d %d", len(hashKey), len(blockKey))
	}
	if _, _, err := ParseKeys("", ""); err == nil {
		t.Fatalf("expected error for missing hash key")
	}
	if _, _, err := ParseKeys("zz", ""); err == nil {
		t.Fatalf("expected error for bad hex")
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := BearerToken(r); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	r.Header.Set("Authorization", "Bearer abc123")
	if got := BearerToken(r); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}
}
