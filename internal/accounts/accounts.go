package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	pebblestore "github.com/waitline/waitline/internal/storage/pebble"
)

// Roles recognized by the coordination policies.
const (
	RoleCustomer = "customer"
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
)

// ErrNotFound reports that no record exists for the identifier. Any other
// error from Get is a transient storage failure and must not be treated as
// an absent account.
var ErrNotFound = errors.New("accounts: not found")

// Record is the long-lived per-account state the coordinator reads and
// updates. The queue itself never owns these fields.
type Record struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role"`
	NoShows     int    `json:"noShows"`
	Banned      bool   `json:"banned"`
	Loyalty     int    `json:"loyalty"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

var acctPrefix = []byte("acct/")

func acctKey(id string) []byte {
	k := make([]byte, 0, len(acctPrefix)+len(id))
	k = append(k, acctPrefix...)
	k = append(k, id...)
	return k
}

// ValidateID rejects identifiers that cannot be stored or routed.
func ValidateID(id string) error {
	if id == "" {
		return errors.New("accounts: empty id")
	}
	if len(id) > 128 {
		return fmt.Errorf("accounts: id too long (%d)", len(id))
	}
	if strings.ContainsAny(id, "/\n") {
		return errors.New("accounts: id contains reserved characters")
	}
	return nil
}

// Store persists account records in Pebble.
type Store struct {
	db *pebblestore.DB

	// mu serializes read-modify-write updates; point reads and writes rely
	// on Pebble's own atomicity.
	mu sync.Mutex
}

// NewStore creates a Store over the given database.
func NewStore(db *pebblestore.DB) *Store { return &Store{db: db} }

// Get returns the record for id, ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	b, err := s.db.Get(acctKey(id))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Record{}, fmt.Errorf("accounts: get %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("accounts: decode %s: %w", id, err)
	}
	return rec, nil
}

// Put writes the record unconditionally.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Set(acctKey(rec.ID), b)
}

// Ensure creates a record if absent, returning the effective record.
// Idempotent: returns the existing record when already present.
func (s *Store) Ensure(ctx context.Context, id, role, displayName string) (Record, error) {
	if err := ValidateID(id); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.Get(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	if role == "" {
		role = RoleCustomer
	}
	rec = Record{
		ID:          id,
		DisplayName: displayName,
		Role:        role,
		CreatedAtMs: time.Now().UnixMilli(),
	}
	if err := s.Put(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Update applies fn to the current record and persists the result as one
// serialized read-modify-write. Returns ErrNotFound when the record is absent.
func (s *Store) Update(ctx context.Context, id string, fn func(*Record)) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	fn(&rec)
	if err := s.Put(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
