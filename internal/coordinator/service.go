package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/waitline/waitline/internal/accounts"
	"github.com/waitline/waitline/internal/journal"
	"github.com/waitline/waitline/internal/loyalty"
	"github.com/waitline/waitline/internal/notify"
	"github.com/waitline/waitline/internal/queuestore"
	"github.com/waitline/waitline/internal/reliability"
	"github.com/waitline/waitline/pkg/id"
	"github.com/waitline/waitline/pkg/log"
)

// Service sequences every queue mutation for all venues: membership checks,
// reliability and loyalty side effects, journaling, and the post-mutation
// broadcast. Transports never touch the stores directly.
type Service struct {
	queues      queuestore.Store
	reliability *reliability.Tracker
	loyalty     *loyalty.Ledger
	hub         *notify.Hub
	journal     *journal.Journal
	revs        *id.Generator
	logger      log.Logger
}

// Options carries the collaborators for New. Journal may be nil; every other
// field is required.
type Options struct {
	Queues      queuestore.Store
	Reliability *reliability.Tracker
	Loyalty     *loyalty.Ledger
	Hub         *notify.Hub
	Journal     *journal.Journal
	Logger      log.Logger
}

// New builds the coordinator service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Service{
		queues:      opts.Queues,
		reliability: opts.Reliability,
		loyalty:     opts.Loyalty,
		hub:         opts.Hub,
		journal:     opts.Journal,
		revs:        id.NewGenerator(),
		logger:      logger.With(log.Component("coordinator")),
	}
}

// NoShowResult reports the account state after a no-show strike.
type NoShowResult struct {
	Count   int  `json:"no_shows"`
	Banned  bool `json:"banned"`
	Removed int  `json:"removed"`
}

// CompleteResult reports the account state after a completed service.
type CompleteResult struct {
	Loyalty int `json:"loyalty"`
	Removed int `json:"removed"`
}

func validateVenue(venue string) error {
	if venue == "" {
		return errors.New("empty venue")
	}
	if len(venue) > 128 {
		return fmt.Errorf("venue too long (%d)", len(venue))
	}
	if strings.ContainsAny(venue, "/\n") {
		return errors.New("venue contains reserved characters")
	}
	return nil
}

func validateIDs(op, venue, account string) error {
	if err := validateVenue(venue); err != nil {
		return invalidInput(op, "invalid venue", err)
	}
	if err := accounts.ValidateID(account); err != nil {
		return invalidInput(op, "invalid account", err)
	}
	return nil
}

// privilegedRole reports whether the role may strike or complete accounts.
func privilegedRole(role string) bool {
	return role == accounts.RoleOwner || role == accounts.RoleAdmin
}

// Join appends the account to the venue's waiting list. Banned accounts are
// refused; an account already waiting is a no-op success. Returns the
// post-mutation snapshot.
func (s *Service) Join(ctx context.Context, venue, account string) (notify.Snapshot, error) {
	const op = "coordinator.Join"
	if err := validateIDs(op, venue, account); err != nil {
		return notify.Snapshot{}, err
	}
	banned, err := s.reliability.IsBanned(ctx, account)
	if err != nil {
		return notify.Snapshot{}, unavailable(op, "reliability check failed", err)
	}
	if banned {
		s.logger.Info("join refused for banned account",
			log.Str("venue", venue), log.Str("account", account))
		return notify.Snapshot{}, forbidden(op, "account is banned for repeated no-shows")
	}
	appended, err := s.queues.Append(ctx, venue, account)
	if err != nil {
		return notify.Snapshot{}, unavailable(op, "queue append failed", err)
	}
	snap, err := s.broadcast(ctx, op, venue, journal.KindJoin, account)
	if err != nil {
		return notify.Snapshot{}, err
	}
	s.logger.Debug("join",
		log.Str("venue", venue), log.Str("account", account),
		log.Bool("appended", appended), log.Int("queue_len", len(snap.Queue)))
	return snap, nil
}

// Leave removes the account from the venue's waiting list. Removing an
// absent account is a no-op success.
func (s *Service) Leave(ctx context.Context, venue, account string) (notify.Snapshot, error) {
	const op = "coordinator.Leave"
	if err := validateIDs(op, venue, account); err != nil {
		return notify.Snapshot{}, err
	}
	removed, err := s.queues.RemoveAll(ctx, venue, account)
	if err != nil {
		return notify.Snapshot{}, unavailable(op, "queue removal failed", err)
	}
	snap, err := s.broadcast(ctx, op, venue, journal.KindLeave, account)
	if err != nil {
		return notify.Snapshot{}, err
	}
	s.logger.Debug("leave",
		log.Str("venue", venue), log.Str("account", account),
		log.Int("removed", removed), log.Int("queue_len", len(snap.Queue)))
	return snap, nil
}

// MarkNoShow records a reliability strike against the account and removes it
// from the venue's waiting list. Only owner and admin roles may call it; the
// account must resolve. The third cumulative strike bans the account.
func (s *Service) MarkNoShow(ctx context.Context, role, venue, account string) (NoShowResult, error) {
	const op = "coordinator.MarkNoShow"
	if !privilegedRole(role) {
		return NoShowResult{}, forbidden(op, "owner or admin role required")
	}
	if err := validateIDs(op, venue, account); err != nil {
		return NoShowResult{}, err
	}
	count, banned, err := s.reliability.RecordNoShow(ctx, account)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return NoShowResult{}, notFound(op, "unknown account", err)
		}
		return NoShowResult{}, unavailable(op, "reliability update failed", err)
	}
	removed, err := s.queues.RemoveAll(ctx, venue, account)
	if err != nil {
		return NoShowResult{}, unavailable(op, "queue removal failed", err)
	}
	if _, err := s.broadcast(ctx, op, venue, journal.KindNoShow, account); err != nil {
		return NoShowResult{}, err
	}
	s.logger.Info("no-show recorded",
		log.Str("venue", venue), log.Str("account", account),
		log.Int("count", count), log.Bool("banned", banned))
	return NoShowResult{Count: count, Banned: banned, Removed: removed}, nil
}

// CompleteService removes the account from the venue's waiting list and
// credits the completion reward. Only owner and admin roles may call it; the
// account must resolve.
func (s *Service) CompleteService(ctx context.Context, role, venue, account string) (CompleteResult, error) {
	const op = "coordinator.CompleteService"
	if !privilegedRole(role) {
		return CompleteResult{}, forbidden(op, "owner or admin role required")
	}
	if err := validateIDs(op, venue, account); err != nil {
		return CompleteResult{}, err
	}
	balance, err := s.loyalty.AddCompletionReward(ctx, account)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return CompleteResult{}, notFound(op, "unknown account", err)
		}
		return CompleteResult{}, unavailable(op, "loyalty update failed", err)
	}
	removed, err := s.queues.RemoveAll(ctx, venue, account)
	if err != nil {
		return CompleteResult{}, unavailable(op, "queue removal failed", err)
	}
	if _, err := s.broadcast(ctx, op, venue, journal.KindComplete, account); err != nil {
		return CompleteResult{}, err
	}
	s.logger.Info("service completed",
		log.Str("venue", venue), log.Str("account", account),
		log.Int("loyalty", balance), log.Int("removed", removed))
	return CompleteResult{Loyalty: balance, Removed: removed}, nil
}

// GetState returns the venue's current ordered waiting list. Absent venues
// are empty queues, never errors.
func (s *Service) GetState(ctx context.Context, venue string) (notify.Snapshot, error) {
	const op = "coordinator.GetState"
	if err := validateVenue(venue); err != nil {
		return notify.Snapshot{}, invalidInput(op, "invalid venue", err)
	}
	queue, err := s.queues.Snapshot(ctx, venue)
	if err != nil {
		return notify.Snapshot{}, unavailable(op, "queue read failed", err)
	}
	return notify.Snapshot{VenueID: venue, Queue: queue, Revision: s.revs.Next()}, nil
}

// History returns the venue's most recent journal events, newest last.
func (s *Service) History(ctx context.Context, venue string, limit int) ([]journal.Event, error) {
	const op = "coordinator.History"
	if err := validateVenue(venue); err != nil {
		return nil, invalidInput(op, "invalid venue", err)
	}
	if s.journal == nil {
		return nil, nil
	}
	events, err := s.journal.Read(ctx, venue, limit)
	if err != nil {
		return nil, unavailable(op, "journal read failed", err)
	}
	return events, nil
}

// broadcast reads the post-mutation snapshot, publishes it once, and records
// the mutation in the journal. Every successful mutating call funnels
// through here so subscribers see exactly one frame per mutation.
func (s *Service) broadcast(ctx context.Context, op, venue string, kind journal.Kind, account string) (notify.Snapshot, error) {
	queue, err := s.queues.Snapshot(ctx, venue)
	if err != nil {
		return notify.Snapshot{}, unavailable(op, "queue read failed", err)
	}
	snap := notify.Snapshot{VenueID: venue, Queue: queue, Revision: s.revs.Next()}
	s.hub.Publish(venue, snap)
	if s.journal != nil {
		if _, err := s.journal.Append(ctx, venue, kind, account, len(queue)); err != nil {
			// The journal is observability, not state; the mutation stands.
			s.logger.Warn("journal append failed",
				log.Str("venue", venue), log.Err(err))
		}
	}
	return snap, nil
}
