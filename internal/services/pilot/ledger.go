package pilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperr "signwise/internal/errors"
)

// ErrContention is returned when a client's entry kept changing underneath
// every attempt. Each failed attempt means another writer succeeded, so this
// only happens under pathological load.
var ErrContention = errors.New("pilot ledger: too many concurrent writers for client")

// Store persists ledger entries. CompareAndSwap must write next only if the
// stored entry still carries expected.Version, and must bump the version on
// success.
type Store interface {
	Create(ctx context.Context, e Entry) error
	Get(ctx context.Context, clientID string) (Entry, error)
	CompareAndSwap(ctx context.Context, expected, next Entry) (bool, error)
}

// Config holds ledger settings.
type Config struct {
	Allotment   int
	MaxAttempts int
}

// Ledger applies pilot transitions atomically per client.
type Ledger struct {
	store  Store
	config Config
	logger *slog.Logger
}

// NewLedger creates a new ledger service
func NewLedger(store Store, config Config, logger *slog.Logger) *Ledger {
	if store == nil {
		panic("store is required")
	}
	if config.Allotment == 0 {
		config.Allotment = DefaultAllotment
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{store: store, config: config, logger: logger}
}

// Provision puts a new client in pilot mode with the configured allotment.
func (l *Ledger) Provision(ctx context.Context, clientID string) (Entry, error) {
	e, err := NewEntry(clientID, l.config.Allotment)
	if err != nil {
		return Entry{}, err
	}
	if err := l.store.Create(ctx, e); err != nil {
		return Entry{}, err
	}
	l.logger.Info("pilot client provisioned", "client_id", clientID, "credits", e.CreditsRemaining)
	return e, nil
}

// Entry returns the client's current ledger entry.
func (l *Ledger) Entry(ctx context.Context, clientID string) (Entry, error) {
	return l.store.Get(ctx, clientID)
}

// RecordCompletion records one completed signing for the client and reports
// whether it is billable. An inconsistent entry is logged and billed rather
// than failing the signing.
func (l *Ledger) RecordCompletion(ctx context.Context, clientID string) (Outcome, error) {
	var out Outcome
	stored, err := l.update(ctx, clientID, func(e Entry) Entry {
		out = RecordCompletion(e)
		return out.Entry
	})
	if err != nil {
		return Outcome{}, err
	}
	out.Entry = stored

	if out.Anomaly != nil {
		l.logger.Warn("pilot ledger anomaly, billing signing",
			"client_id", clientID,
			"error", out.Anomaly,
			"version", stored.Version)
	}
	if !out.Billable && !stored.PilotMode {
		l.logger.Info("pilot credits exhausted, client converted", "client_id", clientID)
	}
	return out, nil
}

// ConvertToFullClient ends the client's pilot mode regardless of credits.
func (l *Ledger) ConvertToFullClient(ctx context.Context, clientID string) (Entry, error) {
	converted, err := l.update(ctx, clientID, ConvertToFullClient)
	if err != nil {
		return Entry{}, err
	}
	l.logger.Info("pilot client converted by administrator",
		"client_id", clientID, "credits_forfeited", converted.CreditsRemaining)
	return converted, nil
}

// update runs one optimistic read-modify-write, retrying on conflict, and
// returns the entry as stored. apply may run several times and must be pure.
func (l *Ledger) update(ctx context.Context, clientID string, apply func(Entry) Entry) (Entry, error) {
	for attempt := 0; attempt < l.config.MaxAttempts; attempt++ {
		current, err := l.store.Get(ctx, clientID)
		if err != nil {
			return Entry{}, err
		}

		next := apply(current)
		if sameState(current, next) {
			return current, nil
		}

		ok, err := l.store.CompareAndSwap(ctx, current, next)
		if err != nil {
			return Entry{}, fmt.Errorf("failed to update pilot ledger: %w", err)
		}
		if ok {
			next.Version = current.Version + 1
			return next, nil
		}
		l.logger.Debug("pilot ledger conflict, retrying", "client_id", clientID, "attempt", attempt+1)
	}
	return Entry{}, ErrContention
}

// MemoryStore is a Store for a single process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Create(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[e.ClientID]; exists {
		return apperr.Conflict("client " + e.ClientID + " already has a pilot ledger")
	}
	s.entries[e.ClientID] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, clientID string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[clientID]
	if !ok {
		return Entry{}, apperr.NotFound("pilot ledger for client " + clientID)
	}
	return e, nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, expected, next Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.entries[expected.ClientID]
	if !ok {
		return false, apperr.NotFound("pilot ledger for client " + expected.ClientID)
	}
	if stored.Version != expected.Version {
		return false, nil
	}
	next.ClientID = expected.ClientID
	next.Version = expected.Version + 1
	s.entries[expected.ClientID] = next
	return true, nil
}
