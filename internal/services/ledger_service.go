// Package services orchestrates store mutations with the optional entry
// event stream.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"kassabot/internal/amqp"
	"kassabot/internal/core"
	"kassabot/internal/ledger"
)

// EventPublisher publishes entry mutation events. *amqp.Client implements
// it; a nil publisher disables the stream.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, entryID int64, action string) error
	Close() error
}

// LedgerService fronts the active store. Mutations additionally publish an
// entry event; publish failures are logged and never fail the request,
// because the local store is the source of truth.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
}

func NewLedgerService(store ledger.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

func (s *LedgerService) AddEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	stored, err := s.store.AddEntry(ctx, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("add entry: %w", err)
	}
	s.publish(ctx, stored.ID, amqp.ActionCreated)
	return stored, nil
}

func (s *LedgerService) UpdateEntry(ctx context.Context, id int64, e core.Entry) (core.Entry, error) {
	stored, err := s.store.UpdateEntry(ctx, id, e)
	if err != nil {
		return core.Entry{}, err
	}
	s.publish(ctx, id, amqp.ActionUpdated)
	return stored, nil
}

func (s *LedgerService) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *LedgerService) AllEntries(ctx context.Context) ([]core.Entry, error) {
	return s.store.AllEntries(ctx)
}

func (s *LedgerService) Entry(ctx context.Context, id int64) (core.Entry, error) {
	return s.store.Entry(ctx, id)
}

func (s *LedgerService) EntriesByDateRange(ctx context.Context, start, end string) ([]core.Entry, error) {
	return s.store.EntriesByDateRange(ctx, start, end)
}

func (s *LedgerService) Statistics(ctx context.Context, start, end string) (core.Stats, error) {
	return s.store.Statistics(ctx, start, end)
}

func (s *LedgerService) Categories(ctx context.Context, t core.EntryType) ([]core.Category, error) {
	return s.store.Categories(ctx, t)
}

func (s *LedgerService) ExportCSV(ctx context.Context) ([]byte, error) {
	return s.store.ExportCSV(ctx)
}

func (s *LedgerService) ExportDatabase(ctx context.Context) ([]byte, error) {
	return s.store.ExportDatabase(ctx)
}

func (s *LedgerService) Capabilities() ledger.Capabilities {
	return s.store.Capabilities()
}

func (s *LedgerService) publish(ctx context.Context, entryID int64, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntryEvent(ctx, entryID, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry event",
			"entry_id", entryID, "action", action, "error", err)
	}
}

// Close closes the store and, when present, the event publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
