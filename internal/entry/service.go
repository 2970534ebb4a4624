package entry

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=entry
type Repository interface {
	GetEntry(ctx context.Context, id int64) (*Entry, error)
	CreateEntry(ctx context.Context, e *Entry) error
	// UpdateEntry returns ErrNotFound when no row has e.ID.
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	SearchEntries(ctx context.Context, filter Filter) ([]*Entry, error)
	SumByUserAndType(ctx context.Context, userID int64, t Type) (decimal.NullDecimal, error)

	BeginBatch(ctx context.Context) (BatchTx, error)
}

type BatchTx interface {
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

// BalanceCache holds computed balances per user. Get also reports the
// generation a missing balance must be stored under, and Invalidate moves the
// user to a new generation, so a balance computed before a write is never
// served after it.
type BalanceCache interface {
	Get(ctx context.Context, userID int64) (balance decimal.Decimal, gen int64, ok bool, err error)
	Set(ctx context.Context, userID, gen int64, balance decimal.Decimal) error
	Invalidate(ctx context.Context, userID int64) error
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	PublishBatch(ctx context.Context, events []Event) error
}

const (
	EventCreated = "entry.created"
	EventUpdated = "entry.updated"
	EventDeleted = "entry.deleted"
)

type Event struct {
	Name       string
	Entry      Entry
	OccurredAt time.Time
}

type Filter struct {
	Description *string
	Month       *int
	Year        *int
	UserID      *int64
	Type        *Type
	Status      *Status
}

type Service struct {
	repo      Repository
	cache     BalanceCache
	publisher Publisher
	now       func() time.Time
}

type Option func(*Service)

func WithCache(c BalanceCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		cache:     nopCache{},
		publisher: nopPublisher{},
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Validate checks e field by field and reports the first violation.
func (s *Service) Validate(e *Entry) error {
	if strings.TrimSpace(e.Description) == "" || utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrInvalidDescription
	}

	if e.Month < 1 || e.Month > 12 {
		return ErrInvalidMonth
	}

	// An invalid year has always been reported with the description message.
	if e.Year == 0 || len(strconv.Itoa(e.Year)) != 4 {
		return ErrInvalidDescription
	}

	if e.UserID == 0 {
		return ErrMissingUser
	}

	if !e.Value.IsPositive() {
		return ErrInvalidValue
	}

	if e.Type == "" {
		return ErrMissingType
	}

	return nil
}

// Create stores e as a new pending entry.
func (s *Service) Create(ctx context.Context, e *Entry) (*Entry, error) {
	if err := s.Validate(e); err != nil {
		return nil, err
	}

	e.Status = StatusPending

	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, EventCreated, e)

	return e, nil
}

// Update persists e keeping the status the caller set.
func (s *Service) Update(ctx context.Context, e *Entry) (*Entry, error) {
	if e.ID == 0 {
		return nil, ErrMissingID
	}

	if err := s.Validate(e); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateEntry(ctx, e); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, EventUpdated, e)

	return e, nil
}

func (s *Service) Delete(ctx context.Context, e *Entry) error {
	if e.ID == 0 {
		return ErrMissingID
	}

	if err := s.repo.DeleteEntry(ctx, e.ID); err != nil {
		return err
	}

	s.afterWrite(ctx, EventDeleted, e)

	return nil
}

func (s *Service) Search(ctx context.Context, filter Filter) ([]*Entry, error) {
	entries, err := s.repo.SearchEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []*Entry{}
	}

	return entries, nil
}

// UpdateStatus sets the status on e and runs the full Update path.
func (s *Service) UpdateStatus(ctx context.Context, e *Entry, status Status) (*Entry, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	e.Status = status

	return s.Update(ctx, e)
}

func (s *Service) FindByID(ctx context.Context, id int64) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// Balance returns income minus expense over every entry of the user, whatever its status.
func (s *Service) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	cached, gen, ok, cacheErr := s.cache.Get(ctx, userID)
	if cacheErr != nil {
		slog.Warn("reading cached balance", "user_id", userID, "error", cacheErr)
	} else if ok {
		return cached, nil
	}

	income, err := s.repo.SumByUserAndType(ctx, userID, TypeIncome)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing income: %w", err)
	}

	expense, err := s.repo.SumByUserAndType(ctx, userID, TypeExpense)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing expense: %w", err)
	}

	balance := orZero(income).Sub(orZero(expense))

	// Without a generation there is no safe key to store under.
	if cacheErr != nil {
		return balance, nil
	}

	if err := s.cache.Set(ctx, userID, gen, balance); err != nil {
		slog.Warn("caching balance", "user_id", userID, "error", err)
	}

	return balance, nil
}

// BatchError reports which entry of a batch failed validation.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("Lançamento %d: %s", e.Index+1, apperr.Message(e.Err))
}

func (e *BatchError) Unwrap() error { return e.Err }

// CreateBatch validates every entry and then inserts all of them as pending
// in a single transaction. Nothing is written if any entry is invalid.
func (s *Service) CreateBatch(ctx context.Context, entries []*Entry) ([]*Entry, error) {
	if len(entries) == 0 {
		return []*Entry{}, nil
	}

	for i, e := range entries {
		if err := s.Validate(e); err != nil {
			return nil, &BatchError{Index: i, Err: err}
		}

		e.Status = StatusPending
	}

	btx, err := s.repo.BeginBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer btx.Rollback()

	if err := btx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	now := s.now()
	events := make([]Event, len(entries))
	invalidated := make(map[int64]bool)

	for i, e := range entries {
		if !invalidated[e.UserID] {
			s.invalidate(ctx, e.UserID)
			invalidated[e.UserID] = true
		}

		events[i] = Event{Name: EventCreated, Entry: *e, OccurredAt: now}
	}

	if err := s.publisher.PublishBatch(ctx, events); err != nil {
		slog.Warn("publishing entry events", "event", EventCreated, "count", len(events), "error", err)
	}

	return entries, nil
}

func (s *Service) afterWrite(ctx context.Context, name string, e *Entry) {
	s.invalidate(ctx, e.UserID)

	event := Event{Name: name, Entry: *e, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("publishing entry event", "event", name, "entry_id", e.ID, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		slog.Warn("invalidating cached balance", "user_id", userID, "error", err)
	}
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}

	return d.Decimal
}

type nopCache struct{}

func (nopCache) Get(context.Context, int64) (decimal.Decimal, int64, bool, error) {
	return decimal.Zero, 0, false, nil
}

func (nopCache) Set(context.Context, int64, int64, decimal.Decimal) error { return nil }

func (nopCache) Invalidate(context.Context, int64) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

func (nopPublisher) PublishBatch(context.Context, []Event) error { return nil }
