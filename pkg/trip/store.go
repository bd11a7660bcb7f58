package trip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var ErrNotFound = errors.New("record not found")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Store persists saved trips and reservations.
type Store interface {
	SaveTrip(ctx context.Context, offerID string, data map[string]any, note string) (*Trip, error)
	ListTrips(ctx context.Context, page, pageSize int) ([]Trip, int, error)
	DeleteTrip(ctx context.Context, id int64) error
	SaveReservation(ctx context.Context, r *Reservation) error
	FindReservationByKey(ctx context.Context, idempotencyKey string) (*Reservation, error)
	ListReservations(ctx context.Context, limit int) ([]Reservation, error)
}

type Config struct {
	DatabaseURL string        `envconfig:"DATABASE_URL" required:"true"`
	DialTimeout time.Duration `envconfig:"DATABASE_DIAL_TIMEOUT" default:"5s"`
}

type BunStore struct {
	db *bun.DB
}

var _ Store = (*BunStore)(nil)

func Open(cfg Config) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("database url is required")
	}

	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if cfg.DialTimeout > 0 {
		opts = append(opts, pgdriver.WithDialTimeout(cfg.DialTimeout))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	return NewBunStore(bun.NewDB(sqldb, pgdialect.New())), nil
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// Migrate creates the tables when missing.
func (s *BunStore) Migrate(ctx context.Context) error {
	for _, model := range []any{(*Trip)(nil), (*Reservation)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *BunStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) SaveTrip(ctx context.Context, offerID string, data map[string]any, note string) (*Trip, error) {
	t := &Trip{
		OfferID:   strings.TrimSpace(offerID),
		Data:      data,
		Note:      strings.TrimSpace(note),
		CreatedAt: time.Now().UTC(),
	}
	if t.OfferID == "" {
		return nil, errors.New("offer id is required")
	}
	if _, err := s.db.NewInsert().Model(t).Returning("id").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert trip: %w", err)
	}
	return t, nil
}

// ListTrips returns one page, newest first, and the total row count.
func (s *BunStore) ListTrips(ctx context.Context, page, pageSize int) ([]Trip, int, error) {
	page, pageSize = ClampPage(page, pageSize)

	var trips []Trip
	total, err := s.db.NewSelect().
		Model(&trips).
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list trips: %w", err)
	}
	return trips, total, nil
}

func (s *BunStore) DeleteTrip(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*Trip)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BunStore) SaveReservation(ctx context.Context, r *Reservation) error {
	if r == nil {
		return errors.New("reservation is nil")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(r).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (s *BunStore) FindReservationByKey(ctx context.Context, idempotencyKey string) (*Reservation, error) {
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		return nil, ErrNotFound
	}

	r := new(Reservation)
	err := s.db.NewSelect().Model(r).Where("idempotency_key = ?", key).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return r, nil
}

func (s *BunStore) ListReservations(ctx context.Context, limit int) ([]Reservation, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	var out []Reservation
	if err := s.db.NewSelect().Model(&out).Order("id DESC").Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

// ClampPage applies the page defaults used by the list endpoints.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// FormatTripID renders the public id of a trip.
func FormatTripID(id int64) string {
	return fmt.Sprintf("trip_%d", id)
}

// ParseTripID accepts both "trip_<n>" and "<n>".
func ParseTripID(raw string) (int64, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(raw), "trip_")
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trip id %q", raw)
	}
	return id, nil
}
