package pgstore

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tribehub/notify/pkg/notifications"
)

// Migrations holds the goose migrations for every table the store uses.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations to pass to pg.Migrate.
const MigrationsDir = "migrations"

// ErrReadOnlyRole is returned when a user-role store is asked to write on
// behalf of someone else.
var ErrReadOnlyRole = errors.New("operation requires the service role")

// Role is the privilege a Store acts with.
type Role int

const (
	// UserRole may read and change the data of the user it serves: list the
	// inbox, mark rows read, edit preferences and register devices.
	UserRole Role = iota
	// ServiceRole may additionally create notifications for any user, look
	// up email addresses, prune subscriptions and run scheduled deliveries.
	ServiceRole
)

func (r Role) String() string {
	if r == ServiceRole {
		return "service"
	}
	return "user"
}

// DB is the subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists notifications in PostgreSQL.
type Store struct {
	db   DB
	role Role
}

var (
	_ notifications.Inbox             = (*Store)(nil)
	_ notifications.PreferenceStore   = (*Store)(nil)
	_ notifications.SubscriptionStore = (*Store)(nil)
	_ notifications.EmailLookup       = (*Store)(nil)
	_ notifications.ScheduledStore    = (*Store)(nil)
)

// New creates a store over db acting with role. The notifier's senders
// need a ServiceRole store; request handlers serving a signed-in user use
// UserRole.
func New(db DB, role Role) *Store {
	return &Store{db: db, role: role}
}

// Role returns the privilege the store acts with.
func (s *Store) Role() Role {
	return s.role
}

func (s *Store) requireService() error {
	if s.role != ServiceRole {
		return ErrReadOnlyRole
	}
	return nil
}
