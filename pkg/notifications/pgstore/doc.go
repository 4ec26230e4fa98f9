// Package pgstore implements the notifications storage interfaces on
// PostgreSQL through pgx/v5.
//
// A single Store satisfies Inbox, PreferenceStore, SubscriptionStore,
// EmailLookup and ScheduledStore. Its Role decides what it may do: the
// senders and the dispatcher need ServiceRole because they write rows for
// other users, while handlers answering a signed-in user can run with
// UserRole and are refused cross-user writes with ErrReadOnlyRole.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, pgstore.MigrationsDir, log); err != nil {
//	    return err
//	}
//	store := pgstore.New(pool, pgstore.ServiceRole)
//
// The schema lives in migrations/ and is applied with goose. Unread counts
// and bulk mark-read go through the get_unread_count and
// mark_all_notifications_read SQL functions.
package pgstore
