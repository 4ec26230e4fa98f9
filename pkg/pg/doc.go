// Package pg bootstraps PostgreSQL access with pgx/v5.
//
// Connect builds a pool from Config and retries until the database answers a
// ping. Migrate runs goose migrations from an embedded filesystem through the
// same pool. Healthcheck returns a probe for readiness endpoints.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, pgstore.MigrationsDir, log); err != nil {
//	    return err
//	}
//
// The Is* helpers classify *pgconn.PgError values by SQLSTATE.
package pg
