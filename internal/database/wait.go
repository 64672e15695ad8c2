package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// WaitForDB pings the postgres server behind dsn every interval until it
// answers or ctx is done.
func WaitForDB(ctx context.Context, dsn string, interval time.Duration) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	return waitFor(ctx, interval, db.PingContext)
}

func waitFor(ctx context.Context, interval time.Duration, ping func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		err := ping(ctx)
		if err == nil {
			slog.Info("database available", "attempts", attempt)
			return nil
		}
		slog.Warn("database unavailable, waiting", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for database: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
