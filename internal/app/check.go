package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/you/nirogsvc/internal/config"
	"github.com/you/nirogsvc/internal/infrastructure/database"
)

// checkedTables are counted by Check once the schema is in place.
var checkedTables = []string{"users", "doctor_profiles", "facilities", "casbin_rule"}

// Check verifies that Postgres and Redis are reachable and the schema is
// migrated, writing one line per probe to w.
func Check(cfg *config.Config, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Open(cfg.DSN, "silent")
	if err != nil {
		return err
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	fmt.Fprintln(w, "database: ok")

	if err := CountTables(ctx, db, w); err != nil {
		return err
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, "redis: ok")
	return nil
}

// CountTables reports the row count of every service table.
func CountTables(ctx context.Context, db *gorm.DB, w io.Writer) error {
	for _, table := range checkedTables {
		var n int64
		if err := db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
			return fmt.Errorf("table %s: %w (run migrate first)", table, err)
		}
		fmt.Fprintf(w, "table %s: %d rows\n", table, n)
	}
	return nil
}
