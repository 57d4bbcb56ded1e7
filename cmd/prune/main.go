package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// Removes rows nothing will read again: expired sessions and device
// tokens that have not checked in for a long time. Run from cron.
var (
	dsn        = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	deviceDays = flag.Int("device-days", 180, "delete device tokens inactive for this many days")
	dryRun     = flag.Bool("dry-run", false, "report counts only; no deletes")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deviceCutoff := time.Now().AddDate(0, 0, -*deviceDays)

	if *dryRun {
		var sessions, devices int64
		err := db.QueryRowContext(ctx, `SELECT count(*) FROM app_auth.sessions WHERE expires_at < now()`).Scan(&sessions)
		if err != nil {
			log.Fatalf("Count error: %v", err)
		}
		err = db.QueryRowContext(ctx, `SELECT count(*) FROM ops.devices WHERE last_active_at < $1`, deviceCutoff).Scan(&devices)
		if err != nil {
			log.Fatalf("Count error: %v", err)
		}
		fmt.Printf("Would delete %d expired sessions and %d stale devices\n", sessions, devices)
		return
	}

	res, err := db.ExecContext(ctx, `DELETE FROM app_auth.sessions WHERE expires_at < now()`)
	if err != nil {
		log.Fatalf("Error pruning sessions: %v", err)
	}
	sessions, _ := res.RowsAffected()

	res, err = db.ExecContext(ctx, `DELETE FROM ops.devices WHERE last_active_at < $1`, deviceCutoff)
	if err != nil {
		log.Fatalf("Error pruning devices: %v", err)
	}
	devices, _ := res.RowsAffected()

	fmt.Printf("✓ Deleted %d expired sessions and %d stale devices\n", sessions, devices)
}
