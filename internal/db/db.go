package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool the handlers use. Tests swap in a
// pgxmock pool through the same variable.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

var Conn Querier

var pool *pgxpool.Pool

// Init connects to Postgres
func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
	}

	var err error
	pool, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = pool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}
	Conn = pool

	log.Println("Connected to Postgres successfully")

	// Ensure core tables exist so a fresh database boots without a
	// separate migration step
	ensureProfilesTable()
	ensureJobsTable()
	ensureProposalsTable()
	ensureNotificationsTable()
}

// Close releases the underlying pool. Safe to call once at shutdown.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// ensureProfilesTable creates the profiles table if it doesn't exist
func ensureProfilesTable() {
	ctx := context.Background()
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            full_name TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('student','client','admin')),
            university TEXT DEFAULT '',
            bio TEXT DEFAULT '',
            avatar_url TEXT NULL,
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		log.Printf("failed to create profiles table: %v", err)
		return
	}
	// Backfill any NULLs left by older rows
	_, _ = pool.Exec(ctx, `UPDATE profiles SET is_active = TRUE WHERE is_active IS NULL`)
}

// ensureJobsTable creates the jobs table if it doesn't exist
func ensureJobsTable() {
	ctx := context.Background()
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS jobs (
            id UUID PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            budget BIGINT NOT NULL CHECK (budget > 0),
            status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open','in-progress','completed')),
            client_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            location TEXT NULL,
            skills_required TEXT[] NOT NULL DEFAULT '{}',
            deadline TIMESTAMP WITH TIME ZONE NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_jobs_client ON jobs(client_id);
        CREATE INDEX IF NOT EXISTS idx_jobs_category_created ON jobs(category, created_at);
    `)
	if err != nil {
		log.Printf("failed to create jobs table: %v", err)
	}
}

// ensureProposalsTable creates the proposals table if it doesn't exist.
// The unique index on (job_id, freelancer_id) turns duplicate submissions
// into a constraint violation instead of a read-then-write race, and the
// partial index keeps at most one accepted proposal per job.
func ensureProposalsTable() {
	ctx := context.Background()
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS proposals (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
            freelancer_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            cover_letter TEXT NOT NULL DEFAULT '',
            bid_amount BIGINT NOT NULL CHECK (bid_amount > 0),
            estimated_days INTEGER NOT NULL CHECK (estimated_days > 0),
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','accepted','rejected','withdrawn')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_job_freelancer ON proposals(job_id, freelancer_id);
        CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_single_accepted ON proposals(job_id) WHERE status = 'accepted';
        CREATE INDEX IF NOT EXISTS idx_proposals_job_created ON proposals(job_id, created_at);
    `)
	if err != nil {
		log.Printf("failed to create proposals table: %v", err)
	}
}

// ensureNotificationsTable creates notifications table if it doesn't exist
func ensureNotificationsTable() {
	ctx := context.Background()
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            message TEXT NOT NULL DEFAULT '',
            link TEXT NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE is_read = FALSE;
    `)
	if err != nil {
		log.Printf("failed to create notifications table: %v", err)
	}
}
