package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables")
	}

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	schemaSQL := `
CREATE TABLE IF NOT EXISTS case_archive (
    case_id TEXT PRIMARY KEY,
    rit TEXT NOT NULL DEFAULT '',
    file_name TEXT NOT NULL,
    upload_date TIMESTAMPTZ NOT NULL,
    analysis JSONB NOT NULL,
    archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatalf("Failed to create case_archive table: %v", err)
	}
	log.Println("✓ Created case_archive table")

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "RIT lookup",
			sql:  "CREATE INDEX IF NOT EXISTS idx_case_archive_rit ON case_archive(rit) WHERE rit <> '';",
		},
		{
			name: "Recency listing",
			sql:  "CREATE INDEX IF NOT EXISTS idx_case_archive_archived_at ON case_archive(archived_at DESC);",
		},
		{
			name: "Analysis JSONB filtering",
			sql:  "CREATE INDEX IF NOT EXISTS idx_case_archive_analysis ON case_archive USING gin (analysis);",
		},
	}

	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("✓ Created index: %s", idx.name)
		}
	}

	fmt.Println("\n✅ Archive schema created successfully!")
}
