package database

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateTempDatabase creates a scratch database for a dry run and returns a
// pool connected to it. The database name is accessible via
// pool.Pool.Config().ConnConfig.Database.
func CreateTempDatabase(ctx context.Context, adminPool *Pool) (*Pool, error) {
	timestamp := time.Now().Format("20060102_150405")
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random suffix: %w", err)
	}
	dbName := fmt.Sprintf("sqlsplit_verify_%s_%s", timestamp, hex.EncodeToString(randomBytes))
	ident := pgx.Identifier{dbName}.Sanitize()

	if _, err := adminPool.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return nil, fmt.Errorf("failed to create temporary database: %w", err)
	}

	// Preserve all original options (sslmode, etc.)
	config := adminPool.Pool.Config()
	config.ConnConfig.Database = dbName

	tempPool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		_, _ = adminPool.Exec(ctx, "DROP DATABASE IF EXISTS "+ident)
		return nil, fmt.Errorf("failed to connect to temp database: %w", err)
	}

	return &Pool{
		Pool:    tempPool,
		version: adminPool.version,
	}, nil
}

// DestroyTempDatabase closes the temp pool and drops its underlying database.
func DestroyTempDatabase(ctx context.Context, adminPool *Pool, tempPool *Pool) error {
	if tempPool == nil || tempPool.Pool == nil {
		return nil
	}
	dbName := tempPool.Pool.Config().ConnConfig.Database
	tempPool.Close()
	_, err := adminPool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", pgx.Identifier{dbName}.Sanitize()))
	return err
}
