package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"microauth/internal/walletauth/models"
)

// PostgresStore persists registry state in the wallet_auth_records and
// registry_settings tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load reads the settings row and every wallet record.
func (s *PostgresStore) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{Records: make(map[string]models.Record)}

	err := s.db.QueryRowContext(ctx,
		`SELECT admin, next_contract FROM registry_settings WHERE id = 1`,
	).Scan(&snap.Admin, &snap.NextContract)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load registry settings: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT wallet, status, trust_score, updated_at
		FROM wallet_auth_records
	`)
	if err != nil {
		return nil, fmt.Errorf("load wallet records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			wallet string
			status int16
			score  int16
			rec    models.Record
		)
		if err := rows.Scan(&wallet, &status, &score, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet record: %w", err)
		}
		rec.Status = models.AuthStatus(status)
		rec.TrustScore = uint8(score)
		snap.Records[wallet] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet records: %w", err)
	}
	return snap, nil
}

// SaveRecord upserts one wallet record.
func (s *PostgresStore) SaveRecord(ctx context.Context, wallet string, record models.Record) error {
	query := `
		INSERT INTO wallet_auth_records (wallet, status, trust_score, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet) DO UPDATE SET
			status = EXCLUDED.status,
			trust_score = EXCLUDED.trust_score,
			updated_at = EXCLUDED.updated_at,
			written_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query,
		wallet,
		int16(record.Status),
		int16(record.TrustScore),
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save wallet record: %w", err)
	}
	return nil
}

// SaveAdmin creates the settings row on first use.
func (s *PostgresStore) SaveAdmin(ctx context.Context, admin string) error {
	query := `
		INSERT INTO registry_settings (id, admin)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET
			admin = EXCLUDED.admin,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("save registry admin: %w", err)
	}
	return nil
}

// SaveNextContract requires the settings row written by SaveAdmin.
func (s *PostgresStore) SaveNextContract(ctx context.Context, addr string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE registry_settings
		SET next_contract = $1, updated_at = NOW()
		WHERE id = 1
	`, addr)
	if err != nil {
		return fmt.Errorf("save next contract: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save next contract rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("save next contract: %w", ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
