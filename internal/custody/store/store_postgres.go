package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"custody/internal/custody/models"
	id "custody/pkg/domain"
	"custody/pkg/platform/sentinel"
	txcontext "custody/pkg/platform/tx"
)

// custodyLockKey is the pg_advisory_xact_lock key that serializes custody calls.
const custodyLockKey int64 = 0x637573746f6479 // "custody"

// PostgresStore runs each call in a database transaction holding the custody
// advisory lock, so calls from every process are applied one at a time.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

func WithPostgresTxTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		s.timeout = d
	}
}

func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error {
	if err := ctx.Err(); err != nil {
		return abortedErr(err)
	}
	ctx, cancel := withTxDeadline(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin custody tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, custodyLockKey); err != nil {
		return fmt.Errorf("acquire custody lock: %w", err)
	}

	ctx = txcontext.WithTx(ctx, tx)
	if err := fn(ctx, &postgresTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit custody tx: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) Administrator(ctx context.Context) (id.Address, error) {
	var admin string
	err := t.tx.QueryRowContext(ctx, `SELECT administrator FROM custody_config WHERE id = 1`).Scan(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("administrator: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("select administrator: %w", err)
	}
	return id.Address(admin), nil
}

func (t *postgresTx) SetAdministrator(ctx context.Context, admin id.Address) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO custody_config (id, administrator, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET administrator = EXCLUDED.administrator, updated_at = now()
	`, admin.String())
	if err != nil {
		return fmt.Errorf("upsert administrator: %w", err)
	}
	return nil
}

func (t *postgresTx) FindActor(ctx context.Context, addr id.Address) (models.Actor, error) {
	var (
		role    int16
		enabled bool
	)
	err := t.tx.QueryRowContext(ctx, `SELECT role, enabled FROM actors WHERE address = $1`, addr.String()).
		Scan(&role, &enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Actor{}, fmt.Errorf("actor %s: %w", addr, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Actor{}, fmt.Errorf("select actor: %w", err)
	}
	return models.Actor{Address: addr, Role: models.Role(role), Enabled: enabled}, nil
}

func (t *postgresTx) SaveActor(ctx context.Context, actor models.Actor) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO actors (address, role, enabled, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (address) DO UPDATE
		SET role = EXCLUDED.role, enabled = EXCLUDED.enabled, updated_at = now()
	`, actor.Address.String(), int16(actor.Role), actor.Enabled)
	if err != nil {
		return fmt.Errorf("upsert actor: %w", err)
	}
	return nil
}

func (t *postgresTx) AssetCount(ctx context.Context) (uint64, error) {
	var count int64
	err := t.tx.QueryRowContext(ctx, `SELECT value FROM custody_counters WHERE name = 'asset_id'`).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select asset count: %w", err)
	}
	return uint64(count), nil
}

func (t *postgresTx) FindAsset(ctx context.Context, assetID id.AssetID) (models.Asset, error) {
	var (
		asset   = models.Asset{ID: assetID}
		holders pq.StringArray
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT a.asset_type, a.production_date, a.origin,
		       array_agg(h.holder ORDER BY h.seq)
		FROM assets a
		JOIN asset_holders h ON h.asset_id = a.id
		WHERE a.id = $1
		GROUP BY a.id
	`, int64(assetID)).Scan(&asset.AssetType, &asset.ProductionDate, &asset.Origin, &holders)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Asset{}, fmt.Errorf("asset %d: %w", assetID, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Asset{}, fmt.Errorf("select asset: %w", err)
	}
	asset.HolderHistory = make([]id.Address, len(holders))
	for i, h := range holders {
		asset.HolderHistory[i] = id.Address(h)
	}
	return asset, nil
}

func (t *postgresTx) CreateAsset(ctx context.Context, details models.AssetDetails, producer id.Address) (id.AssetID, error) {
	var next int64
	err := t.tx.QueryRowContext(ctx, `
		UPDATE custody_counters SET value = value + 1 WHERE name = 'asset_id' RETURNING value
	`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocate asset id: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO assets (id, asset_type, production_date, origin) VALUES ($1, $2, $3, $4)
	`, next, details.AssetType, details.ProductionDate, details.Origin); err != nil {
		return 0, fmt.Errorf("insert asset: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO asset_holders (asset_id, seq, holder) VALUES ($1, 0, $2)
	`, next, producer.String()); err != nil {
		return 0, fmt.Errorf("insert producer holder: %w", err)
	}
	return id.AssetID(next), nil
}

func (t *postgresTx) AppendHolder(ctx context.Context, assetID id.AssetID, holder id.Address) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO asset_holders (asset_id, seq, holder)
		SELECT $1, max(seq) + 1, $2 FROM asset_holders WHERE asset_id = $1
		HAVING count(*) > 0
	`, int64(assetID), holder.String())
	if err != nil {
		return fmt.Errorf("append holder: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("asset %d: %w", assetID, sentinel.ErrNotFound)
	}
	return nil
}
