package store

import (
	"context"
	"fmt"
	"time"

	"custody/internal/custody/models"
	id "custody/pkg/domain"
	"custody/pkg/platform/sentinel"
)

// MemoryStore keeps custody state in process. A one-slot semaphore is the
// global serialization point; each transaction stages its writes and merges
// them only when the callback succeeds.
type MemoryStore struct {
	sem     chan struct{}
	timeout time.Duration

	administrator id.Address
	actors        map[id.Address]models.Actor
	assets        map[id.AssetID]models.Asset
	count         uint64
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryTxTimeout bounds how long a call may wait for and hold the lock
// when its context has no deadline.
func WithMemoryTxTimeout(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.timeout = d
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sem:    make(chan struct{}, 1),
		actors: make(map[id.Address]models.Actor),
		assets: make(map[id.AssetID]models.Asset),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error {
	if err := ctx.Err(); err != nil {
		return abortedErr(err)
	}
	ctx, cancel := withTxDeadline(ctx, s.timeout)
	defer cancel()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return abortedErr(ctx.Err())
	}
	defer func() { <-s.sem }()

	tx := &memoryTx{
		base:          s,
		administrator: s.administrator,
		count:         s.count,
		actors:        make(map[id.Address]models.Actor),
		assets:        make(map[id.AssetID]models.Asset),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memoryTx is the staged view of one transaction.
type memoryTx struct {
	base *MemoryStore

	administrator id.Address
	count         uint64
	actors        map[id.Address]models.Actor
	assets        map[id.AssetID]models.Asset
}

func (t *memoryTx) commit() {
	t.base.administrator = t.administrator
	t.base.count = t.count
	for addr, actor := range t.actors {
		t.base.actors[addr] = actor
	}
	for assetID, asset := range t.assets {
		t.base.assets[assetID] = asset
	}
}

func (t *memoryTx) Administrator(_ context.Context) (id.Address, error) {
	if t.administrator == "" {
		return "", fmt.Errorf("administrator: %w", sentinel.ErrNotFound)
	}
	return t.administrator, nil
}

func (t *memoryTx) SetAdministrator(_ context.Context, admin id.Address) error {
	t.administrator = admin
	return nil
}

func (t *memoryTx) FindActor(_ context.Context, addr id.Address) (models.Actor, error) {
	if actor, ok := t.actors[addr]; ok {
		return actor, nil
	}
	if actor, ok := t.base.actors[addr]; ok {
		return actor, nil
	}
	return models.Actor{}, fmt.Errorf("actor %s: %w", addr, sentinel.ErrNotFound)
}

func (t *memoryTx) SaveActor(_ context.Context, actor models.Actor) error {
	t.actors[actor.Address] = actor
	return nil
}

func (t *memoryTx) AssetCount(_ context.Context) (uint64, error) {
	return t.count, nil
}

func (t *memoryTx) FindAsset(_ context.Context, assetID id.AssetID) (models.Asset, error) {
	if asset, ok := t.assets[assetID]; ok {
		return asset.Clone(), nil
	}
	if asset, ok := t.base.assets[assetID]; ok {
		return asset.Clone(), nil
	}
	return models.Asset{}, fmt.Errorf("asset %d: %w", assetID, sentinel.ErrNotFound)
}

func (t *memoryTx) CreateAsset(_ context.Context, details models.AssetDetails, producer id.Address) (id.AssetID, error) {
	t.count++
	assetID := id.AssetID(t.count)
	t.assets[assetID] = models.Asset{
		ID:            assetID,
		AssetDetails:  details,
		HolderHistory: []id.Address{producer},
	}
	return assetID, nil
}

func (t *memoryTx) AppendHolder(ctx context.Context, assetID id.AssetID, holder id.Address) error {
	asset, err := t.FindAsset(ctx, assetID)
	if err != nil {
		return err
	}
	asset.HolderHistory = append(asset.HolderHistory, holder)
	t.assets[assetID] = asset
	return nil
}
