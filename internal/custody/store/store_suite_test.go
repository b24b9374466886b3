package store

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/suite"

	"custody/internal/custody/models"
	id "custody/pkg/domain"
	"custody/pkg/platform/sentinel"
)

var (
	producerAddr = id.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	carrierAddr  = id.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	adminAddr    = id.MustParseAddress("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
)

var errBoom = errors.New("boom")

// RunnerSuite exercises the TxRunner contract. Each backend embeds it and
// supplies a fresh runner per test.
type RunnerSuite struct {
	suite.Suite
	ctx       context.Context
	newRunner func() TxRunner
	runner    TxRunner
}

func (s *RunnerSuite) SetupTest() {
	s.ctx = context.Background()
	s.runner = s.newRunner()
}

func (s *RunnerSuite) createAsset(producer id.Address) id.AssetID {
	var assetID id.AssetID
	s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
		var err error
		assetID, err = st.CreateAsset(ctx, models.AssetDetails{AssetType: "coffee", ProductionDate: 1700000000, Origin: "CO"}, producer)
		return err
	}))
	return assetID
}

func (s *RunnerSuite) TestAdministrator() {
	s.Run("missing before first set", func() {
		err := s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			_, err := st.Administrator(ctx)
			return err
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("set then read", func() {
		s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			return st.SetAdministrator(ctx, adminAddr)
		}))
		s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			got, err := st.Administrator(ctx)
			s.Equal(adminAddr, got)
			return err
		}))
	})
}

func (s *RunnerSuite) TestActors() {
	s.Run("missing actor is not found", func() {
		err := s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			_, err := st.FindActor(ctx, carrierAddr)
			return err
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("save overwrites", func() {
		s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			if err := st.SaveActor(ctx, models.Actor{Address: carrierAddr, Role: models.RoleCarrier, Enabled: true}); err != nil {
				return err
			}
			return st.SaveActor(ctx, models.Actor{Address: carrierAddr, Role: models.RoleRetailer, Enabled: false})
		}))
		s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			got, err := st.FindActor(ctx, carrierAddr)
			s.Equal(models.Actor{Address: carrierAddr, Role: models.RoleRetailer, Enabled: false}, got)
			return err
		}))
	})
}

func (s *RunnerSuite) TestAssets() {
	s.Run("ids start at one and history starts with producer", func() {
		first := s.createAsset(producerAddr)
		second := s.createAsset(producerAddr)
		s.Equal(id.AssetID(1), first)
		s.Equal(id.AssetID(2), second)

		s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			count, err := st.AssetCount(ctx)
			s.Equal(uint64(2), count)
			if err != nil {
				return err
			}
			asset, err := st.FindAsset(ctx, first)
			s.Equal([]id.Address{producerAddr}, asset.HolderHistory)
			s.Equal("coffee", asset.AssetType)
			s.Equal(int64(1700000000), asset.ProductionDate)
			s.Equal("CO", asset.Origin)
			return err
		}))
	})

	s.Run("append holder grows history in order", func() {
		assetID := s.createAsset(producerAddr)
		s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			return st.AppendHolder(ctx, assetID, carrierAddr)
		}))
		s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			asset, err := st.FindAsset(ctx, assetID)
			s.Equal([]id.Address{producerAddr, carrierAddr}, asset.HolderHistory)
			return err
		}))
	})

	s.Run("unknown asset is not found", func() {
		err := s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			_, err := st.FindAsset(ctx, 999)
			return err
		})
		s.ErrorIs(err, sentinel.ErrNotFound)

		err = s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
			return st.AppendHolder(ctx, 999, carrierAddr)
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *RunnerSuite) TestFailedCallLeavesNoTrace() {
	err := s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
		if err := st.SaveActor(ctx, models.Actor{Address: producerAddr, Enabled: true}); err != nil {
			return err
		}
		if _, err := st.CreateAsset(ctx, models.AssetDetails{AssetType: "tea"}, producerAddr); err != nil {
			return err
		}
		return errBoom
	})
	s.Require().ErrorIs(err, errBoom)

	s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
		count, err := st.AssetCount(ctx)
		s.Zero(count)
		if err != nil {
			return err
		}
		_, err = st.FindActor(ctx, producerAddr)
		s.ErrorIs(err, sentinel.ErrNotFound)
		return nil
	}))

	// a rolled back registration does not burn an id
	s.Equal(id.AssetID(1), s.createAsset(producerAddr))
}

func (s *RunnerSuite) TestWritesVisibleWithinTransaction() {
	s.Require().NoError(s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
		assetID, err := st.CreateAsset(ctx, models.AssetDetails{AssetType: "tea"}, producerAddr)
		if err != nil {
			return err
		}
		if err := st.AppendHolder(ctx, assetID, carrierAddr); err != nil {
			return err
		}
		asset, err := st.FindAsset(ctx, assetID)
		s.Equal(carrierAddr, asset.CurrentHolder())
		return err
	}))
}

func (s *RunnerSuite) TestConcurrentCreatesAllocateDistinctIDs() {
	const workers = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[id.AssetID]bool)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.runner.RunInTx(s.ctx, func(ctx context.Context, st Store) error {
				assetID, err := st.CreateAsset(ctx, models.AssetDetails{AssetType: "tea"}, producerAddr)
				if err != nil {
					return err
				}
				mu.Lock()
				ids[assetID] = true
				mu.Unlock()
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Len(ids, workers)
	for i := 1; i <= workers; i++ {
		s.True(ids[id.AssetID(i)], "missing id %d", i)
	}
}

func (s *RunnerSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	called := false
	err := s.runner.RunInTx(ctx, func(context.Context, Store) error {
		called = true
		return nil
	})
	s.Error(err)
	s.False(called)
}
