package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"custody/internal/custody/metrics"
	"custody/internal/custody/models"
	"custody/internal/custody/store"
	id "custody/pkg/domain"
	dErrors "custody/pkg/domain-errors"
	audit "custody/pkg/platform/audit"
	"custody/pkg/platform/audit/publishers/compliance"
	auditmemory "custody/pkg/platform/audit/store/memory"
)

var (
	admin    = id.MustParseAddress("0x00000000000000000000000000000000000000a1")
	producer = id.MustParseAddress("0x00000000000000000000000000000000000000b1")
	carrier  = id.MustParseAddress("0x00000000000000000000000000000000000000c1")
	retailer = id.MustParseAddress("0x00000000000000000000000000000000000000d1")
	consumer = id.MustParseAddress("0x00000000000000000000000000000000000000e1")
	stranger = id.MustParseAddress("0x00000000000000000000000000000000000000f1")
)

var battery = models.AssetDetails{AssetType: "Battery", ProductionDate: 1700000000, Origin: "Curitiba"}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.MemoryStore
	audit   *auditmemory.InMemoryStore
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewMemoryStore()
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store,
		WithAuditPublisher(compliance.New(s.audit)),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(s.service.Initialize(s.ctx, admin))
}

func (s *ServiceSuite) registerChain() {
	s.Require().NoError(s.service.RegisterActor(s.ctx, admin, producer, models.RoleProducer))
	s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleCarrier))
	s.Require().NoError(s.service.RegisterActor(s.ctx, admin, retailer, models.RoleRetailer))
	s.Require().NoError(s.service.RegisterActor(s.ctx, admin, consumer, models.RoleConsumer))
}

func (s *ServiceSuite) registerAsset() id.AssetID {
	assetID, err := s.service.RegisterAsset(s.ctx, producer, battery)
	s.Require().NoError(err)
	return assetID
}

func (s *ServiceSuite) requireAccessError(err error, kind models.AccessKind, account id.Address) {
	s.T().Helper()
	var accessErr *models.AccessError
	s.Require().True(errors.As(err, &accessErr), "expected access error, got %v", err)
	s.Equal(kind, accessErr.Kind)
	s.Equal(account, accessErr.Account)
}

func (s *ServiceSuite) TestAdministratorGate() {
	s.Run("initialize only once", func() {
		err := s.service.Initialize(s.ctx, stranger)
		s.ErrorIs(err, models.ErrAlreadyInitialized)

		got, err := s.service.Administrator(s.ctx)
		s.Require().NoError(err)
		s.Equal(admin, got)
	})

	s.Run("non-administrators are rejected", func() {
		for _, caller := range []id.Address{stranger, producer, id.ZeroAddress} {
			s.requireAccessError(s.service.RegisterActor(s.ctx, caller, carrier, models.RoleCarrier), models.AccessUnauthorized, caller)
			s.requireAccessError(s.service.DisableActor(s.ctx, caller, carrier), models.AccessUnauthorized, caller)
			_, err := s.service.GetActor(s.ctx, caller, carrier)
			s.requireAccessError(err, models.AccessUnauthorized, caller)
		}
	})

	s.Run("uninitialized ledger rejects everyone", func() {
		svc := New(store.NewMemoryStore())
		got, err := svc.Administrator(s.ctx)
		s.Require().NoError(err)
		s.Equal(id.ZeroAddress, got)
		s.requireAccessError(svc.RegisterActor(s.ctx, admin, producer, models.RoleProducer), models.AccessUnauthorized, admin)
	})

	s.Run("initialize rejects the zero address", func() {
		svc := New(store.NewMemoryStore())
		s.ErrorIs(svc.Initialize(s.ctx, id.ZeroAddress), models.ErrInvalidAdministrator)
	})
}

func (s *ServiceSuite) TestTransferAdministration() {
	s.requireAccessError(s.service.TransferAdministration(s.ctx, stranger, stranger), models.AccessUnauthorized, stranger)
	s.ErrorIs(s.service.TransferAdministration(s.ctx, admin, id.ZeroAddress), models.ErrInvalidAdministrator)

	s.Require().NoError(s.service.TransferAdministration(s.ctx, admin, stranger))
	got, err := s.service.Administrator(s.ctx)
	s.Require().NoError(err)
	s.Equal(stranger, got)

	s.requireAccessError(s.service.RegisterActor(s.ctx, admin, producer, models.RoleProducer), models.AccessUnauthorized, admin)
	s.NoError(s.service.RegisterActor(s.ctx, stranger, producer, models.RoleProducer))

	events, err := s.audit.ListAll(s.ctx)
	s.Require().NoError(err)
	var transfers int
	for _, e := range events {
		if e.Action == string(audit.EventAdministrationTransferred) {
			transfers++
		}
	}
	s.Equal(2, transfers)
}

func (s *ServiceSuite) TestActorRegistry() {
	s.Run("register stores exactly the supplied arguments", func() {
		s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleCarrier))
		view, err := s.service.GetActor(s.ctx, admin, carrier)
		s.Require().NoError(err)
		s.Equal(models.ActorView{Address: carrier, Role: models.RoleCarrier, Enabled: true, Registered: true}, view)
	})

	s.Run("re-registration overwrites role and re-enables", func() {
		s.Require().NoError(s.service.DisableActor(s.ctx, admin, carrier))
		s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleRetailer))
		view, err := s.service.GetActor(s.ctx, admin, carrier)
		s.Require().NoError(err)
		s.Equal(models.RoleRetailer, view.Role)
		s.True(view.Enabled)
	})

	s.Run("disable keeps the role", func() {
		s.Require().NoError(s.service.DisableActor(s.ctx, admin, carrier))
		view, err := s.service.GetActor(s.ctx, admin, carrier)
		s.Require().NoError(err)
		s.Equal(models.RoleRetailer, view.Role)
		s.False(view.Enabled)
	})

	s.Run("absent actor reads as disabled producer", func() {
		view, err := s.service.GetActor(s.ctx, admin, stranger)
		s.Require().NoError(err)
		s.Equal(models.ActorView{Address: stranger, Role: models.RoleProducer}, view)
	})

	s.Run("disabling an unknown actor records a disabled producer", func() {
		s.Require().NoError(s.service.DisableActor(s.ctx, admin, retailer))
		view, err := s.service.GetActor(s.ctx, admin, retailer)
		s.Require().NoError(err)
		s.Equal(models.ActorView{Address: retailer, Role: models.RoleProducer, Registered: true}, view)
	})

	s.Run("invalid role is rejected", func() {
		s.ErrorIs(s.service.RegisterActor(s.ctx, admin, stranger, models.Role(4)), models.ErrInvalidRole)
	})

	s.Run("zero target is rejected", func() {
		err := s.service.RegisterActor(s.ctx, admin, id.ZeroAddress, models.RoleCarrier)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestRegisterAsset() {
	s.Run("unregistered caller is not enabled", func() {
		_, err := s.service.RegisterAsset(s.ctx, stranger, battery)
		s.ErrorIs(err, models.ErrActorNotEnabled)
	})

	s.Run("not-enabled is reported before wrong role", func() {
		s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleCarrier))
		s.Require().NoError(s.service.DisableActor(s.ctx, admin, carrier))
		_, err := s.service.RegisterAsset(s.ctx, carrier, battery)
		s.ErrorIs(err, models.ErrActorNotEnabled)
	})

	s.Run("enabled non-producer has the wrong role", func() {
		s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleCarrier))
		_, err := s.service.RegisterAsset(s.ctx, carrier, battery)
		s.ErrorIs(err, models.ErrWrongRole)
		s.Equal("Actor's role must be Producer", err.Error())
	})

	s.Run("producer registers sequential ids", func() {
		s.Require().NoError(s.service.RegisterActor(s.ctx, admin, producer, models.RoleProducer))
		total, err := s.service.GetTotalAssetNumber(s.ctx)
		s.Require().NoError(err)
		s.Zero(total)

		first := s.registerAsset()
		second := s.registerAsset()
		s.Equal(id.AssetID(1), first)
		s.Equal(id.AssetID(2), second)

		total, err = s.service.GetTotalAssetNumber(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(2), total)

		view, err := s.service.GetAsset(s.ctx, first)
		s.Require().NoError(err)
		s.Equal("Battery", view.AssetType)
		s.Equal(int64(1700000000), view.ProductionDate)
		s.Equal("Curitiba", view.Origin)
		s.Equal(producer, view.Producer)
		s.Equal([]id.Address{producer}, view.HolderHistory)
		s.Equal(2.0, testutil.ToFloat64(s.metrics.AssetsRegistered))
	})
}

func (s *ServiceSuite) TestAssetReadsRejectInvalidIDs() {
	assertInvalid := func(assetID id.AssetID) {
		_, err := s.service.GetAsset(s.ctx, assetID)
		s.ErrorIs(err, models.ErrInvalidAssetID)
		_, err = s.service.GetAssetCurrentHolder(s.ctx, assetID)
		s.ErrorIs(err, models.ErrInvalidAssetID)
		_, err = s.service.GetAssetHolderHistory(s.ctx, assetID)
		s.ErrorIs(err, models.ErrInvalidAssetID)
	}

	s.Run("empty ledger", func() {
		assertInvalid(0)
		assertInvalid(1)
	})

	s.Run("beyond the count", func() {
		s.registerChain()
		s.registerAsset()
		assertInvalid(0)
		assertInvalid(2)
		assertInvalid(1 << 40)
	})
}

func (s *ServiceSuite) TestFullCustodyChain() {
	s.registerChain()
	assetID := s.registerAsset()

	s.Require().NoError(s.service.TransferAsset(s.ctx, producer, assetID, carrier))
	s.Require().NoError(s.service.TransferAsset(s.ctx, carrier, assetID, retailer))
	s.Require().NoError(s.service.TransferAsset(s.ctx, retailer, assetID, consumer))

	holder, err := s.service.GetAssetCurrentHolder(s.ctx, assetID)
	s.Require().NoError(err)
	s.Equal(consumer, holder)

	history, err := s.service.GetAssetHolderHistory(s.ctx, assetID)
	s.Require().NoError(err)
	s.Equal([]id.Address{producer, carrier, retailer, consumer}, history)

	events, err := s.audit.ListByAsset(s.ctx, uint64(assetID))
	s.Require().NoError(err)
	s.Require().Len(events, 4)
	s.Equal(string(audit.EventAssetRegistered), events[0].Action)
	s.Equal(string(audit.EventAssetTransfered), events[3].Action)
	s.Equal(retailer.String(), events[3].From)
	s.Equal(consumer.String(), events[3].To)
	s.Equal(3.0, testutil.ToFloat64(s.metrics.AssetsTransferred))

	s.Run("consumer cannot transfer regardless of target", func() {
		for _, next := range []id.Address{producer, stranger, id.ZeroAddress, consumer} {
			s.ErrorIs(s.service.TransferAsset(s.ctx, consumer, assetID, next), models.ErrConsumerCannotTransfer)
		}
	})
}

func (s *ServiceSuite) TestTransferCheckOrder() {
	s.registerChain()
	assetID := s.registerAsset()

	s.Run("non-holder", func() {
		err := s.service.TransferAsset(s.ctx, carrier, assetID, retailer)
		s.requireAccessError(err, models.AccessOnlyAssetOwner, carrier)
	})

	s.Run("nonexistent asset reports ownership before role", func() {
		for _, assetID := range []id.AssetID{0, 2, 99} {
			err := s.service.TransferAsset(s.ctx, producer, assetID, producer)
			s.requireAccessError(err, models.AccessOnlyAssetOwner, producer)
		}
	})

	s.Run("zero caller never owns", func() {
		err := s.service.TransferAsset(s.ctx, id.ZeroAddress, 5, carrier)
		s.requireAccessError(err, models.AccessOnlyAssetOwner, id.ZeroAddress)
	})

	s.Run("unregistered next holder", func() {
		s.ErrorIs(s.service.TransferAsset(s.ctx, producer, assetID, stranger), models.ErrInvalidNextOwner)
	})

	s.Run("disabled next holder", func() {
		s.Require().NoError(s.service.DisableActor(s.ctx, admin, carrier))
		s.ErrorIs(s.service.TransferAsset(s.ctx, producer, assetID, carrier), models.ErrInvalidNextOwner)
		s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleCarrier))
	})

	s.Run("wrong next role", func() {
		for _, next := range []id.Address{producer, retailer, consumer} {
			s.ErrorIs(s.service.TransferAsset(s.ctx, producer, assetID, next), models.ErrWrongNextOwnerRole)
		}
	})

	s.Run("rejections leave history untouched", func() {
		history, err := s.service.GetAssetHolderHistory(s.ctx, assetID)
		s.Require().NoError(err)
		s.Equal([]id.Address{producer}, history)
	})
}

func (s *ServiceSuite) TestTransferUsesCurrentRole() {
	s.registerChain()

	s.Run("holder re-registered after receipt", func() {
		assetID := s.registerAsset()
		s.Require().NoError(s.service.TransferAsset(s.ctx, producer, assetID, carrier))
		s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleRetailer))
		defer func() {
			s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleCarrier))
		}()

		s.ErrorIs(s.service.TransferAsset(s.ctx, carrier, assetID, retailer), models.ErrWrongNextOwnerRole)
		s.Require().NoError(s.service.TransferAsset(s.ctx, carrier, assetID, consumer))

		holder, err := s.service.GetAssetCurrentHolder(s.ctx, assetID)
		s.Require().NoError(err)
		s.Equal(consumer, holder)
	})

	s.Run("disabled holder can still hand off", func() {
		assetID := s.registerAsset()
		s.Require().NoError(s.service.DisableActor(s.ctx, admin, producer))
		defer func() {
			s.Require().NoError(s.service.RegisterActor(s.ctx, admin, producer, models.RoleProducer))
		}()

		s.Require().NoError(s.service.TransferAsset(s.ctx, producer, assetID, carrier))
		history, err := s.service.GetAssetHolderHistory(s.ctx, assetID)
		s.Require().NoError(err)
		s.Equal([]id.Address{producer, carrier}, history)
	})
}

func (s *ServiceSuite) TestEndToEndScenario() {
	s.Require().NoError(s.service.RegisterActor(s.ctx, admin, producer, models.RoleProducer))
	s.Require().NoError(s.service.RegisterActor(s.ctx, admin, carrier, models.RoleCarrier))

	assetID := s.registerAsset()
	s.Equal(id.AssetID(1), assetID)

	s.Require().NoError(s.service.TransferAsset(s.ctx, producer, assetID, carrier))
	holder, err := s.service.GetAssetCurrentHolder(s.ctx, assetID)
	s.Require().NoError(err)
	s.Equal(carrier, holder)

	history, err := s.service.GetAssetHolderHistory(s.ctx, assetID)
	s.Require().NoError(err)
	s.Equal([]id.Address{producer, carrier}, history)

	s.ErrorIs(s.service.TransferAsset(s.ctx, carrier, assetID, producer), models.ErrWrongNextOwnerRole)
}

type failingAuditStore struct{}

func (failingAuditStore) Append(context.Context, audit.Event) error {
	return errors.New("audit store unavailable")
}

func (s *ServiceSuite) TestAuditFailureRollsBack() {
	s.registerChain()
	s.registerAsset()

	failing := New(s.store, WithAuditPublisher(compliance.New(failingAuditStore{})))

	_, err := failing.RegisterAsset(s.ctx, producer, battery)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Empty(RejectionKind(err))

	err = failing.TransferAsset(s.ctx, producer, 1, carrier)
	s.Require().Error(err)

	total, err := s.service.GetTotalAssetNumber(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), total)

	history, err := s.service.GetAssetHolderHistory(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]id.Address{producer}, history)

	assetID := s.registerAsset()
	s.Equal(id.AssetID(2), assetID)
}

func (s *ServiceSuite) TestConcurrentRegistrations() {
	s.Require().NoError(s.service.RegisterActor(s.ctx, admin, producer, models.RoleProducer))

	const n = 50
	ids := make(chan id.AssetID, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assetID, err := s.service.RegisterAsset(s.ctx, producer, battery)
			s.NoError(err)
			ids <- assetID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[id.AssetID]bool, n)
	for assetID := range ids {
		s.False(seen[assetID], "duplicate id %d", assetID)
		seen[assetID] = true
	}
	for i := 1; i <= n; i++ {
		s.True(seen[id.AssetID(i)], "missing id %d", i)
	}

	total, err := s.service.GetTotalAssetNumber(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(n), total)
}

func (s *ServiceSuite) TestRejectionMetrics() {
	_, err := s.service.RegisterAsset(s.ctx, stranger, battery)
	s.Require().Error(err)
	s.Equal("ActorNotEnabled", RejectionKind(err))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("register_asset", "ActorNotEnabled")))
}
