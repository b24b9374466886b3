package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"custody/internal/custody/models"
	"custody/internal/custody/store"
	id "custody/pkg/domain"
	audit "custody/pkg/platform/audit"
	"custody/pkg/platform/sentinel"
)

// requireAdministrator fails with Unauthorized(caller) unless caller is the
// current administrator. Before initialization no caller passes.
func (s *Service) requireAdministrator(ctx context.Context, st store.Store, caller id.Address) error {
	admin, err := st.Administrator(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Unauthorized(caller)
	}
	if err != nil {
		return storeErr(err, "failed to load administrator")
	}
	if caller.IsZero() || caller != admin {
		return models.Unauthorized(caller)
	}
	return nil
}

// Initialize makes caller the administrator. It succeeds once per ledger.
func (s *Service) Initialize(ctx context.Context, caller id.Address) error {
	return s.run(ctx, "initialize", func(ctx context.Context, st store.Store) error {
		if caller.IsZero() {
			return models.ErrInvalidAdministrator
		}
		_, err := st.Administrator(ctx)
		if err == nil {
			return models.ErrAlreadyInitialized
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return storeErr(err, "failed to load administrator")
		}
		if err := st.SetAdministrator(ctx, caller); err != nil {
			return storeErr(err, "failed to store administrator")
		}
		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventAdministrationTransferred),
			Caller:  caller.String(),
			Subject: caller.String(),
			From:    id.ZeroAddress.String(),
			To:      caller.String(),
		})
	}, attribute.String("custody.caller", caller.String()))
}

// Administrator returns the current administrator, or ZeroAddress before
// initialization.
func (s *Service) Administrator(ctx context.Context) (id.Address, error) {
	admin := id.ZeroAddress
	err := s.run(ctx, "administrator", func(ctx context.Context, st store.Store) error {
		got, err := st.Administrator(ctx)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return storeErr(err, "failed to load administrator")
		}
		admin = got
		return nil
	})
	if err != nil {
		return "", err
	}
	return admin, nil
}

// TransferAdministration hands the administrator role to next.
func (s *Service) TransferAdministration(ctx context.Context, caller, next id.Address) error {
	err := s.run(ctx, "transfer_administration", func(ctx context.Context, st store.Store) error {
		if err := s.requireAdministrator(ctx, st, caller); err != nil {
			return err
		}
		if next.IsZero() {
			return models.ErrInvalidAdministrator
		}
		if err := st.SetAdministrator(ctx, next); err != nil {
			return storeErr(err, "failed to store administrator")
		}
		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventAdministrationTransferred),
			Caller:  caller.String(),
			Subject: next.String(),
			From:    caller.String(),
			To:      next.String(),
		})
	},
		attribute.String("custody.caller", caller.String()),
		attribute.String("custody.next_administrator", next.String()),
	)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "administration transferred",
		"caller", caller,
		"next", next,
	)
	return nil
}
