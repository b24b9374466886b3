package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"custody/internal/custody/models"
	"custody/internal/custody/store"
	id "custody/pkg/domain"
	dErrors "custody/pkg/domain-errors"
	audit "custody/pkg/platform/audit"
	"custody/pkg/platform/sentinel"
)

// RegisterActor creates or overwrites target with role and enables it.
func (s *Service) RegisterActor(ctx context.Context, caller, target id.Address, role models.Role) error {
	err := s.run(ctx, "register_actor", func(ctx context.Context, st store.Store) error {
		if err := s.requireAdministrator(ctx, st, caller); err != nil {
			return err
		}
		if !role.IsValid() {
			return models.ErrInvalidRole
		}
		if target.IsZero() {
			return dErrors.New(dErrors.CodeInvalidInput, "actor address must not be the zero address")
		}
		if err := st.SaveActor(ctx, models.Actor{Address: target, Role: role, Enabled: true}); err != nil {
			return storeErr(err, "failed to store actor")
		}
		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventActorRegistered),
			Caller:  caller.String(),
			Subject: target.String(),
			Role:    role.String(),
		})
	},
		attribute.String("custody.caller", caller.String()),
		attribute.String("custody.target", target.String()),
		attribute.Int("custody.role", int(role)),
	)
	if err != nil {
		return err
	}
	s.metrics.IncrementActorsRegistered()
	s.logger.InfoContext(ctx, "actor registered",
		"caller", caller,
		"target", target,
		"role", role.String(),
	)
	return nil
}

// DisableActor clears target's enabled flag and keeps its role. A target
// never registered is recorded as a disabled Producer.
func (s *Service) DisableActor(ctx context.Context, caller, target id.Address) error {
	err := s.run(ctx, "disable_actor", func(ctx context.Context, st store.Store) error {
		if err := s.requireAdministrator(ctx, st, caller); err != nil {
			return err
		}
		actor, err := s.lookupActor(ctx, st, target)
		if err != nil {
			return err
		}
		actor.Enabled = false
		if err := st.SaveActor(ctx, actor); err != nil {
			return storeErr(err, "failed to store actor")
		}
		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventActorDisabled),
			Caller:  caller.String(),
			Subject: target.String(),
		})
	},
		attribute.String("custody.caller", caller.String()),
		attribute.String("custody.target", target.String()),
	)
	if err != nil {
		return err
	}
	s.metrics.IncrementActorsDisabled()
	s.logger.InfoContext(ctx, "actor disabled",
		"caller", caller,
		"target", target,
	)
	return nil
}

// GetActor returns target's role and enabled flag. Unregistered targets
// report the disabled Producer default with Registered false.
func (s *Service) GetActor(ctx context.Context, caller, target id.Address) (models.ActorView, error) {
	var view models.ActorView
	err := s.run(ctx, "get_actor", func(ctx context.Context, st store.Store) error {
		if err := s.requireAdministrator(ctx, st, caller); err != nil {
			return err
		}
		actor, err := st.FindActor(ctx, target)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			actor = models.AbsentActor(target)
		case err != nil:
			return storeErr(err, "failed to load actor")
		default:
			view.Registered = true
		}
		view.Address = target
		view.Role = actor.Role
		view.Enabled = actor.Enabled
		return nil
	}, attribute.String("custody.target", target.String()))
	if err != nil {
		return models.ActorView{}, err
	}
	return view, nil
}

// lookupActor is the single read path for actors. An absent actor collapses
// to the disabled default.
func (s *Service) lookupActor(ctx context.Context, st store.Store, addr id.Address) (models.Actor, error) {
	actor, err := st.FindActor(ctx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.AbsentActor(addr), nil
	}
	if err != nil {
		return models.Actor{}, storeErr(err, "failed to load actor")
	}
	return actor, nil
}

func (s *Service) roleOf(ctx context.Context, st store.Store, addr id.Address) (models.Role, error) {
	actor, err := s.lookupActor(ctx, st, addr)
	if err != nil {
		return 0, err
	}
	return actor.Role, nil
}

func (s *Service) isEnabled(ctx context.Context, st store.Store, addr id.Address) (bool, error) {
	actor, err := s.lookupActor(ctx, st, addr)
	if err != nil {
		return false, err
	}
	return actor.Enabled, nil
}
