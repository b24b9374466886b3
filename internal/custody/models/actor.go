package models

import (
	id "custody/pkg/domain"
)

// Actor is a registered participant. An address with no record behaves as a
// disabled Producer for every authorization check.
type Actor struct {
	Address id.Address
	Role    Role
	Enabled bool
}

// AbsentActor is the record assumed for an address the registry has never seen.
func AbsentActor(addr id.Address) Actor {
	return Actor{Address: addr, Role: RoleProducer, Enabled: false}
}

// ActorView is what GetActor returns. Registered is false for absent actors.
type ActorView struct {
	Address    id.Address
	Role       Role
	Enabled    bool
	Registered bool
}
