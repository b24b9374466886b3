package models

import "encoding/json"

// Role is an actor's position in the custody chain. The numeric order is the
// custody order: an asset moves only from a role to the role directly after it.
type Role uint8

const (
	RoleProducer Role = iota
	RoleCarrier
	RoleRetailer
	RoleConsumer
)

var roleNames = [...]string{"Producer", "Carrier", "Retailer", "Consumer"}

// ParseRole accepts a role number (0..3) and fails with ErrInvalidRole otherwise.
func ParseRole(v uint64) (Role, error) {
	if v > uint64(RoleConsumer) {
		return 0, ErrInvalidRole
	}
	return Role(v), nil
}

func (r Role) IsValid() bool {
	return r <= RoleConsumer
}

// IsTerminal reports whether assets held by this role can move no further.
func (r Role) IsTerminal() bool {
	return r == RoleConsumer
}

// Next returns the successor role. Consumer has none.
func (r Role) Next() (Role, bool) {
	if r >= RoleConsumer {
		return 0, false
	}
	return r + 1, true
}

func (r Role) String() string {
	if !r.IsValid() {
		return "Unknown"
	}
	return roleNames[r]
}

// MarshalJSON renders the role as its number, matching the wire contract.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(r))
}
