package models

import (
	"fmt"

	id "custody/pkg/domain"
)

// AccessKind names an access-control failure.
type AccessKind string

const (
	AccessUnauthorized   AccessKind = "Unauthorized"
	AccessOnlyAssetOwner AccessKind = "OnlyAssetOwner"
)

// AccessError reports that Account may not perform the call. Match it with
// errors.As; Account is the rejected caller.
type AccessError struct {
	Kind    AccessKind
	Account id.Address
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s(%s)", e.Kind, e.Account)
}

// Unauthorized is the AccessGate rejection for a non-administrator caller.
func Unauthorized(account id.Address) error {
	return &AccessError{Kind: AccessUnauthorized, Account: account}
}

// OnlyAssetOwner rejects a transfer by anyone but the current holder.
func OnlyAssetOwner(account id.Address) error {
	return &AccessError{Kind: AccessOnlyAssetOwner, Account: account}
}

// ValidationKind names a domain rule violation.
type ValidationKind string

const (
	KindActorNotEnabled        ValidationKind = "ActorNotEnabled"
	KindWrongRole              ValidationKind = "WrongRole"
	KindInvalidAssetID         ValidationKind = "InvalidAssetId"
	KindConsumerCannotTransfer ValidationKind = "ConsumerCannotTransfer"
	KindInvalidNextOwner       ValidationKind = "InvalidNextOwner"
	KindWrongNextOwnerRole     ValidationKind = "WrongNextOwnerRole"
	KindInvalidRole            ValidationKind = "InvalidRole"
	KindInvalidAdministrator   ValidationKind = "InvalidAdministrator"
	KindAlreadyInitialized     ValidationKind = "AlreadyInitialized"
)

// ValidationError is a rule violation with a fixed message. The package
// exposes one value per kind; match with errors.Is.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrActorNotEnabled        = &ValidationError{Kind: KindActorNotEnabled, Message: "Actor not enabled"}
	ErrWrongRole              = &ValidationError{Kind: KindWrongRole, Message: "Actor's role must be Producer"}
	ErrInvalidAssetID         = &ValidationError{Kind: KindInvalidAssetID, Message: "Asset ID must be within valid range"}
	ErrConsumerCannotTransfer = &ValidationError{Kind: KindConsumerCannotTransfer, Message: "Consumer can not transfer asset"}
	ErrInvalidNextOwner       = &ValidationError{Kind: KindInvalidNextOwner, Message: "Next owner is not valid"}
	ErrWrongNextOwnerRole     = &ValidationError{Kind: KindWrongNextOwnerRole, Message: "Wrong next owner role"}
	ErrInvalidRole            = &ValidationError{Kind: KindInvalidRole, Message: "Role must be one of Producer, Carrier, Retailer, Consumer"}
	ErrInvalidAdministrator   = &ValidationError{Kind: KindInvalidAdministrator, Message: "New administrator is the zero address"}
	ErrAlreadyInitialized     = &ValidationError{Kind: KindAlreadyInitialized, Message: "Administrator already initialized"}
)
