package ledger

import "errors"

var (
	// ErrGroupNotFound is returned when the group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrInvalidGroup is returned for a group without a name, without members,
	// or with a duplicate or non-positive member id.
	ErrInvalidGroup = errors.New("invalid group")

	// ErrInvalidSettlement is returned for a non-positive amount or a settlement with itself.
	ErrInvalidSettlement = errors.New("invalid settlement")

	// ErrMemberInUse is returned when an update would drop a member that recorded history references.
	ErrMemberInUse = errors.New("member is referenced by recorded expenses or settlements")
)
