package permission

import "errors"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrInvalidQuickRequest is returned when a quick request does not select exactly one operation.
	ErrInvalidQuickRequest = errors.New("invalid quick permission request")
	// ErrUnknownPermission is returned when a permission name is not in the catalog.
	ErrUnknownPermission = errors.New("unknown permission")
	// ErrProfileNotFound is returned when a permission profile does not exist.
	ErrProfileNotFound = errors.New("permission profile not found")
	// ErrProtectedProfile is returned when changing one of the predefined profiles.
	ErrProtectedProfile = errors.New("permission profile is read-only")
	// ErrGroupNotFound is returned when a source group does not exist.
	ErrGroupNotFound = errors.New("membergroup not found")
	// ErrUnknownLevel is returned when a snapshot or request names a level that does not exist.
	ErrUnknownLevel = errors.New("unknown permission level")
)
