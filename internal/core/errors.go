package core

import "errors"

var (
	// ErrInvalidRole rejects message construction with a role outside the
	// system/user/assistant set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrCheckpointNotFound is returned by a checkpoint load when no
	// checkpoint with the requested name exists.
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrCheckpointCorrupt is returned by a checkpoint load when the file
	// exists but cannot be parsed. Kept distinct from ErrCheckpointNotFound
	// so callers can tell "start fresh" from "data lost".
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt")
)
