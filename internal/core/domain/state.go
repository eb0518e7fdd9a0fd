package domain

import (
	"path/filepath"
	"time"
)

// File system permissions used across the application.
const (
	// DirPerm is the permission for created directories.
	DirPerm = 0o750

	// FilePerm is the permission for created files.
	FilePerm = 0o600
)

// ConfigFileName is the name of the lockstep configuration file.
const ConfigFileName = "lockstep.yaml"

// EnvFileName is the name of the optional dotenv overlay file.
const EnvFileName = ".env"

// stateDirName is the directory pin state is recorded under, relative to the root.
const stateDirName = ".lockstep"

// StatePath returns the pin state directory for the given root.
func StatePath(root string) string {
	return filepath.Join(root, stateDirName)
}

// PinState records the content hashes of a variant after a fully successful
// compile+sync run. A variant whose spec and lock files still match the
// recorded hashes is up to date and can be skipped.
type PinState struct {
	Variant  string    `json:"variant"`
	SpecHash string    `json:"spec_hash"`
	LockHash string    `json:"lock_hash"`
	PinnedAt time.Time `json:"pinned_at"`
}
