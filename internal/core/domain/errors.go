package domain

import "go.trai.ch/zerr"

var (
	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidVariantName is returned when a variant name contains invalid characters.
	ErrInvalidVariantName = zerr.New("variant name can only contain alphanumeric characters, hyphens and underscores")

	// ErrDuplicateVariantName is returned when two variants share a name.
	ErrDuplicateVariantName = zerr.New("duplicate variant name")

	// ErrMissingSpecFile is returned when a variant does not declare a spec file.
	ErrMissingSpecFile = zerr.New("variant is missing a spec file path")

	// ErrMissingLockFile is returned when a variant does not declare a lock file.
	ErrMissingLockFile = zerr.New("variant is missing a lock file path")

	// ErrMissingTool is returned when the compiler or syncer argv is empty.
	ErrMissingTool = zerr.New("tool command must not be empty")

	// ErrNoVariantsConfigured is returned when the configuration declares no variants.
	ErrNoVariantsConfigured = zerr.New("no variants configured")

	// ErrUnknownVariant is returned when a requested variant is not configured.
	ErrUnknownVariant = zerr.New("unknown variant")

	// ErrStateReadFailed is returned when the pin state cannot be read.
	ErrStateReadFailed = zerr.New("failed to read pin state")

	// ErrStateUnmarshalFailed is returned when the pin state cannot be unmarshaled.
	ErrStateUnmarshalFailed = zerr.New("failed to unmarshal pin state")

	// ErrStateMarshalFailed is returned when the pin state cannot be marshaled.
	ErrStateMarshalFailed = zerr.New("failed to marshal pin state")

	// ErrStateCreateFailed is returned when the pin state directory cannot be created.
	ErrStateCreateFailed = zerr.New("failed to create pin state directory")

	// ErrStateWriteFailed is returned when the pin state cannot be written.
	ErrStateWriteFailed = zerr.New("failed to write pin state")

	// ErrStateClearFailed is returned when the pin state directory cannot be removed.
	ErrStateClearFailed = zerr.New("failed to remove pin state directory")

	// ErrFileOpenFailed is returned when a file cannot be opened for hashing.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrWatcherStartFailed is returned when the file system watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")
)
