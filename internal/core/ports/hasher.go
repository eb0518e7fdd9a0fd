package ports

// Hasher defines the interface for content hashing of spec and lock files.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileHash returns the content hash of the file at path,
	// formatted as a fixed-width hex string.
	ComputeFileHash(path string) (string, error)
}
