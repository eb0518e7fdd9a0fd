// Package domain contains the core types for lockstep.
package domain

// Variant is one spec-file/lock-file pair managed by lockstep.
//
// The spec file is human-authored and lists desired dependencies; the lock
// file is machine-generated by the compile step and consumed by the sync step.
type Variant struct {
	// Name identifies the variant, e.g. "default" or "dev".
	Name string

	// SpecFile is the absolute path to the requirements specification file.
	SpecFile string

	// LockFile is the absolute path to the pinned lock file.
	LockFile string

	// Environment holds extra environment variables applied to both the
	// compile and sync invocations of this variant.
	Environment map[string]string
}

// Config is the fully resolved lockstep configuration.
type Config struct {
	// Root is the directory all relative paths were resolved against.
	Root string

	// Compiler is the argv prefix of the external dependency compiler.
	Compiler []string

	// Syncer is the argv prefix of the external dependency syncer.
	Syncer []string

	// Variants are the configured variants in declaration order.
	Variants []Variant
}

// Variant returns the variant with the given name, or nil if none matches.
func (c *Config) Variant(name string) *Variant {
	for i := range c.Variants {
		if c.Variants[i].Name == name {
			return &c.Variants[i]
		}
	}
	return nil
}

// Invocation describes a single external tool invocation.
type Invocation struct {
	// Argv is the full command line, program name first.
	Argv []string

	// WorkingDir is the directory the tool runs in.
	WorkingDir string

	// Environment holds extra environment variables merged over the
	// process environment.
	Environment map[string]string
}
