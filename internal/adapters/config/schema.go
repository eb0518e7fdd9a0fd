package config

// File is the YAML schema of lockstep.yaml.
type File struct {
	// Root optionally rebases all relative paths. Resolved against the
	// directory containing the config file.
	Root string `yaml:"root"`

	// Compiler is the argv prefix of the dependency compiler tool.
	Compiler []string `yaml:"compiler"`

	// Syncer is the argv prefix of the dependency sync tool.
	Syncer []string `yaml:"syncer"`

	// Variants lists the spec/lock pairs in declaration order.
	Variants []VariantDTO `yaml:"variants"`
}

// VariantDTO is the YAML representation of a single variant.
type VariantDTO struct {
	Name string            `yaml:"name"`
	Spec string            `yaml:"spec"`
	Lock string            `yaml:"lock"`
	Env  map[string]string `yaml:"env"`
}
