package config

// WithEnvPrefix sets the prefix of the environment variables read by [Load].
func WithEnvPrefix(p string) Option {
	return func(lo *loadOptions) {
		lo.envPrefix = p
	}
}

// WithDefaultName sets the database name used when none is configured,
// usually the host application's own database name.
func WithDefaultName(n string) Option {
	return func(lo *loadOptions) {
		lo.defaultName = n
	}
}

// WithFile reads a configuration file. The format is detected from the file
// extension.
func WithFile(f string) Option {
	return func(lo *loadOptions) {
		lo.file = f
	}
}

// WithOverrides sets values with the highest precedence, keyed by their
// mapstructure names.
func WithOverrides(o map[string]any) Option {
	return func(lo *loadOptions) {
		lo.overrides = o
	}
}

// Option configures [Load] through the functional options pattern.
type Option func(*loadOptions)

type loadOptions struct {
	envPrefix   string
	defaultName string
	file        string
	overrides   map[string]any
}
