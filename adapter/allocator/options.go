package allocator

// WithCollection sets the collection holding the counters.
func WithCollection(name string) Option {
	return func(a *Allocator) {
		if name != "" {
			a.collection = name
		}
	}
}

// Option configures the allocator through the functional options pattern.
type Option func(*Allocator)
