package contentstore

// WithBucket sets the name of the bucket holding the blobs.
func WithBucket(name string) Option {
	return func(cs *ContentStore) {
		if name != "" {
			cs.bucket = name
		}
	}
}

// Option configures the content store through the functional options
// pattern.
type Option func(*ContentStore)
