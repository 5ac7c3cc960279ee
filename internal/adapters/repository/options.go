package repository

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithArchivePath sets the file used by Archive and Unarchive.
func WithArchivePath(path string) Option {
	return func(s *MemoryStore) {
		s.archivePath = path
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}
