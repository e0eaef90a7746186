package corpus

// Option customizes the corpus storage
type Option func(s *Service)

// WithBackupURL keeps a timestamped copy of every replaced document
func WithBackupURL(URL string) Option {
	return func(s *Service) {
		s.backupURL = URL
	}
}

// WithIndent sets the output indent
func WithIndent(indent string) Option {
	return func(s *Service) {
		s.codec.Indent = indent
	}
}

// WithRequiredFields sets flow keys every record must carry
func WithRequiredFields(fields ...string) Option {
	return func(s *Service) {
		s.codec.RequiredFields = fields
	}
}
