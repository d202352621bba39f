package rediskvstore

type StoreOptions struct {
	// Namespace prefixes the sorted set and the hash names
	Namespace string

	// PageSize is the number of keys fetched per ZRANGEBYLEX call
	PageSize int64
}

type StoreOption func(s *StoreOptions) error

func WithNamespace(namespace string) StoreOption {
	return func(s *StoreOptions) error {
		s.Namespace = namespace

		return nil
	}
}

func WithPageSize(size int64) StoreOption {
	return func(s *StoreOptions) error {
		s.PageSize = size

		return nil
	}
}
