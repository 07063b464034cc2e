package storage

// KeyValue is durable key/value access scoped to one namespace.
// Save must not return until the value is durable.
type KeyValue interface {
	Load(key string, out any) (bool, error)
	Save(key string, v any) error
}

// Backend hands out namespaced KeyValue stores.
type Backend interface {
	Namespace(name string) (KeyValue, error)
	Close() error
}
