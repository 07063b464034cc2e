package storage

import (
	"fmt"
	"os"
	"sync"
)

// FileBackend stores each namespace as one JSON asset in a directory.
type FileBackend struct {
	store *FileStore[*Bucket]
}

func NewFileBackend(path string) (*FileBackend, error) {
	err := os.MkdirAll(path, 0755)
	if err != nil {
		return nil, fmt.Errorf("creating storage directory %q: %w", path, err)
	}

	store, err := NewFileStore[*Bucket](path)
	if err != nil {
		return nil, fmt.Errorf("opening file store: %w", err)
	}

	return &FileBackend{store: store}, nil
}

func (b *FileBackend) Namespace(name string) (KeyValue, error) {
	if !identifierPattern.MatchString(name) || name == "" {
		return nil, fmt.Errorf("invalid namespace %q", name)
	}
	return &fileNamespace{store: b.store, name: name}, nil
}

func (b *FileBackend) Close() error {
	return nil
}

type fileNamespace struct {
	store *FileStore[*Bucket]
	name  string

	mu sync.Mutex
}

func (n *fileNamespace) Load(key string, out any) (bool, error) {
	bucket, ok := n.store.Get(n.name)
	if !ok {
		return false, nil
	}
	return bucket.Get(key, out)
}

// Save copies the namespace bucket, applies the change and persists the copy,
// so a failed write leaves the cached bucket as it was.
func (n *fileNamespace) Save(key string, v any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var next *Bucket
	if cur, ok := n.store.Get(n.name); ok && cur != nil {
		next = cur.clone()
	} else {
		next = &Bucket{}
	}

	err := next.Set(key, v)
	if err != nil {
		return err
	}

	err = n.store.Save(n.name, next)
	if err != nil {
		return fmt.Errorf("saving namespace %s: %w", n.name, err)
	}
	return nil
}
