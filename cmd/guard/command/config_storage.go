package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-instanceguard/internal/storage"
)

type StorageDriver string

const (
	StorageDriverFile   StorageDriver = "file"
	StorageDriverSQLite StorageDriver = "sqlite"
)

type StorageConfig struct {
	Driver StorageDriver `json:"driver"`
	Path   string        `json:"path"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Driver {
	case "", StorageDriverFile, StorageDriverSQLite:
	default:
		el.Add(fmt.Errorf("storage: unknown driver %q", c.Driver))
	}

	if c.Path == "" {
		el.Add(fmt.Errorf("storage: path is required"))
	}

	return el.Err()
}

func (c *StorageConfig) buildBackend() (storage.Backend, error) {
	switch c.Driver {
	case StorageDriverSQLite:
		return storage.OpenSQLite(c.Path)
	default:
		return storage.NewFileBackend(c.Path)
	}
}
