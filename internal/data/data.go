package data

import (
	"time"

	"github.com/pulsecheck/engage/internal/biz/repo"
)

// Repositories contains all boundary implementations.
type Repositories struct {
	Storage   repo.StorageRepo
	Generator repo.GeneratorRepo
}

// NewRepositories creates the storage and generator implementations.
func NewRepositories(dbPath, openaiKey, openaiModel string, genTimeout time.Duration) (*Repositories, error) {
	storage, err := NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Storage:   storage,
		Generator: NewOpenAIGenerator(openaiKey, openaiModel, genTimeout),
	}, nil
}
