package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/waterwatch/internal/dbx"
	"github.com/dmitrijs2005/waterwatch/internal/server/repositories/readings"
	"github.com/dmitrijs2005/waterwatch/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out the same in-process repositories on every
// call; the DBTX argument is ignored.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	readings *readings.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		readings: readings.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Readings(dbx.DBTX) readings.Repository {
	return m.readings
}

// RunMigrations is a no-op; there is no schema to apply.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
