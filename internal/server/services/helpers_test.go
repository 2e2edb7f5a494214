package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/dbx"
	"github.com/dmitrijs2005/waterwatch/internal/logging"
	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/config"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/repositories/readings"
	"github.com/dmitrijs2005/waterwatch/internal/server/repositories/users"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
)

var errBoom = errors.New("boom")

type fakeRepoManager struct {
	users    users.Repository
	readings readings.Repository
}

func newMemoryRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: users.NewMemoryRepository(), readings: readings.NewMemoryRepository()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) Readings(dbx.DBTX) readings.Repository       { return m.readings }

type failingUsersRepo struct {
	getErr    error
	createErr error
}

func (f *failingUsersRepo) Create(context.Context, *models.User) (*models.User, error) {
	return nil, f.createErr
}
func (f *failingUsersRepo) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, f.getErr
}
func (f *failingUsersRepo) GetUserByID(context.Context, string) (*models.User, error) {
	return nil, f.getErr
}

type countingReadingsRepo struct {
	mu        sync.Mutex
	appends   int
	selects   int
	appendErr error
	selectErr error
	items     []models.Reading
}

func (f *countingReadingsRepo) Append(_ context.Context, r *models.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	if f.appendErr != nil {
		return f.appendErr
	}
	f.items = append(f.items, *r)
	return nil
}

func (f *countingReadingsRepo) SelectByOwner(context.Context, string) ([]models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects++
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return append([]models.Reading(nil), f.items...), nil
}

// fakeCache mirrors RedisCache: entries are keyed by generation and
// Invalidate only advances it.
type fakeCache struct {
	mu          sync.Mutex
	gens        map[string]int64
	data        map[string]*series.Series
	invalidated []string
	err         error
}

func newFakeCache() *fakeCache {
	return &fakeCache{gens: map[string]int64{}, data: map[string]*series.Series{}}
}

func (c *fakeCache) key(u string, gen int64, g aggregation.Granularity) string {
	return fmt.Sprintf("%s:%d:%s", u, gen, g)
}

func (c *fakeCache) Generation(_ context.Context, u string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.gens[u], nil
}

func (c *fakeCache) Get(_ context.Context, u string, gen int64, g aggregation.Granularity) (*series.Series, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	s, ok := c.data[c.key(u, gen, g)]
	return s, ok, nil
}

func (c *fakeCache) Set(_ context.Context, u string, gen int64, g aggregation.Granularity, s *series.Series) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[c.key(u, gen, g)] = s
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, u string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, u)
	if c.err != nil {
		return c.err
	}
	c.gens[u]++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{SecretKey: "test-secret", TokenValidityDuration: 24 * time.Hour}
}

func ptr[T any](v T) *T { return &v }

func validInput(ts time.Time, ph float64) ReadingInput {
	return ReadingInput{
		Date:     &ts,
		PH:       ptr(ph),
		TSS:      ptr(100.0),
		TDS:      ptr(200.0),
		BOD:      ptr(10.0),
		COD:      ptr(40.0),
		Chloride: ptr(50.0),
	}
}

var nopLogger logging.Logger = logging.Nop{}
