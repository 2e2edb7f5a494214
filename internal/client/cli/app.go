package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/client/api"
	"github.com/dmitrijs2005/waterwatch/internal/client/config"
	"github.com/dmitrijs2005/waterwatch/internal/client/localdb"
	"github.com/dmitrijs2005/waterwatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/waterwatch/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/waterwatch/internal/netx"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
)

type apiClient interface {
	Ping(ctx context.Context) error
	Signup(ctx context.Context, name, email, password string) error
	Signin(ctx context.Context, email, password string) error
	Signout()
	Token() string
	SetToken(token string)
	SubmitReading(ctx context.Context, r api.ReadingPayload) error
	Readings(ctx context.Context) ([]models.Reading, error)
	Series(ctx context.Context, view string) (*series.Series, error)
	Export(ctx context.Context, view string) (*api.ExportLink, error)
}

type App struct {
	config   *config.Config
	api      apiClient
	reader   *bufio.Reader
	out      io.Writer
	meta     metadata.Repository
	outbox   outbox.Repository
	closer   io.Closer
	email    string
	rng      *rand.Rand
	now      func() time.Time
	download func(ctx context.Context, url string) ([]byte, error)
}

// NewApp opens the local database and builds the client. Close releases it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	store, err := localdb.Open(ctx, c.LocalDB)
	if err != nil {
		return nil, fmt.Errorf("local database %s: %w", c.LocalDB, err)
	}

	httpClient := &http.Client{Timeout: c.RequestTimeout}
	return &App{
		config: c,
		api:    api.NewHTTPClient(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		meta:   store.Metadata,
		outbox: store.Outbox,
		closer: store,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		download: func(ctx context.Context, url string) ([]byte, error) {
			return netx.DownloadPresignedURL(ctx, httpClient, url)
		},
	}, nil
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.email
	}
	return "guest"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// Run restores the saved session, checks the server once and starts the
// REPL.
func (a *App) Run(ctx context.Context) {
	a.restoreSession(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	if err := a.api.Ping(pingCtx); err != nil {
		a.printf("Warning: server %s is not reachable: %v", a.config.ServerURL, err)
	}
	cancel()

	if a.isLoggedIn() {
		if n, err := a.outbox.Count(ctx, a.email); err == nil && n > 0 {
			a.printf("%d readings are queued, run 'sync' to send them", n)
		}
	}

	a.printf("Type 'help' for the list of commands.")
	runREPL(ctx, a, a.status, a.reader, a.out)
}
