package cli

import (
	"bufio"
	"bytes"
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/client/api"
	"github.com/dmitrijs2005/waterwatch/internal/client/config"
	"github.com/dmitrijs2005/waterwatch/internal/client/localdb"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	token string

	signupErr error
	signinErr error
	submitErr error
	// submitErrs, when set, is consumed one per call before submitErr.
	submitErrs []error
	listErr   error
	seriesErr error
	exportErr error

	signupArgs []string
	signinArgs []string
	submitted  []api.ReadingPayload
	readings   []models.Reading
	series     *series.Series
	seriesView string
	link       *api.ExportLink
}

func (f *fakeAPI) Ping(ctx context.Context) error { return nil }

func (f *fakeAPI) Signup(ctx context.Context, name, email, password string) error {
	f.signupArgs = []string{name, email, password}
	return f.signupErr
}

func (f *fakeAPI) Signin(ctx context.Context, email, password string) error {
	f.signinArgs = []string{email, password}
	if f.signinErr != nil {
		return f.signinErr
	}
	f.token = "tok"
	return nil
}

func (f *fakeAPI) Signout()              { f.token = "" }
func (f *fakeAPI) Token() string         { return f.token }
func (f *fakeAPI) SetToken(token string) { f.token = token }

func (f *fakeAPI) SubmitReading(ctx context.Context, r api.ReadingPayload) error {
	if len(f.submitErrs) > 0 {
		err := f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
		if err != nil {
			return err
		}
		f.submitted = append(f.submitted, r)
		return nil
	}
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, r)
	return nil
}

func (f *fakeAPI) Readings(ctx context.Context) ([]models.Reading, error) {
	return f.readings, f.listErr
}

func (f *fakeAPI) Series(ctx context.Context, view string) (*series.Series, error) {
	f.seriesView = view
	return f.series, f.seriesErr
}

func (f *fakeAPI) Export(ctx context.Context, view string) (*api.ExportLink, error) {
	return f.link, f.exportErr
}

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// newTestApp builds an App reading input from in. Password prompts read
// plain lines since stdin is not a terminal.
func newTestApp(t *testing.T, f *fakeAPI, in string) (*App, *bytes.Buffer) {
	t.Helper()

	origTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = origTerm })

	dir := t.TempDir()
	store, err := localdb.Open(context.Background(), filepath.Join(dir, "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	out := &bytes.Buffer{}
	return &App{
		config: &config.Config{ServerURL: "http://test", RequestTimeout: time.Second, ExportDir: filepath.Join(dir, "exports")},
		api:    f,
		reader: bufio.NewReader(strings.NewReader(in)),
		out:    out,
		meta:   store.Metadata,
		outbox: store.Outbox,
		rng:    rand.New(rand.NewSource(1)),
		now:    func() time.Time { return fixedNow },
	}, out
}
