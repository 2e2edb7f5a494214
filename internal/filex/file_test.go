package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_RelativeToCWD(t *testing.T) {
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	defer chdir(t, tmp)()

	got, err := EnsureDir("exports")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "exports"), got)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	// idempotent
	_, err = EnsureDir("exports")
	require.NoError(t, err)
}

func TestEnsureDir_Absolute(t *testing.T) {
	want := filepath.Join(t.TempDir(), "a", "b")
	got, err := EnsureDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestEnsureDir_Error(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureDir(filepath.Join(blocker, "sub"))
	require.Error(t, err)
}

func TestWriteFileIn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteFileIn(dir, "exports/u/2024/day-1.csv", []byte("a,b\n"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "day-1.csv"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a,b\n", string(b))
}
