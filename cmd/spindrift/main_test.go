package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestNewThenBuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-site")

	out, err := execute(t, "new", dir, "--author", "Ada")
	require.NoError(t, err)
	assert.Contains(t, out, "Creating new spindrift project")
	assert.FileExists(t, filepath.Join(dir, "spindrift.yaml"))

	public := filepath.Join(dir, "public")
	out, err = execute(t, "-q",
		"-c", filepath.Join(dir, "spindrift.yaml"),
		"-s", filepath.Join(dir, "droplets"),
		"-o", public,
		"-t", filepath.Join(dir, "templates"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Build summary")
	assert.FileExists(t, filepath.Join(public, "index.html"))
	assert.FileExists(t, filepath.Join(public, "hello-spindrift.html"))
	assert.FileExists(t, filepath.Join(public, "tags", "welcome.html"))
	assert.FileExists(t, filepath.Join(public, "feed.xml"))
}

func TestBuildRequiresFlags(t *testing.T) {
	_, err := execute(t, "-s", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}

func TestBuildMissingConfig(t *testing.T) {
	_, err := execute(t, "-q",
		"-c", filepath.Join(t.TempDir(), "absent.yaml"),
		"-s", t.TempDir(),
		"-o", t.TempDir(),
	)
	require.Error(t, err)
}

func TestBuildMissingTemplates(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "spindrift.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("project_name: P\nbase_path: /\n"), 0o644))

	_, err := execute(t, "-q", "-c", cfg, "-s", dir, "-o", t.TempDir(), "-t", filepath.Join(dir, "none"))
	require.Error(t, err)
}

func TestNewExistingDir(t *testing.T) {
	_, err := execute(t, "new", t.TempDir())
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "spindrift dev")
}
