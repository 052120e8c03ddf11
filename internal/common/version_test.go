package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVersionFrom_FillsDefaultsOnly(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() {
		Version, Build, GitCommit = origVersion, origBuild, origCommit
	})

	Version, Build, GitCommit = "dev", "unknown", "abc1234"

	path := filepath.Join(t.TempDir(), ".version")
	require.NoError(t, os.WriteFile(path, []byte("# build info\nversion: 1.4.0\nbuild: 2026-10-01T10:00:00Z\ncommit: fff0000\nnonsense\n"), 0o644))

	loadVersionFrom(path)

	got := CurrentVersion()
	assert.Equal(t, VersionInfo{Version: "1.4.0", Build: "2026-10-01T10:00:00Z", Commit: "abc1234"}, got, "ldflags commit must win")
	assert.Equal(t, "1.4.0 (build: 2026-10-01T10:00:00Z, commit: abc1234)", got.String())
}

func TestLoadVersionFrom_MissingFile(t *testing.T) {
	origVersion := Version
	t.Cleanup(func() { Version = origVersion })
	Version = "dev"

	loadVersionFrom(filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, "dev", CurrentVersion().Version)
}
