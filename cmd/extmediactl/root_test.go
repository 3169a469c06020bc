package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"extmedia/internal/auth"
	"extmedia/internal/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "cli.db"))
	t.Setenv("SITE_ROOT", dir)
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "extmedia")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("IMAGE_SIZES_FILE", "")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "token", "--subject", "ops", "--role", "editor", "--cap", "manage_options", "--ttl", "5m")
	require.NoError(t, err)

	claims, err := auth.NewTokenManager("cli-secret", "extmedia", time.Minute).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.True(t, claims.Can(auth.CapManageOptions))
}

func TestImportCmd(t *testing.T) {
	dir := setupEnv(t)
	snapshot := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snapshot, []byte(`[{"id":"A1","urls":{"full":"http://x/a.jpg"}}]`), 0o644))

	out, err := run(t, "", "import", snapshot)
	require.NoError(t, err)
	var result media.SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"A1"}, result.Created)

	out, err = run(t, `[]`, "import", "-")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"A1"}, result.Deleted)

	_, err = run(t, `{"id":"A1"}`, "import", "-")
	assert.ErrorIs(t, err, media.ErrInvalidSnapshot)
}

func TestSizesCmd(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "sizes")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, out, "thumbnail")

	out, err = run(t, "", "sizes", "-o", "yaml")
	require.NoError(t, err)
	var doc struct {
		Sizes map[string]struct {
			Width int `yaml:"width"`
		} `yaml:"sizes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2048, doc.Sizes["2048x2048"].Width)

	_, err = run(t, "", "sizes", "-o", "xml")
	assert.Error(t, err)
}
