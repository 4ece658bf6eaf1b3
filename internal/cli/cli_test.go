package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap/internal/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "rowmapctl", cmd.Use)
	for _, name := range []string{"ddl", "demo", "gen"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestDDL(t *testing.T) {
	out, _, err := execute(t, "ddl", "--dialect", "postgres", "--driver", "postgres", "--dsn", "postgres://localhost/none")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE users (id bigserial NOT NULL,")
	assert.Contains(t, out, "address_zip_code varchar(16)")
	assert.Contains(t, out, "ALTER TABLE posts ADD PRIMARY KEY (id);")

	out, _, err = execute(t, "ddl")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE users (")
	assert.Contains(t, out, "CREATE TABLE posts (")
	assert.NotContains(t, out, "ALTER TABLE")
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "ddl", "--dialect", "db2")
	require.ErrorContains(t, err, `unknown dialect "db2"`)

	path := filepath.Join(t.TempDir(), "rowmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dsn: ''\n"), 0o644))
	_, _, err = execute(t, "ddl", "--config", path)
	require.ErrorContains(t, err, "empty dsn")
}

func TestDemo(t *testing.T) {
	out, _, err := execute(t, "demo", "--dsn", ":memory:")
	require.NoError(t, err)
	assert.Contains(t, out, "posts with at least 100 views:")
	assert.Contains(t, out, "Kernels")
	assert.Contains(t, out, "by Linus")
	assert.NotContains(t, out, "Untitled")
	assert.Contains(t, out, "2 post(s)")
	assert.Contains(t, out, "total views: 1798")
	assert.Contains(t, out, "statements: queries=")
}

func TestDemoDebug(t *testing.T) {
	t.Setenv(config.EnvDebug, "true")
	out, logs, err := execute(t, "demo", "-v", "--dsn", ":memory:", "--min-views", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "by nobody")
	assert.Contains(t, logs, "config loaded")
	assert.Contains(t, logs, "msg=exec")
	assert.Contains(t, logs, `msg="begin transaction"`)
}

func TestApply(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "apply.db")
	out, _, err := execute(t, "ddl", "--apply", "--dsn", dsn)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestGen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	out, _, err := execute(t, "gen", "-o", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "user.go")+"\n"+filepath.Join(dir, "post.go")+"\n", out)

	src, err := os.ReadFile(filepath.Join(dir, "post.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package model")
	assert.Contains(t, string(src), `PostAuthorID`)
	assert.Contains(t, string(src), `"author_id"`)

	_, _, err = execute(t, "gen", "-o", dir, "--package", "no-pkg")
	require.ErrorContains(t, err, "package must be a Go identifier")
}
