package gen_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap/compiler/gen"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
)

type Author struct {
	Name string
}

type Book struct {
	ID     int64
	Title  string
	Author *Author
}

type Tag struct {
	Code string
}

func registry() *schema.Registry {
	return schema.NewRegistry().MustRegister(
		schema.New[Book]("").
			PK("ID", field.Int64(), schema.AutoIncrement()).
			Field("Title", field.String()).
			Field("Author.Name", field.String()).
			MustBuild(),
		schema.New[Tag]("").PK("Code", field.StringSize(8)).MustBuild(),
	)
}

func TestRender(t *testing.T) {
	reg := registry()
	g, err := gen.New(reg, gen.WithTarget(t.TempDir()), gen.WithPackage("model"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Render(reg.MustLookup(&Book{}), &buf))
	golden := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	golden.Assert(t, "book", buf.Bytes())
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	g, err := gen.New(registry(), gen.WithTarget(dir), gen.WithWorkers(1))
	require.NoError(t, err)
	assert.Equal(t, "model", g.Config().Package)
	assert.Equal(t, gen.DefaultHeader, g.Config().Header)

	paths, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "book.go"), filepath.Join(dir, "tag.go")}, paths)

	src, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(src), "package model")
	assert.Contains(t, string(src), `const TagTable = "tags"`)
	assert.Contains(t, string(src), `TagCode = "Code"`)
	assert.Contains(t, string(src), `var TagColumns = []string{"code"}`)
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, err := gen.New(registry(), gen.WithTarget(filepath.Join(t.TempDir(), "model")))
	require.NoError(t, err)
	_, err = g.Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []gen.Option
	}{
		{"no target", nil},
		{"empty target", []gen.Option{gen.WithTarget("")}},
		{"bad package", []gen.Option{gen.WithTarget("out"), gen.WithPackage("not-a-pkg")}},
		{"keyword package", []gen.Option{gen.WithTarget("out"), gen.WithPackage("func")}},
		{"bad target name", []gen.Option{gen.WithTarget("gen-out")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.NewConfig(tt.opts...)
			require.Error(t, err)
			assert.True(t, gen.IsConfigError(err))
			assert.ErrorIs(t, err, gen.ErrMissingConfig)
		})
	}

	c, err := gen.NewConfig(gen.WithTarget("out/model"), gen.WithHeader(""), gen.WithWorkers(0))
	require.NoError(t, err)
	assert.Equal(t, "model", c.Package)
	assert.Empty(t, c.Header)
	assert.Positive(t, c.Workers)
}

func TestGenerationError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "model")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	g, err := gen.New(registry(), gen.WithTarget(filepath.Join(file, "sub")), gen.WithPackage("model"))
	require.NoError(t, err)
	_, err = g.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))

	err = &gen.GenerationError{Entity: "Book", File: "book.go", Cause: os.ErrPermission}
	assert.True(t, gen.IsGenerationError(err))
	assert.ErrorIs(t, err, gen.ErrGenerationFailed)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, "rowmap/gen: generation error for Book (file: book.go): permission denied", err.Error())
}

func TestIdent(t *testing.T) {
	assert.Equal(t, "AddressCity", gen.Ident("Address.City"))
	assert.Equal(t, "Name", gen.Ident("Name"))
	assert.Equal(t, "book.go", gen.FileName(registry().MustLookup(&Book{})))
}
