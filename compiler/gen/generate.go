package gen

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/rowmap/schema"
)

// Generator writes one constants file per descriptor of a registry.
type Generator struct {
	reg *schema.Registry
	cfg *Config
}

// New returns a generator for the descriptors of reg.
func New(reg *schema.Registry, opts ...Option) (*Generator, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{reg: reg, cfg: cfg}, nil
}

// Config returns the configuration of g.
func (g *Generator) Config() *Config { return g.cfg }

// FileName returns the name of the file generated for d.
func FileName(d *schema.Descriptor) string {
	return strings.ToLower(d.Name()) + ".go"
}

// Generate writes the files of all descriptors into the target directory
// and returns their paths in registration order.
func (g *Generator) Generate(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(g.cfg.Target, 0o755); err != nil {
		return nil, NewConfigError("Target", g.cfg.Target, err.Error())
	}
	ds := g.reg.Descriptors()
	paths := make([]string, len(ds))
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.cfg.Workers)
	for i, d := range ds {
		paths[i] = filepath.Join(g.cfg.Target, FileName(d))
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writeFile(d, paths[i])
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (g *Generator) writeFile(d *schema.Descriptor, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return &GenerationError{Entity: d.Name(), File: path, Cause: err}
	}
	defer out.Close()
	if err := g.Render(d, out); err != nil {
		return &GenerationError{Entity: d.Name(), File: path, Cause: err}
	}
	return nil
}

// Render writes the formatted constants file of d to w.
func (g *Generator) Render(d *schema.Descriptor, w io.Writer) error {
	return g.File(d).Render(w)
}

// File builds the jennifer file of d.
func (g *Generator) File(d *schema.Descriptor) *jen.File {
	f := jen.NewFile(g.cfg.Package)
	if g.cfg.Header != "" {
		f.HeaderComment(g.cfg.Header)
	}
	name := d.Name()

	f.Commentf("%sTable is the table of %s.", name, name)
	f.Const().Id(name + "Table").Op("=").Lit(d.Table())
	f.Line()

	props := make([]jen.Code, 0, len(d.Fields()))
	cols := make([]jen.Code, 0, len(d.Fields()))
	list := make([]jen.Code, 0, len(d.Fields()))
	for _, fd := range d.Fields() {
		ident := Ident(fd.Name)
		props = append(props, jen.Id(name+ident).Op("=").Lit(fd.Name))
		cols = append(cols, jen.Id(name+"Column"+ident).Op("=").Lit(fd.Column))
		list = append(list, jen.Lit(fd.Column))
	}
	f.Commentf("Property paths of %s.", name)
	f.Const().Defs(props...)
	f.Line()
	f.Commentf("Columns of %s.", name)
	f.Const().Defs(cols...)
	f.Line()
	f.Commentf("%sColumns lists the columns of %s in declaration order.", name, name)
	f.Var().Id(name + "Columns").Op("=").Index().String().Values(list...)
	return f
}

// Ident turns a property path into the suffix of its constant:
// "Address.City" becomes "AddressCity".
func Ident(path string) string {
	return strings.ReplaceAll(path, ".", "")
}
