package gen

import (
	"go/token"
	"path/filepath"
	"runtime"
)

// DefaultHeader is the header comment of generated files.
const DefaultHeader = "Code generated by rowmapctl. DO NOT EDIT."

// Config configures code generation.
type Config struct {
	// Target is the output directory.
	Target string
	// Package is the package name of the generated files. It defaults to
	// the base name of Target.
	Package string
	// Header is the comment written at the top of each file.
	Header string
	// Workers bounds the number of files written in parallel.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithPackage sets the package name of the generated files.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(pkg) {
			return NewConfigError("Package", pkg, "package must be a Go identifier")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of parallel writers. Values below 1 are
// ignored.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n > 0 {
			c.Workers = n
		}
		return nil
	}
}

// NewConfig applies opts to the default configuration and checks the
// result.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{Header: DefaultHeader, Workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Target == "" {
		return nil, NewConfigError("Target", nil, "missing target directory")
	}
	if c.Package == "" {
		c.Package = filepath.Base(c.Target)
		if !token.IsIdentifier(c.Package) {
			return nil, NewConfigError("Package", c.Package, "target base name is not a package name, set one")
		}
	}
	return c, nil
}
