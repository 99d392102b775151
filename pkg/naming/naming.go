// Package naming derives output paths from input paths and decides
// skip-vs-overwrite for existing outputs.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Options contains naming configuration
type Options struct {
	// OutputDir redirects outputs away from each input's directory.
	// Empty writes next to the input.
	OutputDir string

	// Suffix is inserted between the filename stem and its extension
	Suffix string

	// LowercaseExt lowercases the output extension
	LowercaseExt bool
}

// Resolver defines the naming policy operations
type Resolver interface {
	// Resolve returns the output path for input. When an output
	// directory is configured, the input's position relative to root
	// is mirrored beneath it so distinct inputs can never share an
	// output path.
	Resolve(root, input string) (string, error)

	// ShouldSkip reports whether output already exists and force is
	// not set
	ShouldSkip(output string, force bool) bool

	// EnsureDir creates the output's parent directory, including
	// missing parents
	EnsureDir(output string) error
}

type resolver struct {
	opts Options
	fs   afero.Fs
}

func NewResolver(opts Options, fs afero.Fs) Resolver {
	return &resolver{opts: opts, fs: fs}
}

func (r *resolver) Resolve(root, input string) (string, error) {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if r.opts.LowercaseExt {
		ext = strings.ToLower(ext)
	}

	name := stem + r.opts.Suffix + ext

	if r.opts.OutputDir == "" {
		return filepath.Join(filepath.Dir(input), name), nil
	}

	rel, err := filepath.Rel(root, filepath.Dir(input))
	if err != nil {
		return "", fmt.Errorf("resolve output for %s: %w", input, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("resolve output for %s: input escapes root %s", input, root)
	}

	return filepath.Join(r.opts.OutputDir, rel, name), nil
}

func (r *resolver) ShouldSkip(output string, force bool) bool {
	if force {
		return false
	}
	exists, err := afero.Exists(r.fs, output)
	return err == nil && exists
}

func (r *resolver) EnsureDir(output string) error {
	dir := filepath.Dir(output)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}
