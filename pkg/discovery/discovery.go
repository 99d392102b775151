/*
Package discovery builds the work list for a cleanup run. It walks the input
path (a single file or a directory, optionally recursive), keeps files whose
extension is in the supported image set, and separates out files that already
carry the cleaned-output suffix so they are never dispatched again.

The work list is sorted lexicographically by full path, giving every run a
deterministic, reproducible order.

Basic usage:

	d := discovery.NewDiscoverer(discovery.Options{
		Suffix:    "_cleaned",
		Recursive: true,
	}, fs, log)

	scan, err := d.Discover(ctx, "/photos/whiteboards")
*/
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

// supportedExtensions is the image set the engine accepts, lowercased.
var supportedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".tiff": {},
	".tif":  {},
	".bmp":  {},
	".gif":  {},
}

// IsSupported reports whether the file's extension is in the supported
// image set. Matching is case-insensitive.
func IsSupported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsCleaned reports whether the file's stem already ends with suffix,
// marking it as the output of a previous run.
func IsCleaned(path, suffix string) bool {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(stem, suffix)
}

// Discoverer defines the interface for work-list discovery
type Discoverer interface {
	// Discover classifies every file under root. A missing root is
	// fatal and reported as ErrNotFound.
	Discover(ctx context.Context, root string) (Scan, error)
}

// discoverer implements the Discoverer interface
type discoverer struct {
	opts  Options
	fs    afero.Fs
	log   logger.Logger
	prune map[string]struct{}
}

func NewDiscoverer(opts Options, fs afero.Fs, log logger.Logger) Discoverer {
	prune := make(map[string]struct{}, len(opts.PruneDirs))
	for _, dir := range opts.PruneDirs {
		prune[filepath.Clean(dir)] = struct{}{}
	}

	return &discoverer{
		opts:  opts,
		fs:    fs,
		log:   log,
		prune: prune,
	}
}

// Discover performs the work-list discovery
func (d *discoverer) Discover(ctx context.Context, root string) (Scan, error) {
	info, err := d.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return Scan{}, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return Scan{}, fmt.Errorf("stat input path %s: %w", root, err)
	}

	d.log.WithFields(logger.Fields{
		"path":      root,
		"recursive": d.opts.Recursive,
		"suffix":    d.opts.Suffix,
	}).Debug("Starting discovery")

	var scan Scan

	if !info.IsDir() {
		scan.Root = filepath.Dir(root)
		d.classifySingle(root, &scan)
		return scan, nil
	}

	scan.Root = root
	if err := d.scanDir(ctx, root, &scan); err != nil {
		return scan, err
	}

	sort.Strings(scan.Items)
	sort.Strings(scan.AlreadyCleaned)

	d.log.WithFields(logger.Fields{
		"items":           len(scan.Items),
		"already_cleaned": len(scan.AlreadyCleaned),
		"warnings":        len(scan.Warnings),
	}).Debug("Discovery completed")

	return scan, nil
}

// classifySingle handles a root that is a file rather than a directory.
// Unlike files met during a walk, an explicitly named file that cannot
// be processed is worth a warning.
func (d *discoverer) classifySingle(path string, scan *Scan) {
	if !IsSupported(path) {
		d.log.WithFields(logger.Fields{
			"path": path,
		}).Warn("Input file has an unsupported format")
		scan.Warnings = append(scan.Warnings, Warning{Path: path, Err: ErrUnsupported})
		return
	}
	if IsCleaned(path, d.opts.Suffix) {
		scan.AlreadyCleaned = append(scan.AlreadyCleaned, path)
		return
	}
	scan.Items = append(scan.Items, path)
}

// scanDir recursively classifies a directory's entries
func (d *discoverer) scanDir(ctx context.Context, dir string, scan *Scan) error {
	entries, err := afero.ReadDir(d.fs, dir)
	if err != nil {
		d.log.WithFields(logger.Fields{
			"error": err.Error(),
			"path":  dir,
		}).Warn("Failed to read directory")
		scan.Warnings = append(scan.Warnings, Warning{Path: dir, Err: err})
		return nil
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
		}

		name := entry.Name()
		entryPath := filepath.Join(dir, name)

		// Hidden entries are never discovered. This also keeps the
		// engine's dot-prefixed temporary files out of later runs.
		if strings.HasPrefix(name, ".") {
			continue
		}

		if entry.IsDir() {
			if !d.opts.Recursive {
				continue
			}
			if _, pruned := d.prune[filepath.Clean(entryPath)]; pruned {
				d.log.WithFields(logger.Fields{
					"path": entryPath,
				}).Debug("Pruning directory from walk")
				continue
			}
			if err := d.scanDir(ctx, entryPath, scan); err != nil {
				return err
			}
			continue
		}

		// Symlinks are not followed
		if entry.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if !IsSupported(entryPath) {
			continue
		}
		if IsCleaned(entryPath, d.opts.Suffix) {
			scan.AlreadyCleaned = append(scan.AlreadyCleaned, entryPath)
			continue
		}
		scan.Items = append(scan.Items, entryPath)
	}

	return nil
}
