// Package imgcheck validates that a file holds a decodable image.
// The jpeg, png, gif, tiff and bmp decoders are registered, matching
// the supported input set.
package imgcheck

import (
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/spf13/afero"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrUndecodable reports a file that no registered decoder accepts.
var ErrUndecodable = errors.New("not a decodable image")

// Validate checks that path holds a non-empty, decodable image and
// returns its pixel dimensions. Only the header is decoded.
func Validate(fs afero.Fs, path string) (width, height int, err error) {
	info, err := fs.Stat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return 0, 0, fmt.Errorf("%w: %s is empty", ErrUndecodable, path)
	}

	f, err := fs.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrUndecodable, path, err)
	}

	return cfg.Width, cfg.Height, nil
}
