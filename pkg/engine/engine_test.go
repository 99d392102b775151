package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saraf/clean-whiteboard-images/pkg/imgcheck"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// withLookPath swaps binary resolution so only the given names resolve.
func withLookPath(t *testing.T, names ...string) {
	t.Helper()

	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}

	orig := lookPath
	lookPath = func(name string) (string, error) {
		if known[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
	t.Cleanup(func() { lookPath = orig })
}

func newTestEngine(t *testing.T, fs afero.Fs, opts Options, run runFunc) *Magick {
	t.Helper()

	withLookPath(t, "magick", "convert")
	m, err := NewMagick(opts, fs, logger.NewNop())
	require.NoError(t, err)
	m.run = run
	return m
}

func dirNames(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()

	infos, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names
}

func TestColorModeArgs(t *testing.T) {
	tests := []struct {
		name     string
		mode     ColorMode
		contains []string
		excludes []string
	}{
		{
			name:     "color keeps RGB channels",
			mode:     ModeColor,
			contains: []string{"-channel", "RGB"},
			excludes: []string{"-colorspace"},
		},
		{
			name:     "grayscale collapses colorspace",
			mode:     ModeGray,
			contains: []string{"-colorspace", "Gray"},
			excludes: []string{"-channel"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.mode.Args()

			assert.Equal(t, "-morphology", args[0])
			assert.Equal(t, "60%,91%,0.1", args[len(args)-1])
			for _, want := range tt.contains {
				assert.Contains(t, args, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, args, unwanted)
			}
		})
	}
}

func TestColorModeString(t *testing.T) {
	assert.Equal(t, "color", ModeColor.String())
	assert.Equal(t, "grayscale", ModeGray.String())
}

func TestResolveBinary(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		override  string
		want      string
		wantErr   bool
	}{
		{
			name:      "prefers magick when both exist",
			installed: []string{"magick", "convert"},
			want:      "/usr/bin/magick",
		},
		{
			name:      "falls back to convert",
			installed: []string{"convert"},
			want:      "/usr/bin/convert",
		},
		{
			name:      "override wins over resolution order",
			installed: []string{"magick", "gm"},
			override:  "gm",
			want:      "/usr/bin/gm",
		},
		{
			name:      "missing override is fatal even when magick exists",
			installed: []string{"magick"},
			override:  "magick8",
			wantErr:   true,
		},
		{
			name:    "nothing installed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLookPath(t, tt.installed...)

			got, err := ResolveBinary(tt.override)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrEngineNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransform(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/board.jpg", []byte("raw"), 0644))

	valid := pngBytes(t)
	var gotBin string
	var gotArgs []string
	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		gotBin = bin
		gotArgs = args
		return nil, nil, afero.WriteFile(fs, args[len(args)-1], valid, 0644)
	}

	m := newTestEngine(t, fs, Options{Mode: ModeColor}, run)
	require.NoError(t, m.Transform(context.Background(), "/in/board.jpg", "/in/board_cleaned.jpg"))

	assert.Equal(t, "/usr/bin/magick", gotBin)
	require.GreaterOrEqual(t, len(gotArgs), 3)
	assert.Equal(t, "/in/board.jpg", gotArgs[0])
	assert.Equal(t, ModeColor.Args(), gotArgs[1:len(gotArgs)-1])

	tmp := gotArgs[len(gotArgs)-1]
	assert.True(t, strings.HasPrefix(filepath.Base(tmp), ".wbclean-"))
	assert.Equal(t, ".jpg", filepath.Ext(tmp))

	data, err := afero.ReadFile(fs, "/in/board_cleaned.jpg")
	require.NoError(t, err)
	assert.Equal(t, valid, data)

	// The temporary file was renamed away, not copied.
	assert.ElementsMatch(t, []string{"board.jpg", "board_cleaned.jpg"}, dirNames(t, fs, "/in"))
}

func TestTransformEngineFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/board.jpg", []byte("raw"), 0644))

	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		return nil, []byte("magick: improper image header\n"), errors.New("exit status 1")
	}

	m := newTestEngine(t, fs, Options{}, run)
	err := m.Transform(context.Background(), "/in/board.jpg", "/in/board_cleaned.jpg")
	require.Error(t, err)

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "/in/board.jpg", engErr.Input)
	assert.Contains(t, engErr.Stderr, "improper image header")

	assert.ElementsMatch(t, []string{"board.jpg"}, dirNames(t, fs, "/in"))
}

func TestTransformTimeout(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/board.jpg", []byte("raw"), 0644))

	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	m := newTestEngine(t, fs, Options{Timeout: 50 * time.Millisecond}, run)

	start := time.Now()
	err := m.Transform(context.Background(), "/in/board.jpg", "/in/board_cleaned.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)

	exists, _ := afero.Exists(fs, "/in/board_cleaned.jpg")
	assert.False(t, exists)
}

func TestTransformCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/board.jpg", []byte("raw"), 0644))

	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestEngine(t, fs, Options{Timeout: time.Minute}, run)
	err := m.Transform(ctx, "/in/board.jpg", "/in/board_cleaned.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestTransformUndecodableOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/board.jpg", []byte("raw"), 0644))

	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		return nil, nil, afero.WriteFile(fs, args[len(args)-1], []byte("not an image"), 0644)
	}

	m := newTestEngine(t, fs, Options{}, run)
	err := m.Transform(context.Background(), "/in/board.jpg", "/in/board_cleaned.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, imgcheck.ErrUndecodable)

	// The unusable temporary file was cleaned up.
	assert.ElementsMatch(t, []string{"board.jpg"}, dirNames(t, fs, "/in"))
}

func TestTransformMissingOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/board.jpg", []byte("raw"), 0644))

	// Exits zero without writing anything.
	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		return nil, nil, nil
	}

	m := newTestEngine(t, fs, Options{}, run)
	err := m.Transform(context.Background(), "/in/board.jpg", "/in/board_cleaned.jpg")
	require.Error(t, err)

	exists, _ := afero.Exists(fs, "/in/board_cleaned.jpg")
	assert.False(t, exists)
}

func TestTransformReplacesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/board.jpg", []byte("raw"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/board_cleaned.jpg", []byte("stale"), 0644))

	valid := pngBytes(t)
	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		return nil, nil, afero.WriteFile(fs, args[len(args)-1], valid, 0644)
	}

	m := newTestEngine(t, fs, Options{}, run)
	require.NoError(t, m.Transform(context.Background(), "/in/board.jpg", "/in/board_cleaned.jpg"))

	data, err := afero.ReadFile(fs, "/in/board_cleaned.jpg")
	require.NoError(t, err)
	assert.Equal(t, valid, data)
}

func TestVersion(t *testing.T) {
	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		require.Equal(t, []string{"-version"}, args)
		out := "Version: ImageMagick 7.1.1-29 Q16-HDRI x86_64\nCopyright: (C) 1999 ImageMagick Studio LLC\n"
		return []byte(out), nil, nil
	}

	fs := afero.NewMemMapFs()
	m := newTestEngine(t, fs, Options{}, run)

	got, err := m.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Version: ImageMagick 7.1.1-29 Q16-HDRI x86_64", got)
}

func TestVersionProbeFailure(t *testing.T) {
	run := func(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
		return nil, nil, errors.New("exit status 127")
	}

	fs := afero.NewMemMapFs()
	m := newTestEngine(t, fs, Options{}, run)

	_, err := m.Version(context.Background())
	require.Error(t, err)
}

func TestEngineErrorFormatting(t *testing.T) {
	base := errors.New("exit status 1")

	withStderr := &EngineError{Input: "/in/a.jpg", Stderr: "boom", Err: base}
	assert.Contains(t, withStderr.Error(), "/in/a.jpg")
	assert.Contains(t, withStderr.Error(), "boom")
	assert.ErrorIs(t, withStderr, base)

	bare := &EngineError{Input: "/in/a.jpg", Err: base}
	assert.Equal(t, fmt.Sprintf("engine failed on /in/a.jpg: %v", base), bare.Error())
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail([]byte("  short \n")))

	long := strings.Repeat("x", stderrTail+100)
	got := tail([]byte(long))
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.Len(t, got, stderrTail+3)
}
