// Package engine invokes the external image-processing engine that
// performs the actual whiteboard cleanup. The engine is ImageMagick:
// either the v7 "magick" binary or the legacy "convert" entry point,
// whichever is installed.
//
// Every invocation is bounded by a timeout and writes to a hidden
// temporary file next to the destination. The temporary file is
// validated as a decodable image and only then renamed into place, so
// the final output path never holds a partial or corrupt file.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/saraf/clean-whiteboard-images/pkg/imgcheck"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

// DefaultTimeout bounds a single engine invocation.
const DefaultTimeout = 300 * time.Second

// graceDelay is how long a signalled engine process gets to exit on its
// own before it is killed.
const graceDelay = 5 * time.Second

// stderrTail caps how much engine stderr is carried into error values.
const stderrTail = 2048

// runFunc executes the engine binary and returns its stdout and stderr.
// Tests swap it for deterministic fakes.
type runFunc func(ctx context.Context, bin string, args []string) (stdout, stderr []byte, err error)

// lookPath is swapped in tests to control binary resolution.
var lookPath = exec.LookPath

// Engine transforms a single image. Implementations must be safe for
// concurrent use: the worker pool calls Transform from multiple
// goroutines.
type Engine interface {
	// Transform reads input, applies the cleanup chain and writes the
	// result to output. On any failure output is left untouched.
	Transform(ctx context.Context, input, output string) error
}

// Options configures a Magick engine.
type Options struct {
	// Binary overrides engine resolution with an explicit executable.
	Binary string

	// Mode selects the color or grayscale transform chain.
	Mode ColorMode

	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Magick runs the ImageMagick command line tool.
type Magick struct {
	binary  string
	mode    ColorMode
	timeout time.Duration
	fs      afero.Fs
	log     logger.Logger
	run     runFunc
}

var _ Engine = (*Magick)(nil)

// ResolveBinary picks the engine executable: the explicit override when
// given, otherwise the first of "magick" and "convert" found on PATH.
func ResolveBinary(override string) (string, error) {
	if override != "" {
		path, err := lookPath(override)
		if err != nil {
			return "", fmt.Errorf("%w: %s is not executable", ErrEngineNotFound, override)
		}
		return path, nil
	}

	for _, name := range []string{"magick", "convert"} {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: neither magick nor convert is on PATH", ErrEngineNotFound)
}

// NewMagick resolves the engine binary and returns an engine bound to
// it. It fails with ErrEngineNotFound when no usable binary exists, so
// callers can refuse to start a run.
func NewMagick(opts Options, fs afero.Fs, log logger.Logger) (*Magick, error) {
	binary, err := ResolveBinary(opts.Binary)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Magick{
		binary:  binary,
		mode:    opts.Mode,
		timeout: timeout,
		fs:      fs,
		log:     log,
		run:     execRun,
	}, nil
}

// Binary returns the resolved engine executable path.
func (m *Magick) Binary() string {
	return m.binary
}

// Mode returns the transform variant the engine was built with.
func (m *Magick) Mode() ColorMode {
	return m.mode
}

// Transform implements Engine.
func (m *Magick) Transform(ctx context.Context, input, output string) error {
	tmp := tmpPath(output)

	argv := make([]string, 0, len(m.mode.Args())+2)
	argv = append(argv, input)
	argv = append(argv, m.mode.Args()...)
	argv = append(argv, tmp)

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.log.WithFields(logger.Fields{
		"input":  input,
		"output": output,
		"mode":   m.mode.String(),
	}).Debug("Invoking engine")

	start := time.Now()
	_, stderr, err := m.run(ctx, m.binary, argv)
	if err != nil {
		m.discard(tmp)
		if cause := ctx.Err(); cause != nil {
			if errors.Is(cause, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s after %s", ErrTimeout, input, m.timeout)
			}
			return fmt.Errorf("engine invocation cancelled: %w", cause)
		}
		return &EngineError{Input: input, Stderr: tail(stderr), Err: err}
	}

	if _, _, err := imgcheck.Validate(m.fs, tmp); err != nil {
		m.discard(tmp)
		return &EngineError{
			Input:  input,
			Stderr: tail(stderr),
			Err:    fmt.Errorf("engine produced unusable output: %w", err),
		}
	}

	// Move into place only after validation so the destination never
	// holds a partial file.
	if exists, _ := afero.Exists(m.fs, output); exists {
		if err := m.fs.Remove(output); err != nil {
			m.discard(tmp)
			return fmt.Errorf("replace %s: %w", output, err)
		}
	}
	if err := m.fs.Rename(tmp, output); err != nil {
		m.discard(tmp)
		return fmt.Errorf("move engine output into place: %w", err)
	}

	m.log.WithFields(logger.Fields{
		"input":    input,
		"output":   output,
		"duration": time.Since(start).String(),
	}).Debug("Engine invocation complete")

	return nil
}

// Version asks the engine to identify itself and returns the first line
// of its report.
func (m *Magick) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stdout, _, err := m.run(ctx, m.binary, []string{"-version"})
	if err != nil {
		return "", fmt.Errorf("engine version probe: %w", err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(stdout)), "\n")
	return strings.TrimSpace(line), nil
}

// discard removes a temporary output, logging anything unexpected.
func (m *Magick) discard(tmp string) {
	if err := m.fs.Remove(tmp); err != nil && !os.IsNotExist(err) {
		m.log.WithFields(logger.Fields{
			"path":  tmp,
			"error": err.Error(),
		}).Warn("Failed to remove temporary engine output")
	}
}

// tmpPath builds a hidden sibling of output. The name keeps the final
// extension so the engine picks the right codec, and the leading dot
// keeps leftovers of interrupted runs out of later discovery passes.
func tmpPath(output string) string {
	dir := filepath.Dir(output)
	base := filepath.Base(output)
	return filepath.Join(dir, fmt.Sprintf(".wbclean-%s-%s", uuid.NewString()[:8], base))
}

// tail returns the trailing portion of engine diagnostics, trimmed to a
// size that is safe to embed in errors and logs.
func tail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > stderrTail {
		s = "..." + s[len(s)-stderrTail:]
	}
	return s
}

// execRun is the production runner. It captures both output streams and
// asks a timed-out process to terminate before killing it.
func execRun(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = graceDelay

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
