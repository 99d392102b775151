package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/saraf/clean-whiteboard-images/pkg/batch"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

func summaryFixture() *batch.Summary {
	return &batch.Summary{
		RunID: "0a1b2c3d-4e5f-6789-abcd-ef0123456789",
		Root:  "/photos/whiteboards",
		Stats: batch.Stats{
			Discovered:  12,
			Processed:   9,
			Skipped:     2,
			Errors:      1,
			Timeouts:    1,
			InputBytes:  4 * 1024 * 1024,
			OutputBytes: 1100000,
			Duration:    8300 * time.Millisecond,
		},
		Failures: []batch.Failure{
			{Path: "/photos/whiteboards/bad.jpg", Reason: "engine invocation timed out"},
		},
		Warnings: []batch.Warning{
			{Path: "/photos/whiteboards/readme.txt", Reason: "unsupported file format"},
		},
	}
}

func TestRenderer(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		summary *batch.Summary
		verify  func(*testing.T, string)
		wantErr bool
	}{
		{
			name:    "text format",
			config:  Config{Format: FormatText, Engine: "ImageMagick 7.1.1-29"},
			summary: summaryFixture(),
			verify: func(t *testing.T, output string) {
				assert.Contains(t, output, "Cleanup summary (run 0a1b2c3d)")
				assert.Contains(t, output, "Root:       /photos/whiteboards")
				assert.Contains(t, output, "Engine:     ImageMagick 7.1.1-29")
				assert.Contains(t, output, "Discovered: 12")
				assert.Contains(t, output, "Processed:  9")
				assert.Contains(t, output, "Skipped:    2")
				assert.Contains(t, output, "Errors:     1 (1 timed out)")
				assert.Contains(t, output, "Duration:   8.3s")

				assert.Contains(t, output, "Failures:")
				assert.Contains(t, output, "/photos/whiteboards/bad.jpg")
				assert.Contains(t, output, "engine invocation timed out")

				assert.Contains(t, output, "Warnings:")
				assert.Contains(t, output, "/photos/whiteboards/readme.txt: unsupported file format")

				assert.NotContains(t, output, "Run was interrupted")
			},
		},
		{
			name:   "text format reports byte totals",
			config: Config{Format: FormatText},
			summary: &batch.Summary{
				RunID: "feedbeef",
				Root:  "/in",
				Stats: batch.Stats{Discovered: 1, Processed: 1, InputBytes: 4194304, OutputBytes: 1100000},
			},
			verify: func(t *testing.T, output string) {
				assert.Contains(t, output, "4.2 MB in")
				assert.Contains(t, output, "1.1 MB out")
			},
		},
		{
			name:   "text format flags interruption",
			config: Config{Format: FormatText},
			summary: func() *batch.Summary {
				s := summaryFixture()
				s.Interrupted = true
				s.Stats.Interrupted = 3
				s.Stats.Errors = 4
				return s
			}(),
			verify: func(t *testing.T, output string) {
				assert.Contains(t, output, "Errors:     4 (1 timed out, 3 interrupted)")
				assert.Contains(t, output, "Run was interrupted; remaining files were not processed.")
			},
		},
		{
			name:   "text format labels dry runs",
			config: Config{Format: FormatText},
			summary: func() *batch.Summary {
				s := summaryFixture()
				s.DryRun = true
				return s
			}(),
			verify: func(t *testing.T, output string) {
				assert.Contains(t, output, "Cleanup summary (run 0a1b2c3d) [dry run]")
			},
		},
		{
			name:    "empty format defaults to text",
			config:  Config{},
			summary: summaryFixture(),
			verify: func(t *testing.T, output string) {
				assert.Contains(t, output, "Cleanup summary")
			},
		},
		{
			name:    "json format round trips",
			config:  Config{Format: FormatJSON, Engine: "ImageMagick 7.1.1-29"},
			summary: summaryFixture(),
			verify: func(t *testing.T, output string) {
				var doc document
				require.NoError(t, json.Unmarshal([]byte(output), &doc))

				assert.False(t, doc.Generated.IsZero())
				assert.Equal(t, "ImageMagick 7.1.1-29", doc.Engine)
				require.NotNil(t, doc.Summary)
				assert.Equal(t, 9, doc.Summary.Stats.Processed)
				require.Len(t, doc.Summary.Failures, 1)
				assert.Equal(t, "/photos/whiteboards/bad.jpg", doc.Summary.Failures[0].Path)
			},
		},
		{
			name:    "yaml format round trips",
			config:  Config{Format: FormatYAML},
			summary: summaryFixture(),
			verify: func(t *testing.T, output string) {
				var doc document
				require.NoError(t, yaml.Unmarshal([]byte(output), &doc))

				require.NotNil(t, doc.Summary)
				assert.Equal(t, 12, doc.Summary.Stats.Discovered)
				assert.Equal(t, 2, doc.Summary.Stats.Skipped)
				require.Len(t, doc.Summary.Warnings, 1)
			},
		},
		{
			name:    "unsupported format",
			config:  Config{Format: Format("xml")},
			summary: summaryFixture(),
			wantErr: true,
		},
		{
			name:    "nil summary",
			config:  Config{Format: FormatText},
			summary: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(tt.config, logger.NewNop())

			output, err := r.Render(tt.summary)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.verify(t, output)
		})
	}
}

func TestRenderTextColored(t *testing.T) {
	// The color package suppresses escape codes off-terminal; force them
	// on for this test.
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })

	r := NewRenderer(Config{Format: FormatText, WithColor: true}, logger.NewNop())
	output, err := r.Render(summaryFixture())
	require.NoError(t, err)

	assert.Contains(t, output, "\x1b[")
}

func TestRenderTextWithoutFailures(t *testing.T) {
	summary := summaryFixture()
	summary.Failures = nil
	summary.Warnings = nil

	r := NewRenderer(Config{Format: FormatText}, logger.NewNop())
	output, err := r.Render(summary)
	require.NoError(t, err)

	assert.NotContains(t, output, "Failures:")
	assert.NotContains(t, output, "Warnings:")
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name  string
		stats batch.Stats
		want  string
	}{
		{
			name: "no detail for plain failures",
			want: "",
		},
		{
			name:  "timeouts only",
			stats: batch.Stats{Timeouts: 2},
			want:  "2 timed out",
		},
		{
			name:  "timeouts and interruptions",
			stats: batch.Stats{Timeouts: 2, Interrupted: 1},
			want:  "2 timed out, 1 interrupted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorDetail(tt.stats))
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0a1b2c3d", shortID("0a1b2c3d-4e5f-6789-abcd-ef0123456789"))
	assert.Equal(t, "short", shortID("short"))
}

func TestFailureTable(t *testing.T) {
	out := failureTable([]batch.Failure{
		{Path: "/in/a.jpg", Reason: "boom"},
		{Path: "/in/b.jpg", Reason: "bang"},
	})

	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "REASON")
	assert.Contains(t, out, "/in/a.jpg")
	assert.Contains(t, out, "bang")
	assert.Equal(t, 6, len(strings.Split(out, "\n")))
}
