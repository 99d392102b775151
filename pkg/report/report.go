/*
Package report renders the final summary of a cleanup run as human
readable text, JSON, or YAML.

Basic usage:

	r := report.NewRenderer(report.Config{
		Format:    report.FormatText,
		WithColor: true,
	}, log)

	out, err := r.Render(summary)
*/
package report

import (
	"fmt"

	"github.com/saraf/clean-whiteboard-images/pkg/batch"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

// Format represents the report format type
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Config holds renderer configuration
type Config struct {
	Format    Format
	WithColor bool

	// Engine identifies the engine binary and version in the report
	Engine string
}

// Renderer defines the interface for summary rendering
type Renderer interface {
	Render(*batch.Summary) (string, error)
}

// renderer implements the Renderer interface
type renderer struct {
	config Config
	log    logger.Logger
}

// NewRenderer creates a new summary renderer
func NewRenderer(config Config, log logger.Logger) Renderer {
	return &renderer{
		config: config,
		log:    log,
	}
}

// Render renders the summary according to the configured format
func (r *renderer) Render(summary *batch.Summary) (string, error) {
	if summary == nil {
		msg := "nil summary provided for rendering"
		r.log.Error(msg)
		return "", fmt.Errorf(msg)
	}

	r.log.WithFields(logger.Fields{
		"format":    r.config.Format,
		"withColor": r.config.WithColor,
	}).Debug("Rendering run summary")

	switch r.config.Format {
	case FormatText, "":
		return r.renderText(summary), nil
	case FormatJSON:
		return r.renderJSON(summary)
	case FormatYAML:
		return r.renderYAML(summary)
	default:
		msg := fmt.Sprintf("unsupported report format: %s", r.config.Format)
		r.log.Error(msg)
		return "", fmt.Errorf(msg)
	}
}
