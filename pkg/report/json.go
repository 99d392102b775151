package report

import (
	"encoding/json"
	"time"

	"github.com/saraf/clean-whiteboard-images/pkg/batch"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

// document is the machine-readable envelope of a run summary
type document struct {
	Generated time.Time      `json:"generated" yaml:"generated"`
	Engine    string         `json:"engine,omitempty" yaml:"engine,omitempty"`
	Summary   *batch.Summary `json:"summary" yaml:"summary"`
}

func (r *renderer) renderJSON(summary *batch.Summary) (string, error) {
	r.log.Debug("Rendering JSON report")

	doc := &document{
		Generated: time.Now(),
		Engine:    r.config.Engine,
		Summary:   summary,
	}

	bytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		r.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal JSON report")
		return "", err
	}

	return string(bytes), nil
}
