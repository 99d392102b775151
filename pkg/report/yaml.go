package report

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saraf/clean-whiteboard-images/pkg/batch"
	"github.com/saraf/clean-whiteboard-images/pkg/logger"
)

func (r *renderer) renderYAML(summary *batch.Summary) (string, error) {
	r.log.Debug("Rendering YAML report")

	doc := &document{
		Generated: time.Now(),
		Engine:    r.config.Engine,
		Summary:   summary,
	}

	bytes, err := yaml.Marshal(doc)
	if err != nil {
		r.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to marshal YAML report")
		return "", err
	}

	return string(bytes), nil
}
