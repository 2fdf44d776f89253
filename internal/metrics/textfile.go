package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

// WriteTextfile writes the metrics gathered from g in the text exposition
// format, for pickup by the node exporter textfile collector. The file is
// replaced atomically.
func WriteTextfile(path string, g prom.Gatherer) error {
	if path == "" {
		return errors.ValidationError("metrics textfile path is empty").Build()
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write metrics textfile").
			WithContext("path", path).
			Build()
	}
	return nil
}
