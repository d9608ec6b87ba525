/*
PURPOSE:
  Writes the run summary to a JSON document.
  Optimized for machine parsing by the downstream visualizer.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - A run produces exactly one summary, and the visualizer loads the
    whole file as a single document, so plain indented JSON beats
    JSON Lines here.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Consumes: internal/model.RunSummary

ERROR HANDLING:
  - Returns error on marshal or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json with indentation (human-inspectable artifacts).

USAGE:
  err := output.WriteSummary("summary_20240101_120000.json", summary)

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update if the summary ever becomes a stream of documents.
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ruleworks/wave-runner/internal/model"
)

// WriteSummary writes the run summary as an indented JSON document.
func WriteSummary(path string, s model.RunSummary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing summary %s: %w", path, err)
	}

	return nil
}
