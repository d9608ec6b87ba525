/*
PURPOSE:
  Loads test prompts from a CSV file.
  The prompt list is the input sequence the engine cycles through.

REQUIREMENTS:
  User-specified:
  - Read prompts from a CSV with a header row.
  - Accept "prompt", "prompts", or "input" as the column name.

  Implementation-discovered:
  - Blank cells must be skipped, not dispatched as empty prompts.
  - An unusable file is a configuration error (fail fast, no run).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go, internal/cli/check_prompts.go
  - Consumes: the user's prompt CSV.

ERROR HANDLING:
  - Returns explicit errors for missing files, missing columns, and
    files that yield zero prompts.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Preserve file order; the engine relies on stable indices.

USAGE:
  prompts, err := prompts.Load("prompts.csv", 0)

SELF-HEALING INSTRUCTIONS:
  - If a new column alias is needed, add it to promptColumns.

RELATED FILES:
  - internal/engine/runner.go

MAINTENANCE:
  - Update if the prompt source grows beyond flat CSV files.
*/

package prompts

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// promptColumns are the accepted header names, checked case-insensitively.
var promptColumns = []string{"prompt", "prompts", "input"}

// Load reads prompts from a CSV file. The first matching column is used.
// max caps the number of prompts loaded; 0 means no cap.
func Load(path string, max int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening prompt file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading prompt file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("prompt file %s is empty", path)
	}

	col := -1
	for i, name := range records[0] {
		for _, want := range promptColumns {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				col = i
				break
			}
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("prompt file %s has no prompt/prompts/input column", path)
	}

	var out []string
	for _, row := range records[1:] {
		if col >= len(row) {
			continue
		}
		p := strings.TrimSpace(row[col])
		if p == "" {
			continue
		}
		out = append(out, p)
		if max > 0 && len(out) >= max {
			break
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("prompt file %s contains no usable prompts", path)
	}

	return out, nil
}
