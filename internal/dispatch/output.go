package dispatch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Output writes the dispatch result where the orchestrator can read it:
// appended to a GitHub Actions output file when a path is set, printed to
// stdout otherwise.
type Output struct {
	// Path of the output file (GITHUB_OUTPUT). Empty selects Stdout.
	Path string
	// Stdout is the fallback writer; defaults to os.Stdout.
	Stdout io.Writer
}

// Write emits has_jobs and the JSON-encoded matrix as key=value lines.
func (o *Output) Write(hasJobs bool, matrix Matrix) error {
	encoded, err := json.Marshal(matrix)
	if err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}

	lines := fmt.Sprintf("has_jobs=%t\nmatrix=%s\n", hasJobs, encoded)

	if o.Path == "" {
		w := o.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := io.WriteString(w, lines); err != nil {
			return fmt.Errorf("write matrix to stdout: %w", err)
		}
		return nil
	}

	f, err := os.OpenFile(o.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(lines); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
