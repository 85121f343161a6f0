package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/naka-gawa/github-user-stats/internal/domain"
)

// JSON writes the report as indented JSON.
func JSON(w io.Writer, report *domain.Report) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
