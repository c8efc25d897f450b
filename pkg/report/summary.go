package report

import (
	"fmt"
	"io"

	"github.com/pkgstale/pkgstale/pkg/common"
)

// The one-line summary that is also printed after composer install/update runs.
func (r *Report) renderSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n", r.summaryLine())
	return err
}

func (r *Report) summaryLine() string {
	counts := r.Rating.Counts
	line := fmt.Sprintf("Dependency ages: %d current, %d medium, %d old, %d unknown",
		counts[common.AGE_CATEGORY_CURRENT],
		counts[common.AGE_CATEGORY_MEDIUM],
		counts[common.AGE_CATEGORY_OLD],
		counts[common.AGE_CATEGORY_UNKNOWN],
	)
	if r.Rating.Scored > 0 {
		line += fmt.Sprintf(" - rating %s (%.2f)", r.Rating.Label, r.Rating.Score)
	}
	return line
}
