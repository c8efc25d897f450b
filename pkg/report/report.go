package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/pkgstale/pkgstale/pkg/age"
	"github.com/pkgstale/pkgstale/pkg/common"
)

// A renderable report over the evaluated package ages. Packages are ordered by
// age descending with unknown packages at the end, so the most dated
// dependencies come first.
type Report struct {
	GeneratedAt time.Time
	Packages    []*age.PackageAge
	Rating      *age.Rating
}

func New(packageAges []*age.PackageAge, rating *age.Rating, now time.Time) *Report {
	sorted := slices.Clone(packageAges)
	slices.SortStableFunc(sorted, func(a, b *age.PackageAge) int {
		aUnknown := a.Category == common.AGE_CATEGORY_UNKNOWN
		bUnknown := b.Category == common.AGE_CATEGORY_UNKNOWN
		if aUnknown != bUnknown {
			if aUnknown {
				return 1
			}
			return -1
		}
		if a.AgeDays != b.AgeDays {
			return b.AgeDays - a.AgeDays
		}
		return strings.Compare(a.Query.Name, b.Query.Name)
	})
	return &Report{
		GeneratedAt: now,
		Packages:    sorted,
		Rating:      rating,
	}
}

func (r *Report) Render(w io.Writer, format common.OutputFormat) error {
	switch format {
	case common.OUTPUT_FORMAT_TABLE:
		return r.renderTable(w)
	case common.OUTPUT_FORMAT_JSON:
		return r.renderJson(w)
	case common.OUTPUT_FORMAT_MARKDOWN:
		return r.renderMarkdown(w)
	case common.OUTPUT_FORMAT_SUMMARY:
		return r.renderSummary(w)
	}
	return fmt.Errorf("unknown output format '%s'", format)
}

////////////////////////////////////////////////////////////
// Internal
////////////////////////////////////////////////////////////

func categoryLabel(category common.AgeCategory) string {
	switch category {
	case common.AGE_CATEGORY_CURRENT:
		return "Current"
	case common.AGE_CATEGORY_MEDIUM:
		return "Medium"
	case common.AGE_CATEGORY_OLD:
		return "Old"
	}
	return "Unknown"
}

func packageLabel(packageAge *age.PackageAge) string {
	if packageAge.Query.IsDev {
		return packageAge.Query.Name + " (dev)"
	}
	return packageAge.Query.Name
}

func formatAgeDays(packageAge *age.PackageAge) string {
	if packageAge.AgeDays < 0 {
		return "?"
	}
	if packageAge.AgeDays == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", packageAge.AgeDays)
}

func formatDate(date time.Time) string {
	if date.IsZero() {
		return "-"
	}
	return date.Format("2006-01-02")
}

func latestLabel(packageAge *age.PackageAge) string {
	if packageAge.Release == nil || packageAge.Release.LatestVersion == "" {
		return "-"
	}
	return packageAge.Release.LatestVersion
}
