package age

import (
	"fmt"
	"math"
	"time"

	"github.com/pkgstale/pkgstale/pkg/common"
)

// The age thresholds in fractional years. A threshold of 0.5 means half a year.
type Thresholds struct {
	// Packages younger than this are "current".
	CurrentYears float64
	// Packages younger than this (but not current) are "medium".
	MediumYears float64
	// Packages older than this weigh heaviest in the project rating.
	OldYears float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CurrentYears: 0.5,
		MediumYears:  1.0,
		OldYears:     2.0,
	}
}

func (t Thresholds) Validate() error {
	if t.CurrentYears <= 0 || t.MediumYears <= 0 || t.OldYears <= 0 {
		return fmt.Errorf("age thresholds must be positive")
	}
	if t.CurrentYears >= t.MediumYears || t.MediumYears >= t.OldYears {
		return fmt.Errorf("age thresholds must be strictly increasing (current < medium < old)")
	}
	return nil
}

// The evaluated age of a single installed package.
type PackageAge struct {
	Query *common.PackageQuery
	// The release information, "nil" when the package could not be resolved.
	Release *common.ReleaseInfo
	// Full days since the release of the installed version. -1 when unknown.
	AgeDays  int
	Category common.AgeCategory
}

// The aggregate rating of a whole project.
type Rating struct {
	// The average freshness score over all rated packages, between 0 and 1.
	Score float64
	// A human readable label for the score.
	Label string
	// The number of packages per category.
	Counts map[common.AgeCategory]int
	// How many packages contributed to the score (unknown ones do not).
	Scored int
}

// Converts a fractional-year threshold into full days. Days are floored, so
// 0.5 years become 182 days, and category boundaries are exclusive: a package
// aged exactly 182 days is no longer "current" with the default thresholds.
func DaysFromYears(years float64) int {
	return int(math.Floor(years * 365))
}

// Full days between the release date and "now", floored.
func AgeDays(releaseDate time.Time, now time.Time) int {
	if releaseDate.IsZero() {
		return -1
	}
	return int(math.Floor(now.Sub(releaseDate).Hours() / 24))
}

func Categorize(releaseDate time.Time, now time.Time, thresholds Thresholds) common.AgeCategory {
	ageDays := AgeDays(releaseDate, now)
	if ageDays < 0 {
		return common.AGE_CATEGORY_UNKNOWN
	}
	if ageDays < DaysFromYears(thresholds.CurrentYears) {
		return common.AGE_CATEGORY_CURRENT
	}
	if ageDays < DaysFromYears(thresholds.MediumYears) {
		return common.AGE_CATEGORY_MEDIUM
	}
	return common.AGE_CATEGORY_OLD
}

// Combines the queries with their resolved release information into evaluated
// package ages. Unresolved packages get the unknown category, they are kept in
// the result rather than dropped.
func Evaluate(queries []*common.PackageQuery, resolved map[string]*common.ReleaseInfo, now time.Time, thresholds Thresholds) []*PackageAge {
	packageAges := make([]*PackageAge, 0, len(queries))
	for _, query := range queries {
		releaseInfo := resolved[query.Name]
		packageAge := &PackageAge{
			Query:    query,
			Release:  releaseInfo,
			AgeDays:  -1,
			Category: common.AGE_CATEGORY_UNKNOWN,
		}
		if releaseInfo != nil {
			packageAge.AgeDays = AgeDays(releaseInfo.ReleaseDate, now)
			packageAge.Category = Categorize(releaseInfo.ReleaseDate, now, thresholds)
		}
		packageAges = append(packageAges, packageAge)
	}
	return packageAges
}

// Computes the aggregate rating. Current packages score 1, medium 0.5, old 0.25
// and packages beyond the old threshold 0. Unknown packages are counted but do
// not influence the score.
func Rate(packageAges []*PackageAge, thresholds Thresholds) *Rating {
	rating := &Rating{
		Counts: map[common.AgeCategory]int{},
	}
	totalScore := 0.0
	for _, packageAge := range packageAges {
		rating.Counts[packageAge.Category]++
		if packageAge.Category == common.AGE_CATEGORY_UNKNOWN {
			continue
		}
		rating.Scored++
		switch packageAge.Category {
		case common.AGE_CATEGORY_CURRENT:
			totalScore += 1.0
		case common.AGE_CATEGORY_MEDIUM:
			totalScore += 0.5
		case common.AGE_CATEGORY_OLD:
			if packageAge.AgeDays < DaysFromYears(thresholds.OldYears) {
				totalScore += 0.25
			}
		}
	}
	if rating.Scored == 0 {
		rating.Label = "n/a"
		return rating
	}
	rating.Score = totalScore / float64(rating.Scored)
	switch {
	case rating.Score >= 0.8:
		rating.Label = "excellent"
	case rating.Score >= 0.6:
		rating.Label = "good"
	case rating.Score >= 0.4:
		rating.Label = "fair"
	default:
		rating.Label = "poor"
	}
	return rating
}
