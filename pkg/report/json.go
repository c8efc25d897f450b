package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pkgstale/pkgstale/pkg/common"
)

type jsonReport struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Rating      jsonRating    `json:"rating"`
	Packages    []jsonPackage `json:"packages"`
}

type jsonRating struct {
	Score  float64                    `json:"score"`
	Label  string                     `json:"label"`
	Counts map[common.AgeCategory]int `json:"counts"`
}

type jsonPackage struct {
	Name              string             `json:"name"`
	Version           string             `json:"version"`
	Dev               bool               `json:"dev"`
	ReleaseDate       *time.Time         `json:"releaseDate,omitempty"`
	AgeDays           *int               `json:"ageDays,omitempty"`
	LatestVersion     string             `json:"latestVersion,omitempty"`
	LatestReleaseDate *time.Time         `json:"latestReleaseDate,omitempty"`
	Category          common.AgeCategory `json:"category"`
}

func (r *Report) renderJson(w io.Writer) error {
	dataObject := jsonReport{
		GeneratedAt: r.GeneratedAt,
		Rating: jsonRating{
			Score:  r.Rating.Score,
			Label:  r.Rating.Label,
			Counts: r.Rating.Counts,
		},
		Packages: []jsonPackage{},
	}
	for _, packageAge := range r.Packages {
		entry := jsonPackage{
			Name:     packageAge.Query.Name,
			Version:  packageAge.Query.CurrentVersion,
			Dev:      packageAge.Query.IsDev,
			Category: packageAge.Category,
		}
		if packageAge.Release != nil {
			if !packageAge.Release.ReleaseDate.IsZero() {
				releaseDate := packageAge.Release.ReleaseDate
				entry.ReleaseDate = &releaseDate
				ageDays := packageAge.AgeDays
				entry.AgeDays = &ageDays
			}
			entry.LatestVersion = packageAge.Release.LatestVersion
			if !packageAge.Release.LatestReleaseDate.IsZero() {
				latestReleaseDate := packageAge.Release.LatestReleaseDate
				entry.LatestReleaseDate = &latestReleaseDate
			}
		}
		dataObject.Packages = append(dataObject.Packages, entry)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(&dataObject)
}
