package composer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkgstale/pkgstale/pkg/common"
)

type lockFile struct {
	Packages    []*lockPackage `json:"packages"`
	PackagesDev []*lockPackage `json:"packages-dev"`
}

type lockPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Reads a composer.lock file and converts the locked packages into queries.
// Dev packages are only included when includeDev is set.
func ReadLockfile(filePath string, includeDev bool) ([]*common.PackageQuery, error) {
	fileContentBytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed reading the lockfile '%s': %w", filePath, err)
	}
	lockData := &lockFile{}
	if err := json.Unmarshal(fileContentBytes, lockData); err != nil {
		return nil, fmt.Errorf("failed parsing the lockfile '%s': %w", filePath, err)
	}

	queries := []*common.PackageQuery{}
	for _, lockedPackage := range lockData.Packages {
		query, err := newQuery(lockedPackage, false)
		if err != nil {
			return nil, err
		}
		queries = append(queries, query)
	}
	if includeDev {
		for _, lockedPackage := range lockData.PackagesDev {
			query, err := newQuery(lockedPackage, true)
			if err != nil {
				return nil, err
			}
			queries = append(queries, query)
		}
	}
	return queries, nil
}

func newQuery(lockedPackage *lockPackage, isDev bool) (*common.PackageQuery, error) {
	if err := common.ValidatePackageName(lockedPackage.Name); err != nil {
		return nil, fmt.Errorf("lockfile contains an invalid package entry: %w", err)
	}
	return &common.PackageQuery{
		Name:           lockedPackage.Name,
		CurrentVersion: lockedPackage.Version,
		IsDev:          isDev,
	}, nil
}
