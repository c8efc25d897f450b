package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Loads a whitelist file: one package name pattern per line, empty lines and
// lines starting with "#" are skipped.
func LoadWhitelistFile(filePath string) ([]string, error) {
	fileDescriptor, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed reading the whitelist file '%s': %w", filePath, err)
	}
	defer fileDescriptor.Close()

	patterns := []string{}
	scanner := bufio.NewScanner(fileDescriptor)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading the whitelist file '%s': %w", filePath, err)
	}
	return patterns, nil
}
