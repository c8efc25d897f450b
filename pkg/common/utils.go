package common

import "fmt"

// Builds a string like "1 package" or "3 packages" for log messages.
func CountString[T any](items []T, singular string) string {
	if len(items) == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %ss", len(items), singular)
}
