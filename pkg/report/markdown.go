package report

import (
	"fmt"
	"io"
	"strings"
)

func (r *Report) renderMarkdown(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("# Dependency ages\n\n")
	sb.WriteString("| Package | Version | Released | Age | Latest | Category |\n")
	sb.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, packageAge := range r.Packages {
		marker := ""
		if packageAge.Release == nil {
			marker = " :warning:"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s%s |\n",
			packageLabel(packageAge),
			packageAge.Query.CurrentVersion,
			releasedLabel(packageAge),
			formatAgeDays(packageAge),
			latestLabel(packageAge),
			categoryLabel(packageAge.Category),
			marker,
		))
	}
	sb.WriteString(fmt.Sprintf("\n%s\n", r.summaryLine()))
	_, err := io.WriteString(w, sb.String())
	return err
}
