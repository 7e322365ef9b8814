package cli

import (
	"strings"

	"github.com/fatih/color"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Colour helpers. fatih/color disables itself when stdout is not a
// terminal or NO_COLOR is set.
var (
	headingLabel = color.New(color.FgCyan, color.Bold).SprintFunc()
	successLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnLabel    = color.New(color.FgYellow, color.Bold).SprintFunc()
	mutedLabel   = color.New(color.Faint).SprintFunc()
)

// describeError formats err for the terminal. Input problems are shown as
// warnings and everything else as errors.
func describeError(err error) string {
	if domain.ClassifyError(err) == domain.ErrorClassInput {
		return warnLabel("Warning:") + " " + domain.UserMessage(err)
	}
	return domain.UserMessage(err)
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
