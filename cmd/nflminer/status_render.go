package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/nickblackbourn/nfl-process-mining/internal/validate"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

// checkLabelWidth fits the longest invariant check name plus its colon.
const checkLabelWidth = 24

// checkLine renders one aligned pass/fail line for a named check. The tag
// and detail are identical with and without color, so piped output stays
// grep-friendly.
func checkLine(name string, passed bool, detail string, colorize bool) string {
	tag, color := "[ERROR]", ansiRed
	if passed {
		tag, color = "[OK]", ansiGreen
	}
	text := tag
	if detail != "" {
		text += " " + detail
	}
	line := fmt.Sprintf("  %-*s %s", checkLabelWidth, name+":", text)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// validationLines renders one status line per invariant check, preceded by a
// summary line.
func validationLines(rep validate.Report, colorize bool) []string {
	lines := make([]string, 0, len(rep.Results)+1)

	summary := fmt.Sprintf("%d checks passed", len(rep.Results))
	failures := rep.Failures()
	if len(failures) > 0 {
		summary = fmt.Sprintf("%d of %d checks failed", len(failures), len(rep.Results))
	}
	lines = append(lines, checkLine("Summary", len(failures) == 0, summary, colorize))

	for _, result := range rep.Results {
		lines = append(lines, checkLine(result.Name, result.Passed, result.Detail, colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
