package transform

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Relation names forming the contract between the driver and a ruleset. The
// driver provides the first two before any statement runs and reads the
// third back afterwards.
const (
	RawTableName    = "raw_data"
	ScopeTableName  = "run_scope"
	ResultTableName = "final_cleaned_dataset"
)

// OriginEmbedded marks the ruleset compiled into the binary.
const OriginEmbedded = "embedded"

//go:embed transform_data.sql
var embeddedRuleset string

// Ruleset is a versioned sequence of SQL statements that derives the event
// log from the raw plays. The built-in ruleset ships inside the binary; an
// operator may substitute a file that honors the same relation contract.
type Ruleset struct {
	origin string
	text   string
}

// Embedded returns the built-in ruleset.
func Embedded() Ruleset {
	return Ruleset{origin: OriginEmbedded, text: embeddedRuleset}
}

// LoadRuleset reads a ruleset from disk.
func LoadRuleset(path string) (Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Ruleset{}, fmt.Errorf("read ruleset: %w", err)
	}
	return Ruleset{origin: path, text: string(data)}, nil
}

// Origin identifies where the ruleset came from, for logs and reports.
func (r Ruleset) Origin() string {
	return r.origin
}

// Text returns the raw SQL, comments included.
func (r Ruleset) Text() string {
	return r.text
}

// Statements splits the ruleset into executable statements. Comments are
// stripped first, then the remainder is split on semicolons; semicolons
// inside quoted literals do not terminate a statement.
func (r Ruleset) Statements() ([]string, error) {
	stmts := splitStatements(r.text)
	if len(stmts) == 0 {
		return nil, errors.New("ruleset contains no SQL statements")
	}
	return stmts, nil
}

func splitStatements(text string) []string {
	const (
		stateSQL = iota
		stateLineComment
		stateBlockComment
		stateString
	)

	var (
		stmts   []string
		current strings.Builder
		state   = stateSQL
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch state {
		case stateSQL:
			switch {
			case c == '-' && next == '-':
				state = stateLineComment
				i++
			case c == '/' && next == '*':
				state = stateBlockComment
				i++
			case c == '\'':
				state = stateString
				current.WriteRune(c)
			case c == ';':
				if stmt := strings.TrimSpace(current.String()); stmt != "" {
					stmts = append(stmts, stmt)
				}
				current.Reset()
			default:
				current.WriteRune(c)
			}
		case stateLineComment:
			if c == '\n' {
				state = stateSQL
				current.WriteRune(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateSQL
				i++
			}
		case stateString:
			current.WriteRune(c)
			if c == '\'' {
				if next == '\'' {
					// Escaped quote inside the literal.
					current.WriteRune(next)
					i++
				} else {
					state = stateSQL
				}
			}
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}
