package parser

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// textParser accepts plain-text formats by extension and only normalizes
// line endings and blank runs.
type textParser struct {
	exts []string
}

var (
	plainText    = textParser{exts: []string{".txt", ".text", ".log"}}
	markdownText = textParser{exts: []string{".md", ".markdown"}}
)

func (p textParser) CanParse(filename string) bool {
	return slices.Contains(p.exts, strings.ToLower(filepath.Ext(filename)))
}

func (textParser) Parse(content []byte) (string, error) {
	return normalizeNewlines(string(content)), nil
}

var blankRun = regexp.MustCompile(`\n{3,}`)

// normalizeNewlines converts CRLF and CR to LF, trims the ends and collapses
// runs of blank lines to one.
func normalizeNewlines(text string) string {
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
	return blankRun.ReplaceAllString(strings.TrimSpace(text), "\n\n")
}
