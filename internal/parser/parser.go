package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/agentops-cli/internal/analysis"
	"github.com/KaramelBytes/agentops-cli/internal/utils"
)

// ErrUnsupported indicates a file extension no loader or parser accepts.
var ErrUnsupported = errors.New("unsupported file type: upload CSV or Excel")

// Loader turns raw tabular bytes into a Dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(name string, content []byte) (*analysis.Dataset, error)
}

// Parser extracts plain text from an attached document.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte) (string, error)
}

var (
	loaders []Loader
	parsers []Parser
)

// RegisterLoader adds a tabular loader to the registry.
func RegisterLoader(l Loader) {
	loaders = append(loaders, l)
}

// Register adds a document parser to the registry.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// LoadTabular picks a loader by filename extension and decodes content.
// Extensions other than .csv, .xlsx and .xls yield ErrUnsupported.
func LoadTabular(content []byte, filename string) (*analysis.Dataset, error) {
	for _, l := range loaders {
		if l.CanLoad(filename) {
			ds, err := l.Load(filename, content)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", filename, err)
			}
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w (%s)", ErrUnsupported, filename)
}

// LoadTabularFile reads path from disk and calls LoadTabular.
func LoadTabularFile(path string) (*analysis.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return LoadTabular(data, path)
}

// ParseDocument extracts text from an attached document. Unknown extensions
// fall back to the raw bytes as text.
func ParseDocument(content []byte, filename string) (string, error) {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p.Parse(content)
		}
	}
	return string(content), nil
}

// EstimateTokens delegates to utils.CountTokens for now.
func EstimateTokens(text string) int {
	return utils.CountTokens(text)
}

func init() {
	RegisterLoader(csvLoader{})
	RegisterLoader(xlsxLoader{})
	RegisterLoader(xlsLoader{})

	Register(plainText)
	Register(markdownText)
	Register(docxParser{})
}
