package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/toolness/getdocs2ts/internal/extract"
)

// Formatter is the interface for formatting extraction output in different formats.
type Formatter interface {
	// Format formats a value according to the specified density level.
	// Returns the formatted string or an error.
	Format(v interface{}, density Density) (string, error)

	// FormatToWriter writes formatted output directly to a writer.
	FormatToWriter(w io.Writer, v interface{}, density Density) error
}

// YAMLFormatter formats values as YAML output.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format formats a value as YAML.
func (f *YAMLFormatter) Format(v interface{}, density Density) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v, density); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes YAML output to a writer.
func (f *YAMLFormatter) FormatToWriter(w io.Writer, v interface{}, density Density) error {
	filtered := applyDensityFilter(v, density)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(filtered)
}

// JSONFormatter formats values as JSON output.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats a value as JSON.
func (f *JSONFormatter) Format(v interface{}, density Density) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v, density); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes JSON output to a writer.
func (f *JSONFormatter) FormatToWriter(w io.Writer, v interface{}, density Density) error {
	filtered := applyDensityFilter(v, density)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	return encoder.Encode(filtered)
}

// applyDensityFilter replaces declarations in v by density-trimmed views.
// Values of other types are returned as-is.
func applyDensityFilter(v interface{}, density Density) interface{} {
	switch x := v.(type) {
	case *Report:
		rv := &reportView{Summary: x.Summary, Files: make([]*fileView, 0, len(x.Files))}
		for _, f := range x.Files {
			rv.Files = append(rv.Files, newFileView(f, density))
		}
		return rv
	case *FileResult:
		return newFileView(x, density)
	case []*extract.Declaration:
		views := NewDeclarationViews(x, density)
		if views == nil {
			return []*DeclarationView{}
		}
		return views
	default:
		return v
	}
}

// GetFormatter returns a formatter for the specified format.
func GetFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
