package output

import (
	"github.com/toolness/getdocs2ts/internal/extract"
	"github.com/toolness/getdocs2ts/internal/typespec"
)

// Report is the result of one extract run over a set of files.
type Report struct {
	Files   []*FileResult `yaml:"files" json:"files"`
	Summary Summary       `yaml:"summary" json:"summary"`
}

// FileResult holds the declarations of one file, or the error that aborted
// its extraction.
type FileResult struct {
	// Path is slash-separated and relative to the project root.
	Path     string `yaml:"path" json:"path"`
	Language string `yaml:"language" json:"language"`

	Declarations []*extract.Declaration `yaml:"declarations,omitempty" json:"declarations,omitempty"`
	Error        string                 `yaml:"error,omitempty" json:"error,omitempty"`

	// Cached is true when the declarations came from the extraction cache.
	Cached bool `yaml:"cached,omitempty" json:"cached,omitempty"`
}

// Summary counts the outcome of a run.
type Summary struct {
	Files        int `yaml:"files" json:"files"`
	Failed       int `yaml:"failed" json:"failed"`
	Declarations int `yaml:"declarations" json:"declarations"`
	Cached       int `yaml:"cached,omitempty" json:"cached,omitempty"`
}

// NewReport builds a report and its summary from per-file results.
func NewReport(files []*FileResult) *Report {
	r := &Report{Files: files}
	for _, f := range files {
		r.Summary.Files++
		if f.Error != "" {
			r.Summary.Failed++
		}
		if f.Cached {
			r.Summary.Cached++
		}
		extract.Walk(f.Declarations, func(*extract.Declaration, int) {
			r.Summary.Declarations++
		})
	}
	return r
}

// DeclarationView is a declaration trimmed to an output density.
type DeclarationView struct {
	Name       string             `yaml:"name" json:"name"`
	TypeSpec   string             `yaml:"typeSpec,omitempty" json:"typeSpec,omitempty"`
	Type       *typespec.Type     `yaml:"type,omitempty" json:"type,omitempty"`
	ParamNames []string           `yaml:"paramNames,omitempty" json:"paramNames,omitempty"`
	Doc        string             `yaml:"doc,omitempty" json:"doc,omitempty"`
	Line       int                `yaml:"line,omitempty" json:"line,omitempty"`
	Properties []*DeclarationView `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// NewDeclarationViews converts declarations to views at the given density.
// An implicit type is shown as its rendered signature at medium density.
func NewDeclarationViews(decls []*extract.Declaration, density Density) []*DeclarationView {
	if len(decls) == 0 {
		return nil
	}
	views := make([]*DeclarationView, 0, len(decls))
	for _, d := range decls {
		v := &DeclarationView{Name: d.Name}
		if density.IncludesSignature() {
			v.TypeSpec = d.TypeSpec
			if v.TypeSpec == "" && d.Type != nil {
				v.TypeSpec = d.Type.String()
			}
		}
		if density.IncludesType() {
			v.Type = d.Type
			v.ParamNames = d.ParamNames
		}
		if density.IncludesDoc() {
			v.Doc = d.Doc
		}
		if density.IncludesLines() {
			v.Line = d.Line
		}
		v.Properties = NewDeclarationViews(d.Properties, density)
		views = append(views, v)
	}
	return views
}

// fileView is FileResult with declarations replaced by views.
type fileView struct {
	Path         string             `yaml:"path" json:"path"`
	Language     string             `yaml:"language" json:"language"`
	Declarations []*DeclarationView `yaml:"declarations,omitempty" json:"declarations,omitempty"`
	Error        string             `yaml:"error,omitempty" json:"error,omitempty"`
	Cached       bool               `yaml:"cached,omitempty" json:"cached,omitempty"`
}

type reportView struct {
	Files   []*fileView `yaml:"files" json:"files"`
	Summary Summary     `yaml:"summary" json:"summary"`
}

func newFileView(f *FileResult, density Density) *fileView {
	return &fileView{
		Path:         f.Path,
		Language:     f.Language,
		Declarations: NewDeclarationViews(f.Declarations, density),
		Error:        f.Error,
		Cached:       f.Cached && density == DensityDense,
	}
}
