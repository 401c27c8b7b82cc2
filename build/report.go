package build

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/mbhelper/internal/fsutil"
)

// Report summarizes one build.
type Report struct {
	Success     bool         `json:"success" yaml:"success"`
	Launched    bool         `json:"launched" yaml:"launched"`
	Compiler    string       `json:"compiler" yaml:"compiler"`
	Dir         string       `json:"dir,omitempty" yaml:"dir,omitempty"`
	Args        []string     `json:"args,omitempty" yaml:"args,omitempty"`
	Sources     []string     `json:"sources,omitempty" yaml:"sources,omitempty"`
	Project     string       `json:"project,omitempty" yaml:"project,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Started     time.Time    `json:"started" yaml:"started"`
	Duration    string       `json:"duration" yaml:"duration"`
}

// Report returns the summary of the last Execute.
func (o *Orchestrator) Report() Report {
	diags := o.diagnostics
	if diags == nil {
		diags = []Diagnostic{}
	}
	return Report{
		Success:     o.success,
		Launched:    o.launched,
		Compiler:    o.req.CompilerPath,
		Dir:         o.command.Dir,
		Args:        o.command.Args,
		Sources:     o.sources,
		Project:     o.project,
		Diagnostics: diags,
		Started:     o.started,
		Duration:    o.duration.String(),
	}
}

// WriteReport writes r to path as JSON or YAML, chosen by the file extension.
func WriteReport(path string, r Report) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(r, "", "  ")
		data = append(data, '\n')
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	default:
		return fmt.Errorf("unsupported report format for file '%s' (use .json, .yaml or .yml)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return fsutil.AtomicWriteFile(path, data)
}
