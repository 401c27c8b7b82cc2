package build

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lixenwraith/mbhelper/internal/fsutil"
)

// Diagnostic is one line of a compiler error artifact.
type Diagnostic struct {
	// Artifact is the error file base name, without extension
	Artifact string `json:"artifact" yaml:"artifact"`

	// File and Line come from the "(file:line)" prefix; Line is 0 when it is not a number
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`

	// Message is the text after the prefix
	Message string `json:"message" yaml:"message"`

	// Raw is the normalized line as written to the error stream
	Raw string `json:"raw" yaml:"raw"`
}

func (d Diagnostic) String() string {
	return d.Raw
}

// NewDiagnostic normalizes one artifact line. A line that does not start with "("
// gets the prefix "(<artifact><projectExt>:1)", with nothing in between.
func NewDiagnostic(artifact, line, projectExt string) Diagnostic {
	raw := line
	if !strings.HasPrefix(line, "(") {
		raw = fmt.Sprintf("(%s%s:1)%s", artifact, projectExt, line)
	}

	d := Diagnostic{Artifact: artifact, Raw: raw, Message: raw}
	end := strings.IndexByte(raw, ')')
	if end < 0 {
		return d
	}
	location := raw[1:end]
	d.Message = strings.TrimSpace(raw[end+1:])
	if i := strings.LastIndexByte(location, ':'); i >= 0 {
		d.File = location[:i]
		if n, err := strconv.Atoi(location[i+1:]); err == nil {
			d.Line = n
		}
	} else {
		d.File = location
	}
	return d
}

// ReadArtifacts reads every error file in folder, in name order. A file that
// cannot be read does not stop the others; all read errors are returned joined.
// An empty extension falls back to DefaultExtensions.
func ReadArtifacts(folder string, exts Extensions) ([]Diagnostic, error) {
	exts = exts.withDefaults()
	files, err := fsutil.FilesByExtension(folder, exts.Error)
	if err != nil {
		return nil, fmt.Errorf("failed to list error files in '%s': %w", folder, err)
	}

	var (
		diags []Diagnostic
		errs  []error
	)
	for _, path := range files {
		d, err := readArtifact(path, exts.Project)
		diags = append(diags, d...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return diags, errors.Join(errs...)
}

// readArtifact returns one diagnostic per line. Lines have no length limit.
func readArtifact(path, projectExt string) ([]Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open error file '%s': %w", path, err)
	}
	defer f.Close()

	artifact := fsutil.BaseName(path)
	var diags []Diagnostic
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			diags = append(diags, NewDiagnostic(artifact, line, projectExt))
		}
		if err == io.EOF {
			return diags, nil
		}
		if err != nil {
			return diags, fmt.Errorf("failed to read error file '%s': %w", path, err)
		}
	}
}

// removeArtifacts deletes error files in folder and returns the ones it removed.
func removeArtifacts(folder string, exts Extensions) ([]string, error) {
	exts = exts.withDefaults()
	files, err := fsutil.FilesByExtension(folder, exts.Error)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, path := range files {
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
