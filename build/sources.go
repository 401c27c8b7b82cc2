package build

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lixenwraith/mbhelper/ini"
	"github.com/lixenwraith/mbhelper/internal/fsutil"
)

// Project section and key that list the modules to link.
const (
	LinkSection = "Link"
	ModuleKey   = "Module"
)

// Discover scans folder (not recursively) for source files and a project file.
// Extensions match case-insensitively. Files are visited in name order, so with
// several project files the last one is returned.
func Discover(folder string, exts Extensions) (sources []string, project string, err error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan folder '%s': %w", folder, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(folder, e.Name())
		switch {
		case fsutil.HasExt(path, exts.Source):
			sources = append(sources, path)
		case fsutil.HasExt(path, exts.Project):
			project = path
		}
	}
	return sources, project, nil
}

// VerifyProject checks that a project has a Link section with a Module key.
// The orchestrator reports a failed check but still builds whatever the project lists.
func VerifyProject(p *ini.File) error {
	link := p.Section(LinkSection)
	if link == nil {
		return fmt.Errorf("%w: no [%s] section", ErrInvalidProject, LinkSection)
	}
	if link.Key(ModuleKey) == nil {
		return fmt.Errorf("%w: no %s key in [%s]", ErrInvalidProject, ModuleKey, LinkSection)
	}
	return nil
}

// ProjectModules returns the Module values of the Link section, or nil.
func ProjectModules(p *ini.File) []string {
	k := p.Key(LinkSection, ModuleKey)
	if k == nil {
		return nil
	}
	return k.Values()
}

// ModulePath maps a project module entry to its source file in folder.
func ModulePath(folder, module, sourceExt string) string {
	return fsutil.ChangeExt(filepath.Join(folder, module), sourceExt)
}
