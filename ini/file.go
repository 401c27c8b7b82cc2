package ini

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/lixenwraith/mbhelper/internal/fsutil"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

var (
	// A header name must not start with '[' or whitespace, nor end with ']' or whitespace.
	sectionPattern = regexp.MustCompile(`^\s*\[\s*([^\[\s](?:.*[^\s\]])?)\s*\]\s*$`)

	// Only the first token before '=' is the key; anything else up to '=' is dropped.
	keyValuePattern = regexp.MustCompile(`^\s*([^=\s]*)[^=]*=(.*)`)
)

// File is a parsed project description.
type File struct {
	sections namedMap[*Section]
}

// New returns an empty File.
func New() *File {
	return &File{sections: newNamedMap[*Section]()}
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse '%s': %w", path, err)
	}
	return file, nil
}

// Parse builds a File from r. Only read errors are reported; content that does not fit
// the format is skipped or kept as value-less keys.
func Parse(r io.Reader) (*File, error) {
	file := New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		current *Section
		line    int
	)
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}

		if m := sectionPattern.FindStringSubmatch(text); m != nil {
			current = file.AddSection(m[1])
			continue
		}
		if current == nil {
			continue
		}
		if m := keyValuePattern.FindStringSubmatch(text); m != nil {
			// An empty key token ("=value") has nowhere to go.
			if k := current.AddKey(m[1]); k != nil {
				k.AddValue(m[2])
			}
			continue
		}
		current.AddKey(text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read failed after line %d: %w", line, err)
	}

	return file, nil
}

// Sections returns the sections in insertion order.
func (f *File) Sections() []*Section {
	return f.sections.values()
}

// Len returns the number of sections.
func (f *File) Len() int {
	return f.sections.len()
}

// AddSection returns the section with the given name, creating it if needed.
// It returns nil when the trimmed name is empty.
func (f *File) AddSection(name string) *Section {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return f.sections.put(name, newSection(name))
}

// Section looks up a section by name, returning nil when absent.
func (f *File) Section(name string) *Section {
	s, _ := f.sections.get(name)
	return s
}

// Key looks up a key by section and key name, returning nil when either is absent.
func (f *File) Key(section, key string) *Key {
	if s := f.Section(section); s != nil {
		return s.Key(key)
	}
	return nil
}

// RemoveSection deletes the named section, reporting whether it existed.
func (f *File) RemoveSection(name string) bool {
	return f.sections.remove(name)
}

// RemoveAllSections empties the file.
func (f *File) RemoveAllSections() {
	f.sections.clear()
}

// WriteTo writes every section header followed by one Key=Value line per value.
// Keys without values produce no output.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, s := range f.Sections() {
		fmt.Fprintf(&buf, "[%s]\n", s.Name())
		for _, k := range s.Keys() {
			for _, v := range k.values {
				fmt.Fprintf(&buf, "%s=%s\n", k.Name(), v)
			}
		}
	}
	return buf.WriteTo(w)
}

// Save writes the file content to w.
func (f *File) Save(w io.Writer) error {
	_, err := f.WriteTo(w)
	return err
}

// SaveFile atomically replaces the file at path with the serialized content.
func (f *File) SaveFile(path string) error {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return err
	}
	return fsutil.AtomicWriteFile(path, buf.Bytes())
}
