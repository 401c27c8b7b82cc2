// Package locate finds the MapBasic compiler and the MapInfo Pro executable.
//
// Lookup order, first hit wins:
//  1. explicit path
//  2. environment variable
//  3. Windows registry App Paths key (default value), on Windows only
//  4. PATH lookup of the executable name
//  5. fixed fallback path, returned even if it does not exist
//
// Steps 1 to 3 only count when the file they name exists.
package locate

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrNotFound is returned by Require when no step produced a usable path.
var ErrNotFound = errors.New("executable not found")

// Options selects the lookup steps. Empty fields skip their step.
type Options struct {
	Path        string
	EnvVar      string
	RegistryKey string
	Name        string
	Fallback    string
}

// Compiler returns the default lookup for mapbasic.exe.
func Compiler() Options {
	return Options{
		EnvVar:      "MAPBASICEXE",
		RegistryKey: `SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\mapbasic.exe`,
		Name:        "mapbasic.exe",
		Fallback:    `C:\Program Files\MapInfo\MapBasic\mapbasic.exe`,
	}
}

// Host returns the default lookup for MapInfoPro.exe.
func Host() Options {
	return Options{
		EnvVar:      "MAPINFOEXE",
		RegistryKey: `SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\MapInfoPro.exe`,
		Name:        "MapInfoPro.exe",
		Fallback:    `C:\Program Files\MapInfo\Professional\MapInfoPro.exe`,
	}
}

// registryLookup reads the default value of an HKLM key; "" when unavailable.
var registryLookup = readRegistry

// Find walks the lookup chain and returns the first candidate.
// The result may not exist when only the fallback matched.
func Find(opts Options) string {
	if opts.Path != "" && isFile(opts.Path) {
		return opts.Path
	}
	if opts.EnvVar != "" {
		if p := os.Getenv(opts.EnvVar); p != "" && isFile(p) {
			return p
		}
	}
	if opts.RegistryKey != "" {
		if p := registryLookup(opts.RegistryKey); p != "" && isFile(p) {
			return p
		}
	}
	if opts.Name != "" {
		if p, err := exec.LookPath(opts.Name); err == nil {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return opts.Fallback
}

// Require is Find that also checks the result exists.
func Require(opts Options) (string, error) {
	p := Find(opts)
	if p == "" || !isFile(p) {
		return p, &NotFoundError{Name: opts.Name, Path: p}
	}
	return p, nil
}

// NotFoundError reports the path that was tried last.
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return "executable " + e.Name + " not found"
	}
	return "executable " + e.Name + " not found at '" + e.Path + "'"
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
