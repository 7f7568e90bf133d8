package native

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when no Arx Control library can be located.
var ErrNotFound = errors.New("arx control library not found")

// Resolver locates the Arx Control library on disk. The filesystem and
// environment lookup are injectable so path probing can be tested
// against fake state instead of a real SDK install.
type Resolver struct {
	Fs        afero.Fs
	LookupEnv func(key string) (string, bool)
	GOOS      string
	GOARCH    string
}

// NewResolver returns a Resolver backed by the real filesystem and
// process environment.
func NewResolver() *Resolver {
	return &Resolver{
		Fs:        afero.NewOsFs(),
		LookupEnv: os.LookupEnv,
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
	}
}

// Resolve returns the library path to load. A non-empty override wins
// and must exist; otherwise the default Logitech Gaming Software install
// location is probed. Returns ErrNotFound when no candidate exists.
func (r *Resolver) Resolve(override string) (string, error) {
	if override != "" {
		ok, err := afero.Exists(r.Fs, override)
		if err != nil {
			return "", fmt.Errorf("failed to check library path %s: %w", override, err)
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNotFound, override)
		}
		return override, nil
	}

	def := r.defaultPath()
	if def == "" {
		return "", fmt.Errorf("%w: no default install location on %s", ErrNotFound, r.GOOS)
	}

	ok, err := afero.Exists(r.Fs, def)
	if err != nil {
		return "", fmt.Errorf("failed to check library path %s: %w", def, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, def)
	}
	return def, nil
}

// defaultPath returns the library location under the Logitech Gaming
// Software install directory, or "" when the platform has no default.
func (r *Resolver) defaultPath() string {
	if r.GOOS != "windows" {
		return ""
	}

	programFiles, ok := r.LookupEnv("ProgramW6432")
	if !ok {
		programFiles, ok = r.LookupEnv("ProgramFiles")
	}
	if !ok {
		return ""
	}

	arch := "x64"
	if r.GOARCH == "386" {
		arch = "x86"
	}

	return filepath.Join(programFiles, "Logitech Gaming Software",
		"SDK", "Arx Control", arch, "LogitechGArxControl.dll")
}
