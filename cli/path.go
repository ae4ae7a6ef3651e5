package cli

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yakaboskic/meta-sanity/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

var defaultDirMode os.FileMode = 0o700

// basePrefix returns the base name used for the configuration and cache
// directories: the executable name, falling back to the package name.
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		base := filepath.Base(id)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		base = strings.TrimLeft(base, ".")

		if base == "" {
			return pkg.Name
		}

		return base
	},
)

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(
	func() string {
		dir, err := os.UserConfigDir()
		if err != nil {
			if dir, err = os.UserHomeDir(); err == nil {
				dir = filepath.Join(dir, ".config")
			} else if dir, err = os.Getwd(); err != nil {
				dir = "."
			}
		}

		return filepath.Join(dir, basePrefix())
	},
)

// cacheDir returns the cache directory path used for transient files.
var cacheDir = sync.OnceValue(
	func() string {
		dir, err := os.UserCacheDir()
		if err != nil {
			if dir, err = os.UserHomeDir(); err == nil {
				dir = filepath.Join(dir, ".cache")
			} else if dir, err = os.Getwd(); err != nil {
				dir = "."
			}
		}

		return filepath.Join(dir, basePrefix())
	},
)

// configPath joins the configuration directory with the given elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	if err := os.MkdirAll(configDir(), defaultDirMode); err != nil {
		return err
	}

	return os.MkdirAll(cacheDir(), defaultDirMode)
}
