package cli

import (
	"os"
	"path/filepath"
)

// DefaultConfigFile is the configuration file name inside the config dir.
const DefaultConfigFile = "config.yaml"

// Paths locates an app's per-user directories:
//
//	<UserConfigDir>/<app>/config.yaml
//	<UserCacheDir>/<app>/             (synthesized clips)
//	<UserConfigDir>/<app>/data/       (game archive)
type Paths struct {
	AppName string

	// ConfigBase and CacheBase are the OS user config and cache dirs.
	ConfigBase string
	CacheBase  string
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		cache = cfg
	}
	return &Paths{AppName: appName, ConfigBase: cfg, CacheBase: cache}, nil
}

// AppDir returns the app config directory
func (p *Paths) AppDir() string {
	return filepath.Join(p.ConfigBase, p.AppName)
}

// ConfigFile returns the config file path
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// CacheDir returns the app cache directory
func (p *Paths) CacheDir() string {
	return filepath.Join(p.CacheBase, p.AppName)
}

// DataDir returns the app data directory
func (p *Paths) DataDir() string {
	return filepath.Join(p.AppDir(), "data")
}

// EnsureDir creates dir if it doesn't exist
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
