// Package configpaths resolves where egodrive looks for configuration and
// where it keeps the files it writes itself.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDir    = "egodrive"
	systemDir = "/etc/egodrive"

	// AutoPath asks for the default location of a data file.
	AutoPath = "auto"
	// RecordingFile is the session database under the data directory.
	RecordingFile = "sessions.db"
)

// Config file bases: the per-command files config init writes plus shared
// ones.
var configBases = []string{"egodrive", "config", "drive", "ctl"}

// DefaultConfigDir returns the platform-specific configuration directory.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, appDir), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appDir), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultDataDir returns where recordings and the generated API key live.
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if local := os.Getenv("LocalAppData"); local != "" {
			return filepath.Join(local, appDir), nil
		}
		return DefaultConfigDir()
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".local", "share", appDir), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultDataPath returns name inside the data directory.
func DefaultDataPath(name string) (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// RecordingPath resolves the recorder.path setting. Empty stays empty and
// disables recording; AutoPath picks the session database in the data
// directory and creates that directory.
func RecordingPath(setting string) (string, error) {
	if setting != AutoPath {
		return setting, nil
	}
	p, err := DefaultDataPath(RecordingFile)
	if err != nil {
		return "", err
	}
	if err := EnsureDir(p); err != nil {
		return "", err
	}
	return p, nil
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// FileName returns base with the extension the loader for format reads.
func FileName(base, format string) string {
	switch format {
	case "yaml", "yml":
		return base + ".yaml"
	case "toml":
		return base + ".toml"
	default:
		return base + ".json"
	}
}

// ConfigCandidatePaths builds candidate paths for config files per format.
// A user path comes first and goes to the loader matching its extension.
// Then the working directory, the config directory and on unix /etc/egodrive
// are searched.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userPath)
		case ".toml":
			tomlPaths = append(tomlPaths, userPath)
		default:
			jsonPaths = append(jsonPaths, userPath)
		}
	}

	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if dir, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	if runtime.GOOS != "windows" {
		dirs = append(dirs, systemDir)
	}

	for _, dir := range dirs {
		for _, base := range configBases {
			jsonPaths = append(jsonPaths, filepath.Join(dir, FileName(base, "json")))
			yamlPaths = append(yamlPaths, filepath.Join(dir, FileName(base, "yaml")), filepath.Join(dir, base+".yml"))
			tomlPaths = append(tomlPaths, filepath.Join(dir, FileName(base, "toml")))
		}
	}
	return jsonPaths, yamlPaths, tomlPaths
}
