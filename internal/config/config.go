// Package config loads the TOML configuration, writing defaults on
// first launch.
package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "dodue.db"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Add           string `toml:"add"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Delete        string `toml:"delete"`
	Finish        string `toml:"finish"`
	Today         string `toml:"today"`
	EditName      string `toml:"edit_name"`
	EditDoDate    string `toml:"edit_do_date"`
	EditDueDate   string `toml:"edit_due_date"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
	Help          string `toml:"help"`
	ToggleOverdue string `toml:"toggle_overdue"`
	ToggleCurrent string `toml:"toggle_current"`
	ToggleLater   string `toml:"toggle_later"`
	ToggleConfirm string `toml:"toggle_confirm_deletes"`
}

type Config struct {
	DBPath  string `toml:"db_path"`
	LogPath string `toml:"log_path"`
	Keys    Keymap `toml:"keys"`
}

// ResolveConfigPath puts the config under the user config dir when one
// is available, next to the binary otherwise.
func ResolveConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, "dodue", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:  filepath.Join(dir, DefaultDBName),
		LogPath: "",
		Keys: Keymap{
			Quit:          "q",
			Add:           "a",
			Up:            "k",
			Down:          "j",
			Delete:        "d",
			Finish:        "f",
			Today:         "t",
			EditName:      "1",
			EditDoDate:    "2",
			EditDueDate:   "3",
			Confirm:       "enter",
			Cancel:        "esc",
			Help:          "?",
			ToggleOverdue: "o",
			ToggleCurrent: "c",
			ToggleLater:   "l",
			ToggleConfirm: "C",
		},
	}
}
