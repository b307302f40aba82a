package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/handiism/multialbum/internal/audio"

	"github.com/handiism/multialbum/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Selection settings
	AudioExtension  string `toml:"audio_extension"`
	FailOnCollision bool   `toml:"fail_on_collision"`

	// Copy settings
	Workers         int  `toml:"workers"`
	CreateOutputDir bool `toml:"create_output_dir"`
	LockOutput      bool `toml:"lock_output"`

	// Renumber settings
	TrackNumberWidth int  `toml:"track_number_width"`
	Verify           bool `toml:"verify"`

	// Playlist settings
	CreatePlaylist         bool   `toml:"create_playlist"`
	PlaylistFormat         string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	PlaylistFileNameFormat string `toml:"playlist_file_name"`
	M3UExtended            bool   `toml:"m3u_extended"`

	// Logging settings
	LogLevel string `toml:"log_level"` // debug, info, warn, error
	LogFile  string `toml:"log_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		AudioExtension:  "m4a",
		FailOnCollision: false,

		Workers:         0,
		CreateOutputDir: true,
		LockOutput:      true,

		TrackNumberWidth: 3,
		Verify:           false,

		CreatePlaylist:         false,
		PlaylistFormat:         "m3u",
		PlaylistFileNameFormat: "playlist",
		M3UExtended:            true,

		LogLevel: "info",
	}
}

// DefaultPath returns ~/.config/multialbum/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "multialbum", "config.toml"), nil
}

// Load reads settings from a TOML file. An empty path means DefaultPath.
// A missing file yields DefaultSettings; keys absent from the file keep
// their default values.
func Load(path string) (*Settings, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	settings := DefaultSettings()
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// CreateSample writes the default settings to path, refusing to replace
// an existing file.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return DefaultSettings().Save(path)
}

// Validate ensures the settings are usable.
func (s *Settings) Validate() error {
	ext := s.AudioExtension
	if ext == "" {
		return errors.New("audio_extension must be set")
	}
	if strings.HasPrefix(ext, ".") {
		return fmt.Errorf("audio_extension %q must not start with a dot", ext)
	}
	if strings.ContainsAny(ext, `/\ `) {
		return fmt.Errorf("audio_extension %q must be a bare extension", ext)
	}
	if !audio.Supports(ext) {
		return fmt.Errorf("audio_extension %q: %w (use m4a, m4b, mp4 or mp3)", ext, audio.ErrUnsupportedFormat)
	}
	if s.Workers < 0 {
		return errors.New("workers must be zero (one per CPU) or positive")
	}
	if s.TrackNumberWidth < 1 || s.TrackNumberWidth > 9 {
		return errors.New("track_number_width must be between 1 and 9")
	}
	if _, ok := model.ParsePlaylistFormat(s.PlaylistFormat); !ok {
		return fmt.Errorf("playlist_format %q must be one of m3u, pls, wpl, zpl", s.PlaylistFormat)
	}
	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// WorkerCount returns the number of concurrent copy workers.
func (s *Settings) WorkerCount() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.NumCPU()
}

// ToPathConfig converts settings to PathConfig. The settings must have
// passed Validate; an unknown playlist format maps to m3u.
func (s *Settings) ToPathConfig() *model.PathConfig {
	pf, _ := model.ParsePlaylistFormat(s.PlaylistFormat)
	return &model.PathConfig{
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         pf,
	}
}
