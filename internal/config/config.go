// Package config loads the daemon's configuration record: the fields
// spec.md §6.4 names as core, plus the optional MPRIS bridge toggle.
// Everything UI-level from the original application config (icons,
// library sources, slskd/musicbrainz/lastfm/radio/rename/notifications)
// has no component in this daemon and is dropped.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/waves/internal/waveserr"
)

// Config is the record consumed by the daemon core.
type Config struct {
	SocketPath   string `koanf:"socket_path"`
	PlaylistPath string `koanf:"playlist_path"`
	WorkingDir   string `koanf:"working_dir"`

	InitialNext    bool `koanf:"initial_next"`
	InitialRepeat  bool `koanf:"initial_repeat"`
	InitialShuffle bool `koanf:"initial_shuffle"`

	// SampleFormat names the device sample format preference. The beep
	// pipeline this daemon is built on always negotiates a float64
	// pipeline internally, so this is carried through for configuration
	// compatibility but has no effect on decode path selection — see
	// SPEC_FULL.md's note on collapsing the sample-format loop.
	SampleFormat string `koanf:"sample_format"`

	MPRIS MPRISConfig `koanf:"mpris"`
}

// MPRISConfig gates the optional D-Bus remote-control bridge.
type MPRISConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns a Config usable without any file present.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		SocketPath:   filepath.Join(os.TempDir(), "wavesd.sock"),
		PlaylistPath: filepath.Join(home, ".config", "wavesd", "queue.m3u"),
		WorkingDir:   home,
		SampleFormat: "f32",
	}
}

// Load reads path as TOML into a Config seeded with Default(). A
// missing file is not an error — the daemon runs with defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, waveserr.Wrap(waveserr.KindIO, err, "stat config %s", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return cfg, waveserr.Wrap(waveserr.KindIO, err, "load config %s", path)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, waveserr.Wrap(waveserr.KindInvalidParameters, err, "parse config %s", path)
	}
	return cfg, nil
}
