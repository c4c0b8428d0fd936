package options

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Encoding holds the encoder tunables. These are rarely-changed quality knobs
// kept out of the per-invocation flag surface; a config file can override the
// defaults.
type Encoding struct {
	CRFX264      int    `yaml:"crf_x264"`
	CRFX265      int    `yaml:"crf_x265"`
	QPNvenc      int    `yaml:"qp_nvenc"`
	Preset       string `yaml:"preset"`
	AudioBitrate string `yaml:"audio_bitrate"`
	GIFPalette   int    `yaml:"gif_palette"`
	GIFDither    string `yaml:"gif_dither"`
}

// DefaultEncoding returns the built-in tunables.
func DefaultEncoding() *Encoding {
	return &Encoding{
		CRFX264:      20,
		CRFX265:      24,
		QPNvenc:      21,
		Preset:       "slow",
		AudioBitrate: "384k",
		GIFPalette:   256,
		GIFDither:    "floyd_steinberg",
	}
}

// Validate checks the tunables after a config file merge.
func (e *Encoding) Validate() error {
	var errs []string

	if e.CRFX264 < 0 || e.CRFX264 > 51 {
		errs = append(errs, "crf_x264 must be between 0 and 51")
	}
	if e.CRFX265 < 0 || e.CRFX265 > 51 {
		errs = append(errs, "crf_x265 must be between 0 and 51")
	}
	if e.QPNvenc < 0 || e.QPNvenc > 51 {
		errs = append(errs, "qp_nvenc must be between 0 and 51")
	}
	if e.Preset == "" {
		errs = append(errs, "preset is required")
	}
	if e.AudioBitrate == "" {
		errs = append(errs, "audio_bitrate is required")
	}
	if e.GIFPalette < 2 || e.GIFPalette > 256 {
		errs = append(errs, "gif_palette must be between 2 and 256")
	}
	ditherOK := false
	for _, d := range gifDithers {
		if e.GIFDither == d {
			ditherOK = true
			break
		}
	}
	if !ditherOK {
		errs = append(errs, fmt.Sprintf("gif_dither must be one of %s", strings.Join(gifDithers, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(errs, ", "))
	}
	return nil
}

// LoadEncodingFile loads tunables from a YAML file, on top of the defaults.
func LoadEncodingFile(path string) (*Encoding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	enc := DefaultEncoding()
	if err := yaml.Unmarshal(data, enc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return enc, nil
}

// FindConfigFile searches the standard locations. Returns empty string when
// no config file exists (non-fatal).
func FindConfigFile() string {
	locations := []string{
		"./ffauto.yaml",
		"./ffauto.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "ffauto", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "ffauto", "config.yml"),
		"/etc/ffauto/config.yaml",
		"/etc/ffauto/config.yml",
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadEncoding resolves the tunables: defaults, then the first config file
// found, then validation.
func LoadEncoding() (*Encoding, error) {
	enc := DefaultEncoding()

	if path := FindConfigFile(); path != "" {
		fileEnc, err := LoadEncodingFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		enc = fileEnc
	}

	if err := enc.Validate(); err != nil {
		return nil, err
	}
	return enc, nil
}
