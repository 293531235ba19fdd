// Package config provides configuration loading and structs for the MupeTalk toolkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the toolkit. Every constant the pipeline
// depends on (paths, the file-path pattern, the color palette, the LLM
// service) lives here; components receive what they need explicitly.
type Config struct {
	Debug        bool               `yaml:"debug"`
	Corpus       CorpusConfig       `yaml:"corpus"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Sampling     SamplingConfig     `yaml:"sampling"`
	Report       ReportConfig       `yaml:"report"`
	Catalog      CatalogConfig      `yaml:"catalog"`
}

// CorpusConfig holds the input table location and file-path parsing settings.
type CorpusConfig struct {
	// TrainCSVPath is the raw per-utterance table.
	TrainCSVPath string `yaml:"train_csv_path"`
	// KeyColumn is the grouping key column, "audio_id" or "interview_id".
	KeyColumn string `yaml:"key_column"`
	// FilePattern extracts the study code and file counter from file_path.
	// Must contain the named groups "mupe_code" and "file_id".
	FilePattern string `yaml:"file_pattern"`
	// MupeTalkCSVPath is where the derived MupeTalk table is written.
	MupeTalkCSVPath string `yaml:"mupetalk_csv_path"`
}

// SegmentationConfig holds the LLM segmentation collaborator settings.
type SegmentationConfig struct {
	// ScriptPath is the reference interview script sent with every request.
	ScriptPath string `yaml:"script_path"`
	// OutputDir is where interview_segmentation_<id>.json files live.
	OutputDir string `yaml:"output_dir"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	// Temperature for the structured segmentation request.
	Temperature float64 `yaml:"temperature"`
}

// SamplingConfig holds blob-store and sample-output settings.
type SamplingConfig struct {
	// ParquetDir is the root of the blob store; shards live under <dir>/data.
	ParquetDir string `yaml:"parquet_dir"`
	// Split filters shard filenames (e.g. "train").
	Split string `yaml:"split"`
	// OutputDir receives sample_<idx>.wav / sample_<idx>.json pairs.
	OutputDir string `yaml:"output_dir"`
	// ScanWorkers bounds the concurrent shard scan; 1 means sequential.
	ScanWorkers int `yaml:"scan_workers"`
}

// ReportConfig holds Excel export settings.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	// Palette is the hex color cycle for dialogue groups.
	Palette []string `yaml:"palette"`
}

// CatalogConfig holds the run-catalog database location.
type CatalogConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.TrainCSVPath = expandPath(cfg.Corpus.TrainCSVPath, configDir)
	cfg.Corpus.MupeTalkCSVPath = expandPath(cfg.Corpus.MupeTalkCSVPath, configDir)
	cfg.Segmentation.ScriptPath = expandPath(cfg.Segmentation.ScriptPath, configDir)
	cfg.Segmentation.OutputDir = expandPath(cfg.Segmentation.OutputDir, configDir)
	cfg.Sampling.ParquetDir = expandPath(cfg.Sampling.ParquetDir, configDir)
	cfg.Sampling.OutputDir = expandPath(cfg.Sampling.OutputDir, configDir)
	cfg.Report.OutputDir = expandPath(cfg.Report.OutputDir, configDir)
	cfg.Catalog.DatabasePath = expandPath(cfg.Catalog.DatabasePath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
