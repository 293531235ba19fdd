package config

// DefaultPalette is the fixed 25-color cycle used to paint dialogue groups
// in Excel reports. Matches the qualitative palette the corpus annotations
// were reviewed with.
var DefaultPalette = []string{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00",
	"#ffff33", "#a65628", "#f781bf", "#999999", "#66c2a5",
	"#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f",
	"#e5c494", "#b3b3b3", "#1b9e77", "#d95f02", "#7570b3",
	"#e7298a", "#66a61e", "#e6ab02", "#a6761d", "#666666",
}

// DefaultFilePattern matches raw segment references such as
// "pc_ma_hv229_0042_....wav", capturing the study code and the file counter.
const DefaultFilePattern = `pc_ma_(?P<mupe_code>hv\d{3})_(?P<file_id>\d+)_`

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Corpus.KeyColumn == "" {
		cfg.Corpus.KeyColumn = "audio_id"
	}
	if cfg.Corpus.FilePattern == "" {
		cfg.Corpus.FilePattern = DefaultFilePattern
	}
	if cfg.Corpus.MupeTalkCSVPath == "" {
		cfg.Corpus.MupeTalkCSVPath = "./mupetalk_train.csv"
	}
	if cfg.Segmentation.ScriptPath == "" {
		cfg.Segmentation.ScriptPath = "./roteiro_entrevista.md"
	}
	if cfg.Segmentation.OutputDir == "" {
		cfg.Segmentation.OutputDir = "./interview_segmentations"
	}
	if cfg.Segmentation.APIKeyEnv == "" {
		cfg.Segmentation.APIKeyEnv = "VERTEX_AI_API_KEY"
	}
	if cfg.Segmentation.Model == "" {
		cfg.Segmentation.Model = "gemini-3-pro-preview"
	}
	if cfg.Segmentation.Temperature == 0 {
		cfg.Segmentation.Temperature = 0.1
	}
	if cfg.Sampling.Split == "" {
		cfg.Sampling.Split = "train"
	}
	if cfg.Sampling.OutputDir == "" {
		cfg.Sampling.OutputDir = "./samples"
	}
	if cfg.Sampling.ScanWorkers == 0 {
		cfg.Sampling.ScanWorkers = 1
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "./excel_files"
	}
	if len(cfg.Report.Palette) == 0 {
		cfg.Report.Palette = DefaultPalette
	}
	if cfg.Catalog.DatabasePath == "" {
		cfg.Catalog.DatabasePath = "./mupetalk_catalog.db"
	}
}
