// Package main is the MupeTalk CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"github.com/antonio-moreira/mupetalk/internal/blobstore"
	"github.com/antonio-moreira/mupetalk/internal/config"
	"github.com/antonio-moreira/mupetalk/internal/corpus"
	"github.com/antonio-moreira/mupetalk/internal/dialogue"
	"github.com/antonio-moreira/mupetalk/internal/extract"
	"github.com/antonio-moreira/mupetalk/internal/group"
	"github.com/antonio-moreira/mupetalk/internal/question"
	"github.com/antonio-moreira/mupetalk/internal/report"
	"github.com/antonio-moreira/mupetalk/internal/sample"
	"github.com/antonio-moreira/mupetalk/internal/segmentation"
	"github.com/antonio-moreira/mupetalk/internal/storage"
	"github.com/antonio-moreira/mupetalk/internal/watcher"
	"github.com/antonio-moreira/mupetalk/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/mupetalk/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if
// that exists it is used. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "extract":
		runExtract()
	case "aggregate":
		runAggregate()
	case "segment":
		runSegment()
	case "classify":
		runClassify()
	case "sample":
		runSample()
	case "validate":
		runValidate()
	case "version", "--version", "-v":
		fmt.Printf("mupetalk version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads the config and builds the logger shared by every command.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode),
	)
	return cfg, logger
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	pdfPath := fs.String("pdf", "", "interview transcript PDF")
	outPath := fs.String("out", "", "output CSV path")
	_ = fs.Parse(os.Args[2:])

	if *pdfPath == "" || *outPath == "" {
		fmt.Println("Usage: mupetalk extract -pdf <file.pdf> -out <file.csv>")
		os.Exit(1)
	}
	turns, err := extract.ParseInterviewPDF(*pdfPath)
	if err != nil {
		fmt.Printf("Failed to parse PDF: %v\n", err)
		os.Exit(1)
	}
	if err := extract.WriteCSV(*outPath, turns); err != nil {
		fmt.Printf("Failed to write CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Extracted %d turns to %s\n", len(turns), *outPath)
}

func runAggregate() {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	table, agg := loadCorpus(cfg, logger)
	catalog := openCatalog(cfg, logger)
	defer catalog.Close()

	ctx := context.Background()
	var rows []corpus.MupeTalkRow
	for _, id := range table.InterviewIDs() {
		blocks, missing, code, err := agg.Aggregate(id, table.ForInterview(id))
		if err != nil {
			logger.Error("skipping interview",
				zap.String("interview_id", id), zap.Error(err))
			continue
		}
		if len(missing) > 0 {
			logger.Warn("missing file ids",
				zap.String("interview_id", id), zap.Ints("file_ids", missing))
		}
		if err := catalog.UpsertInterview(ctx, &storage.InterviewRecord{
			InterviewID:     id,
			InterviewerCode: code,
			BlockCount:      len(blocks),
			MissingFileIDs:  missing,
		}); err != nil {
			logger.Error("failed to record interview",
				zap.String("interview_id", id), zap.Error(err))
		}
		rows = append(rows, blockRows(id, blocks)...)
		logger.Info("aggregated interview",
			zap.String("interview_id", id),
			zap.String("interviewer_code", code),
			zap.Int("blocks", len(blocks)),
		)
	}

	if err := corpus.WriteMupeTalkCSV(cfg.Corpus.MupeTalkCSVPath, rows); err != nil {
		logger.Fatal("failed to write table", zap.Error(err))
	}
	logger.Info("table written",
		zap.String("path", cfg.Corpus.MupeTalkCSVPath), zap.Int("rows", len(rows)))
}

func runSegment() {
	fs := flag.NewFlagSet("segment", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	interviewID := fs.String("interview", "", "only this interview (default: all)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	apiKey := os.Getenv(cfg.Segmentation.APIKeyEnv)
	if apiKey == "" {
		logger.Fatal("api key not set", zap.String("env", cfg.Segmentation.APIKeyEnv))
	}
	script, err := os.ReadFile(cfg.Segmentation.ScriptPath)
	if err != nil {
		logger.Fatal("failed to read script", zap.Error(err))
	}
	client := segmentation.NewClient(
		cfg.Segmentation.BaseURL, apiKey,
		cfg.Segmentation.Model, cfg.Segmentation.Temperature,
	)

	table, agg := loadCorpus(cfg, logger)
	ids := table.InterviewIDs()
	if *interviewID != "" {
		ids = []string{*interviewID}
	}

	ctx, cancel := signalContext()
	defer cancel()
	for _, id := range ids {
		qs, err := interviewQuestions(agg, table, id)
		if err != nil {
			logger.Error("skipping interview",
				zap.String("interview_id", id), zap.Error(err))
			continue
		}
		result, err := client.Segment(ctx, string(script), qs)
		if err != nil {
			logger.Error("segmentation request failed",
				zap.String("interview_id", id), zap.Error(err))
			continue
		}
		path, err := segmentation.Save(cfg.Segmentation.OutputDir, id, result)
		if err != nil {
			logger.Error("failed to save result",
				zap.String("interview_id", id), zap.Error(err))
			continue
		}
		logger.Info("segmentation saved",
			zap.String("interview_id", id), zap.String("path", path))
	}
}

func runClassify() {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	watch := fs.Bool("watch", false, "keep running and reprocess as new segmentation files land")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	table, agg := loadCorpus(cfg, logger)
	run := func() {
		if err := classifyAll(cfg, logger, table, agg); err != nil {
			logger.Error("classify pass failed", zap.Error(err))
		}
	}

	if !*watch {
		run()
		return
	}

	ctx, cancel := signalContext()
	defer cancel()
	watchOpts := []watcher.Option{}
	if cfg.Debug || *debug {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	w := watcher.New(cfg.Segmentation.OutputDir, func(path string) {
		logger.Info("segmentation file settled", zap.String("path", path))
		run()
	}, watchOpts...)
	if err := w.Start(ctx); err != nil {
		logger.Fatal("failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	run()
	<-ctx.Done()
	logger.Info("shutting down")
}

func runSample() {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	speaker := fs.String("speaker", "", "interviewer/speaker code to sample dialogues for")
	n := fs.Int("n", 1, "number of dialogues")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	if *speaker == "" {
		fmt.Println("Usage: mupetalk sample -speaker <code> [-n <count>]")
		os.Exit(1)
	}

	rows, err := corpus.ReadMupeTalkCSV(cfg.Corpus.MupeTalkCSVPath)
	if err != nil {
		logger.Fatal("failed to read table", zap.Error(err))
	}
	dialogues, err := sample.SpeakerDialogues(rows, *speaker, *n)
	if err != nil {
		logger.Fatal("failed to select dialogues", zap.Error(err))
	}

	store := blobstore.NewParquetStore(
		cfg.Sampling.ParquetDir, cfg.Sampling.Split, cfg.Sampling.ScanWorkers, logger,
	)
	asm := sample.NewAssembler(store, cfg.Sampling.OutputDir, logger)

	catalog := openCatalog(cfg, logger)
	defer catalog.Close()

	ctx, cancel := signalContext()
	defer cancel()
	written, err := asm.Assemble(ctx, dialogues)
	if err != nil {
		logger.Fatal("sampling failed", zap.Error(err))
	}
	for _, art := range written {
		if err := catalog.RecordSample(ctx, &storage.SampleRecord{
			InterviewID:  art.InterviewID,
			UnitIndex:    art.UnitIndex,
			GroupID:      art.GroupID,
			AudioPath:    art.AudioPath,
			MetadataPath: art.MetadataPath,
		}); err != nil {
			logger.Error("failed to record sample",
				zap.String("audio_path", art.AudioPath), zap.Error(err))
		}
	}
	logger.Info("samples written",
		zap.Int("units", len(written)), zap.String("dir", cfg.Sampling.OutputDir))
}

func runValidate() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: mupetalk validate <table.csv>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	rows, err := corpus.ReadMupeTalkCSV(path)
	if err != nil {
		fmt.Printf("Failed to read table: %v\n", err)
		os.Exit(1)
	}
	if err := corpus.ValidateMupeTalk(rows, question.IsValidLabel); err != nil {
		fmt.Printf("Validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: %d rows\n", len(rows))
}

// loadCorpus reads the raw utterance table and builds the aggregator.
func loadCorpus(cfg *config.Config, logger *zap.Logger) (*corpus.Table, *dialogue.Aggregator) {
	table, err := corpus.LoadCSV(cfg.Corpus.TrainCSVPath, cfg.Corpus.KeyColumn)
	if err != nil {
		logger.Fatal("failed to load corpus", zap.Error(err))
	}
	agg, err := dialogue.NewAggregator(cfg.Corpus.FilePattern)
	if err != nil {
		logger.Fatal("invalid file pattern", zap.Error(err))
	}
	return table, agg
}

func openCatalog(cfg *config.Config, logger *zap.Logger) *storage.Catalog {
	catalog, err := storage.NewCatalog(cfg.Catalog.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open catalog", zap.Error(err))
	}
	return catalog
}

// interviewQuestions aggregates one interview and extracts its question
// list in segmentation request form.
func interviewQuestions(agg *dialogue.Aggregator, table *corpus.Table, id string) ([]segmentation.Question, error) {
	blocks, _, code, err := agg.Aggregate(id, table.ForInterview(id))
	if err != nil {
		return nil, err
	}
	qRows, err := question.Extract(blocks, code)
	if err != nil {
		return nil, err
	}
	qs := make([]segmentation.Question, 0, len(qRows))
	for _, r := range qRows {
		qs = append(qs, segmentation.Question{ID: r.ID, StartTime: r.StartTime, Text: r.Text})
	}
	return qs, nil
}

// blockRows converts an interview's speaker blocks to unlabeled table rows.
func blockRows(id string, blocks []dialogue.SpeakerBlock) []corpus.MupeTalkRow {
	rows := make([]corpus.MupeTalkRow, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, corpus.MupeTalkRow{
			InterviewID:  id,
			FilePaths:    b.FilePaths,
			FileIDs:      b.FileIDs,
			SpeakerCode:  b.SpeakerCode,
			StartTime:    b.StartTime,
			EndTime:      b.EndTime,
			Duration:     b.Duration,
			OriginalText: b.OriginalText,
		})
	}
	return rows
}

// classifyAll runs the full labeling pass over every interview that has a
// segmentation result, then writes the MupeTalk table and the review
// workbook. Per-interview failures are logged and skipped.
func classifyAll(cfg *config.Config, logger *zap.Logger, table *corpus.Table, agg *dialogue.Aggregator) error {
	files, err := segmentation.ListFiles(cfg.Segmentation.OutputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no segmentation results found",
			zap.String("dir", cfg.Segmentation.OutputDir))
		return nil
	}

	classifier := question.NewClassifier(logger)
	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var allRows []corpus.MupeTalkRow
	var allGroups []group.DialogueGroup
	for _, id := range ids {
		tree, err := segmentation.LoadFile(files[id])
		if err != nil {
			logger.Error("failed to load segmentation result",
				zap.String("interview_id", id), zap.Error(err))
			continue
		}
		groups, err := classifyInterview(classifier, agg, table, id, tree)
		if err != nil {
			logger.Error("skipping interview",
				zap.String("interview_id", id), zap.Error(err))
			continue
		}
		for _, g := range groups {
			allRows = append(allRows, g.Rows...)
		}
		allGroups = append(allGroups, groups...)
		logger.Info("classified interview",
			zap.String("interview_id", id), zap.Int("groups", len(groups)))
	}
	if len(allRows) == 0 {
		return fmt.Errorf("no interview classified successfully")
	}

	if err := corpus.WriteMupeTalkCSV(cfg.Corpus.MupeTalkCSVPath, allRows); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	if err := os.MkdirAll(cfg.Report.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	colors := group.ColorMapping(allGroups, cfg.Report.Palette)
	reportPath := filepath.Join(cfg.Report.OutputDir, "mupetalk_blocks.xlsx")
	if err := report.WriteExcel(reportPath, allRows, colors); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("classify pass complete",
		zap.String("table", cfg.Corpus.MupeTalkCSVPath),
		zap.String("report", reportPath),
		zap.Int("rows", len(allRows)),
	)
	return nil
}

// classifyInterview labels one interview's blocks from its segmentation
// tree and partitions them into dialogue groups, one group per maximal
// run of blocks sharing a subsection label.
func classifyInterview(classifier *question.Classifier, agg *dialogue.Aggregator, table *corpus.Table, id string, tree *segmentation.Result) ([]group.DialogueGroup, error) {
	blocks, _, code, err := agg.Aggregate(id, table.ForInterview(id))
	if err != nil {
		return nil, err
	}
	qRows, err := question.Extract(blocks, code)
	if err != nil {
		return nil, err
	}
	classified, err := classifier.Classify(tree, qRows, question.LevelSubsection)
	if err != nil {
		return nil, err
	}
	labelByBlock := make(map[int]string, len(classified))
	for _, c := range classified {
		labelByBlock[c.ID] = string(c.Subsection)
	}

	rows := blockRows(id, blocks)
	for i := range rows {
		rows[i].Subsection = labelByBlock[i]
	}
	rows = group.ForwardFillLabels(rows)

	// Group ids count subsection changes; blocks before the first label
	// have no group.
	groupIDs := make([]int, len(rows))
	gid := 0
	for i, r := range rows {
		if r.Subsection == "" {
			groupIDs[i] = 0
			continue
		}
		if i == 0 || r.Subsection != rows[i-1].Subsection {
			gid++
		}
		groupIDs[i] = gid
	}
	return group.Assemble(rows, func(i int, _ corpus.MupeTalkRow) (int, bool) {
		return groupIDs[i], groupIDs[i] > 0
	})
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func printUsage() {
	fmt.Println(`MupeTalk - oral-history dialogue aggregation toolkit

Usage:
  mupetalk <command> [flags]

Commands:
  extract    Extract question/answer turns from a transcript PDF
             mupetalk extract -pdf <file.pdf> -out <file.csv>

  aggregate  Aggregate raw utterances into speaker blocks
             mupetalk aggregate [-config <path>] [-debug]

  segment    Request interview segmentation from the LLM service
             mupetalk segment [-interview <id>] [-config <path>] [-debug]

  classify   Label blocks from segmentation results, build dialogue
             groups, write the MupeTalk table and the review workbook
             mupetalk classify [--watch] [-config <path>] [-debug]

  sample     Assemble per-dialogue audio and metadata samples
             mupetalk sample -speaker <code> [-n <count>] [-config <path>]

  validate   Schema-validate a persisted MupeTalk table
             mupetalk validate <table.csv>

  version    Show version
  help       Show this help`)
}
