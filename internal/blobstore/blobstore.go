// Package blobstore resolves raw audio payloads by file-path key. The
// production store is a directory of parquet shards exported from the
// speech corpus; the Resolver interface keeps samplers testable without
// multi-gigabyte fixtures.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

// Resolver finds audio payloads for a set of file-path keys. Paths that
// cannot be found are reported, not treated as an error; availability
// policy belongs to the caller.
type Resolver interface {
	Resolve(ctx context.Context, paths []string) (found map[string][]byte, missing []string, err error)
}

type audioCell struct {
	Bytes []byte `parquet:"bytes"`
	Path  string `parquet:"path"`
}

type shardRow struct {
	FilePath string    `parquet:"file_path"`
	Audio    audioCell `parquet:"audio"`
}

// ParquetStore scans parquet shards under <root>/data whose file name
// contains the configured split substring. Shards are visited in sorted
// name order and the scan stops as soon as every requested path is found.
// The store holds no mutable state, so it is safe for concurrent use.
type ParquetStore struct {
	root    string
	split   string
	workers int
	logger  *zap.Logger
}

// NewParquetStore returns a store rooted at root. workers bounds shard
// parallelism; values below 2 scan sequentially.
func NewParquetStore(root, split string, workers int, logger *zap.Logger) *ParquetStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &ParquetStore{root: root, split: split, workers: workers, logger: logger}
}

func (s *ParquetStore) shards() ([]string, error) {
	pattern := filepath.Join(s.root, "data", "*.parquet")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing shards %s: %w", pattern, err)
	}
	var shards []string
	for _, m := range matches {
		if strings.Contains(filepath.Base(m), s.split) {
			shards = append(shards, m)
		}
	}
	sort.Strings(shards)
	if len(shards) == 0 {
		return nil, fmt.Errorf("no %q shards under %s", s.split, filepath.Join(s.root, "data"))
	}
	return shards, nil
}

// Resolve scans the split's shards for the requested paths.
func (s *ParquetStore) Resolve(ctx context.Context, paths []string) (map[string][]byte, []string, error) {
	needed := make(map[string]bool, len(paths))
	for _, p := range paths {
		needed[p] = true
	}
	found := make(map[string][]byte, len(paths))
	if len(needed) == 0 {
		return found, nil, nil
	}

	shards, err := s.shards()
	if err != nil {
		return nil, nil, err
	}

	var mu sync.Mutex
	remaining := len(needed)
	done := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return remaining == 0
	}

	scan := func(shard string) error {
		if done() {
			return nil
		}
		s.logger.Debug("scanning shard", zap.String("shard", filepath.Base(shard)))
		return s.scanShard(ctx, shard, func(path string, payload []byte) bool {
			mu.Lock()
			defer mu.Unlock()
			if needed[path] {
				if _, ok := found[path]; !ok {
					found[path] = payload
					remaining--
				}
			}
			return remaining > 0
		})
	}

	if s.workers < 2 || len(shards) < 2 {
		for _, shard := range shards {
			if err := scan(shard); err != nil {
				return nil, nil, err
			}
			if done() {
				break
			}
		}
	} else {
		sem := make(chan struct{}, s.workers)
		var wg sync.WaitGroup
		var scanErr error
		var errOnce sync.Once
		for _, shard := range shards {
			if done() {
				break
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(shard string) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := scan(shard); err != nil {
					errOnce.Do(func() { scanErr = err })
				}
			}(shard)
		}
		wg.Wait()
		if scanErr != nil {
			return nil, nil, scanErr
		}
	}

	var missing []string
	for _, p := range paths {
		if _, ok := found[p]; !ok {
			missing = append(missing, p)
		}
	}
	sort.Strings(missing)
	return found, missing, nil
}

// scanShard streams a shard's rows to visit until it returns false or the
// shard is exhausted.
func (s *ParquetStore) scanShard(ctx context.Context, path string, visit func(string, []byte) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening shard %s: %w", path, err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[shardRow](f)
	defer reader.Close()

	rows := make([]shardRow, 64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			if !visit(row.FilePath, row.Audio.Bytes) {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading shard %s: %w", path, err)
		}
	}
}
