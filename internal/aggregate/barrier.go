package aggregate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"matrixctl/internal/sanitize"
	"matrixctl/pkg/logging"
)

// WaitForRecords blocks until at least expect result files exist in dir, or
// ctx is done. It is the fan-in barrier for runs where the aggregator starts
// before every slice has published: the directory is watched for new files,
// with a periodic recount as a safety net against missed events.
func WaitForRecords(ctx context.Context, dir string, expect int) error {
	logger := logging.Named("aggregate")

	count, err := countRecords(dir)
	if err != nil {
		return err
	}
	if count >= expect {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch results directory: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	logger.Info("waiting for result records",
		zap.String("dir", dir),
		zap.Int("have", count),
		zap.Int("expect", expect))

	for {
		select {
		case <-ctx.Done():
			count, _ = countRecords(dir)
			return fmt.Errorf("barrier gave up with %d/%d records published: %w", count, expect, ctx.Err())
		case event := <-watcher.Events:
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.HasSuffix(event.Name, sanitize.ResultFileExt) {
				continue
			}
		case err := <-watcher.Errors:
			logger.Warn("results directory watch error", zap.Error(err))
		case <-ticker.C:
			// Recount below.
		}

		count, err = countRecords(dir)
		if err != nil {
			return err
		}
		if count >= expect {
			return nil
		}
	}
}

func countRecords(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read results directory %s: %w", dir, err)
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sanitize.ResultFileExt) {
			continue
		}
		count++
	}
	return count, nil
}
