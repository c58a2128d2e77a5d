package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"matrixctl/internal/sanitize"
	"matrixctl/pkg/logging"
)

// DirPublisher copies result files into a shared artifacts directory, the
// workspace hand-off used when slices and the aggregation step share a
// filesystem. Writes are atomic create-or-replace: a temp file in the target
// directory followed by a rename, so a concurrent aggregator never observes
// a half-written record.
type DirPublisher struct {
	Dir    string
	logger *zap.Logger
}

// NewDirPublisher creates a publisher targeting dir.
func NewDirPublisher(dir string) *DirPublisher {
	return &DirPublisher{Dir: dir, logger: logging.Named("publish")}
}

// Publish copies localPath to <Dir>/<key>.results.
func (p *DirPublisher) Publish(ctx context.Context, localPath, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrPublish, localPath, err)
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrPublish, p.Dir, err)
	}

	dest := filepath.Join(p.Dir, key+sanitize.ResultFileExt)
	tmp, err := os.CreateTemp(p.Dir, key+".publish-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", ErrPublish, dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %v", ErrPublish, dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %v", ErrPublish, dest, err)
	}

	p.logger.Info("published result record",
		zap.String("key", key),
		zap.String("dest", dest))
	return nil
}
