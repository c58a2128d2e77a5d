// Package publish hands a slice's result file off to the shared location the
// aggregation step reads from. Publication never transforms content: the
// file written by the test runner is the file the aggregator sees. A
// publishing failure is fatal to the slice, because an unpublished record is
// indistinguishable from "those environments never ran".
package publish

import (
	"context"
	"errors"
)

// ErrPublish wraps every hand-off failure so callers can map it to the
// slice-fatal exit path.
var ErrPublish = errors.New("failed to publish result record")

// Publisher makes a local result file available to the aggregation step
// under the slice's sanitized key. Exactly one file is published per slice.
type Publisher interface {
	Publish(ctx context.Context, localPath, key string) error
}
