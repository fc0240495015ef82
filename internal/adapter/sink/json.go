// Package sink publishes finished run results. The JSON sink is the
// default: it streams the full result document to a writer.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
)

// JSONSink implements ports.ResultSink by encoding the run result as
// indented JSON to the configured writer.
type JSONSink struct {
	w   io.Writer
	log *zap.Logger
}

// NewJSONSink creates a sink writing to w.
func NewJSONSink(w io.Writer, log *zap.Logger) *JSONSink {
	return &JSONSink{w: w, log: log}
}

// Publish encodes one run result.
func (s *JSONSink) Publish(ctx context.Context, result *domain.RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("publish run %s: %w", result.RunID, err)
	}
	s.log.Info("run result published",
		zap.String("run", result.RunID),
		zap.String("state", string(result.State)),
	)
	return nil
}
