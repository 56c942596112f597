package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kopilka/internal/log"
)

// Sink persists aggregation results as JSON files under a reports
// directory. A failed write is logged and swallowed: report persistence is
// a side channel and must never fail the caller.
type Sink struct {
	dir string
	log *log.Logger
	now func() time.Time
}

func NewSink(dir string, logger *log.Logger) *Sink {
	return &Sink{
		dir: dir,
		log: logger.WithComponent(log.ComponentSink),
		now: time.Now,
	}
}

// WithFileSink runs the aggregation and persists its result, returning the
// result unchanged. An empty filename defaults to
// report_<operation>_<timestamp>.json.
func WithFileSink[T any](s *Sink, operation, filename string, fn func() T) T {
	result := fn()
	if s == nil {
		return result
	}

	name := filename
	if name == "" {
		name = fmt.Sprintf("report_%s_%s.json", operation, s.now().Format("20060102_150405"))
	}
	s.write(operation, name, result)
	return result
}

func (s *Sink) write(operation, name string, result any) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.log.Error("Failed to create reports directory",
			log.FieldReport, operation,
			log.FieldPath, s.dir,
			log.FieldError, err)
		return
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.log.Error("Failed to serialize report",
			log.FieldReport, operation,
			log.FieldError, err)
		return
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.log.Error("Failed to write report file",
			log.FieldReport, operation,
			log.FieldPath, path,
			log.FieldError, err)
		return
	}

	s.log.Info("Report saved",
		log.FieldReport, operation,
		log.FieldPath, path)
}
