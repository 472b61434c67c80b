// internal/infra/crontab/writer.go
package crontab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bell_cron_generator/internal/domain/trigger"
)

// WriteLines renders one crontab line per record.
func WriteLines(w io.Writer, records []trigger.Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintln(bw, r.Line()); err != nil {
			return fmt.Errorf("failed to write crontab line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush crontab output: %w", err)
	}
	return nil
}

// StreamWriter writes records to an already open stream such as stdout.
type StreamWriter struct {
	w io.Writer
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

func (s *StreamWriter) WriteRecords(records []trigger.Record) error {
	return WriteLines(s.w, records)
}

// FileWriter replaces a file atomically, so a cron daemon reading it never sees a partial table.
type FileWriter struct {
	path string
}

func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

func (f *FileWriter) WriteRecords(records []trigger.Record) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := WriteLines(tmp, records); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}
