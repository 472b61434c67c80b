// internal/infra/recipients/loader.go
package recipients

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileResult is the outcome of reading one webhook list file.
type FileResult struct {
	Path string
	URLs []string
	Err  error
}

// LoadFiles reads each file independently. A failure is recorded in that file's
// result and does not affect the others.
func LoadFiles(paths []string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		urls, err := readFile(path)
		results = append(results, FileResult{Path: path, URLs: urls, Err: err})
	}
	return results
}

func readFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook file %s: %w", path, err)
	}
	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan webhook file %s: %w", path, err)
	}
	return urls, nil
}

// Collector merges explicit webhook URLs with the contents of webhook files.
// Files are re-read on every call.
type Collector struct {
	explicit []string
	files    []string
	logger   *logrus.Entry
}

func NewCollector(explicit, files []string, logger *logrus.Entry) *Collector {
	return &Collector{explicit: explicit, files: files, logger: logger}
}

// Recipients returns explicit URLs first, then file URLs in file order.
// Duplicates are kept. Unreadable files are logged and skipped.
func (c *Collector) Recipients() []string {
	out := make([]string, 0, len(c.explicit))
	out = append(out, c.explicit...)
	for _, res := range LoadFiles(c.files) {
		if res.Err != nil {
			c.logger.Warnf("Skipping webhook file: %v", res.Err)
			continue
		}
		c.logger.Debugf("Loaded %d webhook URLs from %s.", len(res.URLs), res.Path)
		out = append(out, res.URLs...)
	}
	return out
}

// Files returns the configured webhook file paths.
func (c *Collector) Files() []string {
	return c.files
}
