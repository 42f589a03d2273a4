package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/asaidimu/go-fieldguard/core/metadata"
)

// ReadAll reads one issue per line from r. Lines are trimmed of surrounding
// whitespace and blank lines are skipped. Lines have no length limit. Rows are
// not validated here; a bad row only fails when one of its fields is accessed.
func ReadAll(r io.Reader, table metadata.Table, options *Options) ([]Issue, error) {
	var issues []Issue
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
		if row := strings.TrimSpace(line); row != "" {
			issues = append(issues, NewIssue(row, table, options))
		}
		if err != nil {
			return issues, nil
		}
	}
}

// LoadFile reads the issues file at path.
func LoadFile(path string, table metadata.Table, options *Options) ([]Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open issues file %s: %w", path, err)
	}
	defer f.Close()
	return ReadAll(f, table, options)
}
