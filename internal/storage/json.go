package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"ctp/internal/domain"
)

// SaveReport writes a run report as indented JSON
func (s *ResultStore) SaveReport(path string, report domain.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create report dir")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write report")
	}
	s.logger.Debug("report written", "file", path, "tests", report.Meta.TotalTests)
	return nil
}
