package storage

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"ctp/internal/domain"
)

const (
	testingDir = "Testing"
	tagFile    = "TAG"
	resultFile = "Test.xml"
)

// ResultPath resolves the result file of the last run in buildDir via the tag file
func (s *ResultStore) ResultPath(buildDir string) (string, error) {
	tagPath := filepath.Join(buildDir, testingDir, tagFile)
	data, err := s.files.ReadFile(tagPath)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "read %s", tagPath), domain.ErrMissingResult)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	tag := ""
	if scanner.Scan() {
		tag = strings.TrimSpace(scanner.Text())
	}
	if tag == "" {
		return "", errors.Wrapf(domain.ErrMissingResult, "empty tag file %s", tagPath)
	}
	return filepath.Join(buildDir, testingDir, tag, resultFile), nil
}

// Latest returns the snapshot of the last run. A missing or unreadable tag
// or result file yields no snapshot and no error.
func (s *ResultStore) Latest(buildDir string) (*domain.TestingSnapshot, error) {
	path, err := s.ResultPath(buildDir)
	if err != nil {
		s.logger.Debug("no test results", "dir", buildDir, "err", err)
		return nil, nil
	}

	data, err := s.files.ReadFile(path)
	if err != nil {
		s.logger.Debug("no test results", "file", path, "err", err)
		return nil, nil
	}

	snapshot, err := s.parser.ParseResults(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return snapshot, nil
}
