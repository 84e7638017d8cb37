package storage

import (
	"os"

	"github.com/charmbracelet/log"

	"ctp/internal/domain"
	"ctp/internal/parser"
)

// Storage reads the result file ctest leaves behind and exports run reports.
type Storage interface {
	// Latest returns the snapshot of the last ctest run in buildDir, or nil
	// when none exists.
	Latest(buildDir string) (*domain.TestingSnapshot, error)
	SaveReport(path string, report domain.RunReport) error
}

// FileReader reads whole files
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads from the local filesystem
type OSFileReader struct{}

func (OSFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ResultStore reads Testing/TAG and the Test.xml it points to.
type ResultStore struct {
	files  FileReader
	parser parser.Parser
	logger *log.Logger
}

// NewResultStore returns a Storage reading ctest result files through files.
func NewResultStore(files FileReader, p parser.Parser, logger *log.Logger) *ResultStore {
	if files == nil {
		files = OSFileReader{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ResultStore{files: files, parser: p, logger: logger}
}
