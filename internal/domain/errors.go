package domain

import "github.com/cockroachdb/errors"

// Failures are scoped to the smallest node or run they affect; none is fatal to the process.
var (
	// ErrDecode is returned for an unknown encoding/compression or corrupt payload.
	ErrDecode = errors.New("cannot decode measurement value")
	// ErrMalformedResult is returned when a required element is missing from Test.xml.
	ErrMalformedResult = errors.New("malformed test results")
	// ErrMissingResult means no result file exists yet; this is a normal outcome.
	ErrMissingResult = errors.New("test results not found")
	// ErrToolInvocation is returned when ctest is unavailable or exits abnormally.
	ErrToolInvocation = errors.New("ctest invocation failed")
	// ErrCatalogMismatch is returned when a requested test has no catalog or result entry.
	ErrCatalogMismatch = errors.New("test not found")
	// ErrToolPathUnset is returned when no ctest executable is configured.
	ErrToolPathUnset = errors.New("ctest path is not set")
	// ErrNoBuildScope is returned when a node has no owning project.
	ErrNoBuildScope = errors.New("no build scope owns this test")
	// ErrPresetRequired is returned when presets are in use but none is selected.
	ErrPresetRequired = errors.New("test preset required")
)
