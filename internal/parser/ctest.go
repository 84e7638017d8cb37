package parser

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"ctp/internal/domain"
)

// rawSite mirrors the subset of Test.xml that ctest writes for a test run
type rawSite struct {
	XMLName xml.Name    `xml:"Site"`
	Testing *rawTesting `xml:"Testing"`
}

type rawTesting struct {
	TestList       *rawTestList `xml:"TestList"`
	Tests          []rawTest    `xml:"Test"`
	EndDateTime    string       `xml:"EndDateTime"`
	ElapsedMinutes string       `xml:"ElapsedMinutes"`
}

type rawTestList struct {
	Tests []string `xml:"Test"`
}

type rawTest struct {
	Status          string      `xml:"Status,attr"`
	Name            *string     `xml:"Name"`
	Path            string      `xml:"Path"`
	FullName        string      `xml:"FullName"`
	FullCommandLine string      `xml:"FullCommandLine"`
	Results         *rawResults `xml:"Results"`
}

type rawResults struct {
	NamedMeasurements []rawNamedMeasurement `xml:"NamedMeasurement"`
	Measurement       *rawMeasurement       `xml:"Measurement"`
}

type rawNamedMeasurement struct {
	Type  string   `xml:"type,attr"`
	Name  string   `xml:"name,attr"`
	Value rawValue `xml:"Value"`
}

type rawMeasurement struct {
	Value *rawValue `xml:"Value"`
}

type rawValue struct {
	Encoding    string `xml:"encoding,attr"`
	Compression string `xml:"compression,attr"`
	Text        string `xml:",chardata"`
}

func (v rawValue) payload() Payload {
	return Payload{Encoding: v.Encoding, Compression: v.Compression, Text: v.Text}
}

// CTestParser parses the Test.xml documents written by ctest -T test
type CTestParser struct{}

// NewCTestParser creates a new CTestParser
func NewCTestParser() *CTestParser {
	return &CTestParser{}
}

// ParseResults parses a Test.xml document into a snapshot
func (p *CTestParser) ParseResults(data []byte) (*domain.TestingSnapshot, error) {
	var site rawSite
	if err := xml.Unmarshal(data, &site); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse Test.xml"), domain.ErrMalformedResult)
	}
	return p.cleanup(&site)
}

func (p *CTestParser) cleanup(site *rawSite) (*domain.TestingSnapshot, error) {
	if site.Testing == nil {
		return nil, errors.Wrap(domain.ErrMalformedResult, "missing <Testing>")
	}
	run := site.Testing

	snapshot := &domain.TestingSnapshot{
		TestList:       []string{},
		Tests:          make([]domain.TestResult, 0, len(run.Tests)),
		EndDateTime:    strings.TrimSpace(run.EndDateTime),
		ElapsedMinutes: strings.TrimSpace(run.ElapsedMinutes),
	}

	if run.TestList != nil {
		list := run.TestList.Tests
		// The format has no empty list; a lone empty entry stands for zero tests.
		if !(len(list) == 1 && strings.TrimSpace(list[0]) == "") {
			for _, name := range list {
				snapshot.TestList = append(snapshot.TestList, strings.TrimSpace(name))
			}
		}
	}

	for i, raw := range run.Tests {
		result, err := p.cleanupTest(raw)
		if err != nil {
			return nil, fmt.Errorf("test #%d: %w", i+1, err)
		}
		snapshot.Tests = append(snapshot.Tests, result)
	}

	return snapshot, nil
}

func (p *CTestParser) cleanupTest(raw rawTest) (domain.TestResult, error) {
	if raw.Name == nil {
		return domain.TestResult{}, errors.Wrap(domain.ErrMalformedResult, "missing <Name>")
	}

	status := domain.TestStatus(raw.Status)
	switch status {
	case domain.TestStatusPassed, domain.TestStatusFailed, domain.TestStatusNotRun:
	default:
		return domain.TestResult{}, errors.Wrapf(domain.ErrMalformedResult, "unknown status %q", raw.Status)
	}

	if raw.Results == nil || raw.Results.Measurement == nil || raw.Results.Measurement.Value == nil {
		return domain.TestResult{}, errors.Wrapf(domain.ErrMalformedResult, "test %q has no output measurement", *raw.Name)
	}

	var failure string
	decode := func(what string, v rawValue) string {
		text, err := Decode(v.payload())
		if err != nil {
			if failure == "" {
				failure = fmt.Sprintf("%s: %v", what, err)
			}
			return v.Text
		}
		return text
	}

	output := decode("output", *raw.Results.Measurement.Value)

	measurements := make(map[string]domain.Measurement, len(raw.Results.NamedMeasurements))
	for _, nm := range raw.Results.NamedMeasurements {
		value := nm.Value.Text
		if isTextual(nm.Type) {
			value = decode(fmt.Sprintf("measurement %q", nm.Name), nm.Value)
		}
		measurements[nm.Name] = domain.Measurement{
			Type:  nm.Type,
			Name:  nm.Name,
			Value: strings.TrimSpace(value),
		}
	}

	return domain.TestResult{
		Name:            strings.TrimSpace(*raw.Name),
		FullName:        strings.TrimSpace(raw.FullName),
		Path:            strings.TrimSpace(raw.Path),
		FullCommandLine: strings.TrimSpace(raw.FullCommandLine),
		Status:          status,
		Measurements:    measurements,
		Output:          output,
		DecodeFailure:   failure,
	}, nil
}

// isTextual reports whether a measurement type holds text rather than an
// attached file or image, which stays in its encoded form
func isTextual(measurementType string) bool {
	return measurementType == "" ||
		strings.HasPrefix(measurementType, "text/") ||
		strings.HasPrefix(measurementType, "numeric/")
}
