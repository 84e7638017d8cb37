package parser

import "ctp/internal/domain"

// Parser turns a raw result document into a testing snapshot
type Parser interface {
	ParseResults(data []byte) (*domain.TestingSnapshot, error)
}
