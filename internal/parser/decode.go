package parser

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"ctp/internal/domain"
)

// Payload is a measurement value as written by ctest, optionally wrapped
// with an encoding and a compression scheme
type Payload struct {
	Encoding    string
	Compression string
	Text        string
}

// Decode returns the plain text carried by the payload
func Decode(p Payload) (string, error) {
	if p.Encoding == "" && p.Compression == "" {
		return p.Text, nil
	}

	var raw []byte
	switch strings.ToLower(p.Encoding) {
	case "":
		raw = []byte(p.Text)
	case "base64":
		b, err := base64.StdEncoding.DecodeString(stripSpace(p.Text))
		if err != nil {
			return "", errors.Mark(errors.Wrap(err, "base64"), domain.ErrDecode)
		}
		raw = b
	case "hex":
		b, err := hex.DecodeString(stripSpace(p.Text))
		if err != nil {
			return "", errors.Mark(errors.Wrap(err, "hex"), domain.ErrDecode)
		}
		raw = b
	default:
		return "", errors.Wrapf(domain.ErrDecode, "unknown encoding %q", p.Encoding)
	}

	switch strings.ToLower(p.Compression) {
	case "":
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", errors.Mark(errors.Wrap(err, "gzip"), domain.ErrDecode)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return "", errors.Mark(errors.Wrap(err, "gzip"), domain.ErrDecode)
		}
		raw = out
	default:
		return "", errors.Wrapf(domain.ErrDecode, "unknown compression %q", p.Compression)
	}

	return string(raw), nil
}

// Encode wraps text the way ctest does for the given encoding and compression
func Encode(text, encoding, compression string) (Payload, error) {
	p := Payload{Encoding: encoding, Compression: compression}
	if encoding == "" && compression == "" {
		p.Text = text
		return p, nil
	}

	raw := []byte(text)
	switch strings.ToLower(compression) {
	case "":
	case "gzip":
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return Payload{}, err
		}
		if err := zw.Close(); err != nil {
			return Payload{}, err
		}
		raw = buf.Bytes()
	default:
		return Payload{}, errors.Wrapf(domain.ErrDecode, "unknown compression %q", compression)
	}

	switch strings.ToLower(encoding) {
	case "":
		p.Text = string(raw)
	case "base64":
		p.Text = base64.StdEncoding.EncodeToString(raw)
	case "hex":
		p.Text = hex.EncodeToString(raw)
	default:
		return Payload{}, errors.Wrapf(domain.ErrDecode, "unknown encoding %q", encoding)
	}
	return p, nil
}

// stripSpace drops the line breaks ctest inserts into long encoded values
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
