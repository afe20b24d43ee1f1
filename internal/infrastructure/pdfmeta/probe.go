package pdfmeta

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Prober extracts lightweight metadata from PDF bytes. It is best-effort:
// a file that fails to parse yields an error the caller may ignore, since
// the AI service does the authoritative parsing.
type Prober struct{}

func NewProber() *Prober {
	return &Prober{}
}

func (p *Prober) Probe(content []byte) (map[string]any, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return map[string]any{
		"pages": reader.NumPage(),
	}, nil
}
