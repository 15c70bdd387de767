package docparse

import (
	"fmt"
	"path/filepath"
	"strings"

	fitz "github.com/gen2brain/go-fitz"

	"github.com/archgram/archgram/internal/domain/pipeline"
)

// Parser satisfies the pipeline's TextExtractor port.
type Parser struct{}

func (Parser) Text(filename string, data []byte) (string, error) {
	return Text(filename, data)
}

// Text extracts plain text from an uploaded document. PDF pages are joined
// with page markers so the summarizer keeps some positional context; plain
// text formats pass through unchanged. Unsupported types and empty documents
// are rejected before any model call.
func Text(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfText(data)
	case ".txt", ".md":
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("%w: document is empty", pipeline.ErrInputInvalid)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: unsupported document type %q", pipeline.ErrInputInvalid, filepath.Ext(filename))
	}
}

func pdfText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("%w: unreadable pdf: %v", pipeline.ErrInputInvalid, err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		page, err := doc.Text(i)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s\n", i+1, page)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: no extractable text in pdf", pipeline.ErrInputInvalid)
	}
	return text, nil
}
