// Package resume turns uploaded résumés into structured data and scores them
// against job descriptions.
package resume

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText concatenates the plain text of every page.
func ExtractPDFText(r io.ReaderAt, size int64) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", &PDFError{Message: "malformed PDF", Cause: fmt.Errorf("%v", p)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", &PDFError{Message: "failed to open PDF", Cause: err}
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &PDFError{Message: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", &PDFError{Message: "no extractable text (scanned document?)"}
	}
	return text, nil
}

// ExtractPDFBytes is ExtractPDFText for an in-memory file.
func ExtractPDFBytes(data []byte) (string, error) {
	return ExtractPDFText(bytes.NewReader(data), int64(len(data)))
}
