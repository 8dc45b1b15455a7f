package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPDFBytes_RejectsNonPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"plain text", []byte("this is not a pdf")},
		{"truncated header", []byte("%PDF-1.4\n1 0 obj\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractPDFBytes(tt.data)
			require.Error(t, err)
			assert.Empty(t, text)
			var pdfErr *PDFError
			assert.ErrorAs(t, err, &pdfErr)
		})
	}
}
