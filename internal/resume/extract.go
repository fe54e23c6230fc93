package resume

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/muhammadolammi/interviewmate/internal/interview"
)

func ExtractText(mimeType string, data []byte) (string, error) {
	switch mimeType {
	case MimePlain:
		return string(data), nil

	case MimePDF:
		return extractPDFText(bytes.NewReader(data))

	case MimeDocx:
		return extractDocxText(bytes.NewReader(data))

	default:
		return "", fmt.Errorf("unsupported file type: %s", mimeType)
	}
}

// TextOf decodes an inline resume and extracts its text.
func TextOf(r interview.Resume) (string, error) {
	mimeType, data, err := Decode(r)
	if err != nil {
		return "", err
	}
	text, err := ExtractText(mimeType, data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func extractPDFText(r *bytes.Reader) (string, error) {
	pdfReader, err := pdf.NewReader(r, r.Size())
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(r *bytes.Reader) (string, error) {
	doc, err := docx.ReadDocxFromMemory(r, r.Size())
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}
