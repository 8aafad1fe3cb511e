package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

type DocumentExtractor interface {
	// Extract returns the plain text of an uploaded document.
	Extract(data []byte, filename string) (string, error)
	ExtractPDF(r io.ReaderAt, size int64) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
}

type documentExtractor struct{}

func NewDocumentExtractor() DocumentExtractor {
	return &documentExtractor{}
}

func (d *documentExtractor) Extract(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUnreadableDocument)
	}

	switch detectType(data, filename) {
	case mimePDF:
		content, err := d.ExtractPDF(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", err
		}
		return content.Text, nil
	case mimeDOCX:
		return extractDOCX(data)
	case mimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text file is not valid UTF-8", ErrUnreadableDocument)
		}
		return nonEmpty(string(data))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, mimetype.Detect(data).String())
	}
}

// ExtractPDF concatenates the plain text of every page in page order.
// Pages that fail to decode make the whole document unreadable; a partial
// resume would be scored as if it were complete.
func (d *documentExtractor) ExtractPDF(r io.ReaderAt, size int64) (content *PDFContent, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			content = nil
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %v", ErrUnreadableDocument, err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnreadableDocument, pageIndex, err)
		}

		textBuilder.WriteString(text)
	}

	text, err := nonEmpty(textBuilder.String())
	if err != nil {
		return nil, err
	}

	return &PDFContent{
		Text:      text,
		PageCount: totalPage,
	}, nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse docx: %v", ErrUnreadableDocument, err)
	}
	defer doc.Close()

	return nonEmpty(stripXMLTags(doc.Editable().GetContent()))
}

func detectType(data []byte, filename string) string {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(mimePDF):
		return mimePDF
	case mt.Is(mimeDOCX):
		return mimeDOCX
	case mt.Is(mimeText):
		return mimeText
	}

	// Zip-based office files are sometimes only detected as zip.
	if mt.Is("application/zip") && strings.EqualFold(filepath.Ext(filename), ".docx") {
		return mimeDOCX
	}
	return mt.String()
}

func nonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text content found (scanned or image-only document?)", ErrUnreadableDocument)
	}
	return text, nil
}

// stripXMLTags drops the WordprocessingML markup returned by the docx
// package, turning paragraph ends into newlines.
func stripXMLTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")

	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanText collapses blank lines and surrounding whitespace.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
