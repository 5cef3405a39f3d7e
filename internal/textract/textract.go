// Package textract turns uploaded documents into plain text for extraction.
// Conversion is best effort: callers always get usable text, and the error
// only reports that some content may be missing.
package textract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gen2brain/go-fitz"
	"github.com/nguyenthenguyen/docx"
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindHTML Kind = "html"
	KindText Kind = "text"

	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeHTML = "text/html"
)

var whitespace = regexp.MustCompile(`[ \t\f\v]+`)

// DetectType prefers the declared MIME type and falls back to the file extension.
func DetectType(mimeType, fileName string) Kind {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	switch mimeType {
	case mimePDF:
		return KindPDF
	case mimeDOCX:
		return KindDOCX
	case mimeHTML, "application/xhtml+xml":
		return KindHTML
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".html", ".htm":
		return KindHTML
	default:
		return KindText
	}
}

// ContentType returns the MIME type used when archiving a file of this kind.
func (k Kind) ContentType() string {
	switch k {
	case KindPDF:
		return mimePDF
	case KindDOCX:
		return mimeDOCX
	case KindHTML:
		return mimeHTML + "; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func Extract(content []byte, mimeType, fileName string) (string, error) {
	switch DetectType(mimeType, fileName) {
	case KindPDF:
		return fromPDF(content)
	case KindDOCX:
		return fromDOCX(content)
	case KindHTML:
		return fromHTML(content), nil
	default:
		return fromText(content), nil
	}
}

func fromText(content []byte) string {
	return normalize(strings.ToValidUTF8(string(content), ""))
}

func fromPDF(content []byte) (string, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var (
		text   strings.Builder
		failed []error
	)
	for n := 0; n < doc.NumPage(); n++ {
		page, err := doc.Text(n)
		if err != nil {
			failed = append(failed, fmt.Errorf("page %d: %w", n+1, err))
			continue
		}
		text.WriteString(page)
		text.WriteString("\n\n")
	}

	return normalize(text.String()), errors.Join(failed...)
}

func fromDOCX(content []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	text, err := documentText(doc.Editable().GetContent())
	return normalize(text), err
}

// documentText collects w:t runs, breaking lines at paragraphs and explicit breaks.
func documentText(documentXML string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		text   strings.Builder
		inText bool
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return text.String(), fmt.Errorf("parse docx body: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				text.WriteString("\t")
			case "br", "cr":
				text.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}

	return text.String(), nil
}

func fromHTML(content []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return fromText(content)
	}

	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()

	var blocks []string
	doc.Find("p, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) > 0 {
		return normalize(strings.Join(blocks, "\n"))
	}

	return normalize(doc.Find("body").Text())
}

// normalize collapses runs of horizontal whitespace and blank lines.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(whitespace.ReplaceAllString(line, " "))
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
