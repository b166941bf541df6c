package course

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
)

// Extractor turns one on-disk document format into plain text suitable
// for ParseDocument. Each implementation owns a set of file extensions.
type Extractor interface {
	// Supports reports whether this extractor handles the file at path,
	// judged by extension.
	Supports(path string) bool

	// ExtractText reads the file and returns its textual content.
	ExtractText(path string) (string, error)
}

// Extractors returns the built-in extractor chain in priority order.
func Extractors() []Extractor {
	return []Extractor{
		plainExtractor{},
		pdfExtractor{},
		htmlExtractor{},
		docxExtractor{},
	}
}

// ExtractorFor picks the first extractor that supports path, or nil if
// the format is unknown to the chain.
func ExtractorFor(path string, chain []Extractor) Extractor {
	for _, e := range chain {
		if e.Supports(path) {
			return e
		}
	}
	return nil
}

func hasExt(path string, exts ...string) bool {
	got := strings.ToLower(filepath.Ext(path))
	for _, want := range exts {
		if got == want {
			return true
		}
	}
	return false
}

// --- plain text ---

type plainExtractor struct{}

func (plainExtractor) Supports(path string) bool {
	return hasExt(path, ".txt", ".md")
}

func (plainExtractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("course: read %s: %w", filepath.Base(path), err)
	}
	return string(data), nil
}

// --- pdf ---

type pdfExtractor struct{}

func (pdfExtractor) Supports(path string) bool {
	return hasExt(path, ".pdf")
}

func (pdfExtractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("course: read %s: %w", filepath.Base(path), err)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("course: parse pdf %s: %w", filepath.Base(path), err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("course: extract pdf text %s: %w", filepath.Base(path), err)
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("course: extract pdf text %s: %w", filepath.Base(path), err)
	}
	return string(text), nil
}

// --- html ---

type htmlExtractor struct{}

func (htmlExtractor) Supports(path string) bool {
	return hasExt(path, ".html", ".htm")
}

func (htmlExtractor) ExtractText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("course: read %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	u := &url.URL{Scheme: "file", Path: path}
	article, err := readability.FromReader(f, u)
	if err != nil {
		return "", fmt.Errorf("course: extract html %s: %w", filepath.Base(path), err)
	}
	return article.TextContent, nil
}

// --- docx ---

// docxExtractor pulls the w:t text runs out of word/document.xml. A
// .docx file is a zip archive, so archive/zip plus a streaming XML
// decoder covers the format without a dedicated dependency.
type docxExtractor struct{}

func (docxExtractor) Supports(path string) bool {
	return hasExt(path, ".docx")
}

func (docxExtractor) ExtractText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("course: open docx %s: %w", filepath.Base(path), err)
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("course: docx %s: missing word/document.xml", filepath.Base(path))
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("course: open docx %s: %w", filepath.Base(path), err)
	}
	defer rc.Close()

	text, err := docxText(rc)
	if err != nil {
		return "", fmt.Errorf("course: extract docx %s: %w", filepath.Base(path), err)
	}
	return text, nil
}

// docxText walks the WordprocessingML stream collecting text runs.
// Paragraph ends become newlines so lesson markers survive extraction.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var run string
				if err := dec.DecodeElement(&run, &t); err != nil {
					return "", err
				}
				sb.WriteString(run)
			} else if t.Name.Local == "br" || t.Name.Local == "cr" {
				sb.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}
