package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Parser extracts the plain text of a document.
type Parser interface {
	ExtractText(filePath string) (string, error)
}

type fileParser struct{}

// Default dispatches on the file extension.
var Default Parser = fileParser{}

// corpusExtensions are the formats picked up when indexing a directory.
var corpusExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".xlsx": true,
	".xlsm": true,
}

// binaryExtensions need a format-specific decoder to yield text.
var binaryExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".xlsx": true,
	".xlsm": true,
}

// Supported reports whether files with this name are indexed.
func Supported(filePath string) bool {
	return corpusExtensions[strings.ToLower(filepath.Ext(filePath))]
}

// ExtractText returns the plain text of filePath. Unknown extensions are
// read as plain text.
func ExtractText(filePath string) (string, error) {
	return Default.ExtractText(filePath)
}

// ReadSource returns the file content as written for text formats, markdown
// included, and the extracted text for binary documents.
func ReadSource(filePath string) (string, error) {
	if binaryExtensions[strings.ToLower(filepath.Ext(filePath))] {
		return ExtractText(filePath)
	}
	return parseText(filePath)
}

func (fileParser) ExtractText(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".md", ".markdown":
		return parseMarkdown(filePath)
	case ".pdf":
		return parsePDF(filePath)
	case ".docx":
		return parseDOCX(filePath)
	case ".pptx":
		return parsePPTX(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	case ".xlsm":
		return parseXLSM(filePath)
	default:
		return parseText(filePath)
	}
}

func parseText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseMarkdown(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return markdownToText(data), nil
}

func parsePDF(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		out.WriteString(pageText)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func parseDOCX(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return extractTextFromXML(r.Editable().GetContent(), "w:t", "</w:p>"), nil
}

func parsePPTX(filePath string) (string, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	type slide struct {
		num  int
		text string
	}
	var slides []slide
	for _, file := range f.File {
		name := strings.TrimPrefix(file.Name, "ppt/slides/slide")
		if name == file.Name || !strings.HasSuffix(name, ".xml") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(name, ".xml"))
		if err != nil {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		slides = append(slides, slide{num: num, text: extractTextFromXML(string(data), "a:t", "</a:p>")})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var out strings.Builder
	for _, s := range slides {
		out.WriteString(s.text)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func parseXLSX(filePath string) (string, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, sheet := range f.Sheets {
		out.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				out.WriteString(cell.String() + "\t")
			}
			out.WriteString("\n")
		}
	}
	return out.String(), nil
}

func parseXLSM(filePath string) (string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var out strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return "", fmt.Errorf("sheet %s: %w", sheetName, err)
		}
		out.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			out.WriteString(strings.Join(row, "\t"))
			out.WriteString("\n")
		}
	}
	return out.String(), nil
}

// markdownToText drops markdown syntax and keeps the readable text, one
// block per line.
func markdownToText(src []byte) string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(node.URL(src))
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					buf.Write(seg.Value(src))
				}
			}
		default:
			if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// extractTextFromXML collects the content of every <tag> element and starts
// a new line after each blockEnd.
func extractTextFromXML(xmlContent, tag, blockEnd string) string {
	var out strings.Builder
	open := "<" + tag
	closing := "</" + tag + ">"

	rest := xmlContent
	for {
		idx := strings.Index(rest, open)
		if idx < 0 {
			break
		}
		if strings.Contains(rest[:idx], blockEnd) && out.Len() > 0 {
			out.WriteString("\n")
		}
		rest = rest[idx+len(open):]
		// Skip longer tag names sharing the prefix, such as <w:tab/>.
		if rest == "" || (rest[0] != '>' && rest[0] != ' ') {
			continue
		}
		start := strings.IndexByte(rest, '>')
		if start < 0 {
			break
		}
		if start > 0 && rest[start-1] == '/' {
			rest = rest[start+1:]
			continue
		}
		rest = rest[start+1:]
		end := strings.Index(rest, closing)
		if end < 0 {
			break
		}
		out.WriteString(html.UnescapeString(rest[:end]))
		rest = rest[end+len(closing):]
	}
	return out.String()
}
