package parser

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestExtractTextPlain(t *testing.T) {
	body := "  line one\n\tline {two}  \n"
	path := writeFile(t, t.TempDir(), "notes.txt", body)

	got, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestExtractTextUnknownExtensionIsPlain(t *testing.T) {
	path := writeFile(t, t.TempDir(), "server.log", "a b c")
	got, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "a b c", got)
}

func TestExtractTextMissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractTextMarkdown(t *testing.T) {
	md := "# Title\n\nSome *bold* text with `code`.\n\n- item one\n- item two\n\n```\nfmt.Println(1)\n```\n"
	path := writeFile(t, t.TempDir(), "readme.md", md)

	got, err := ExtractText(path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "Title\n"))
	assert.Contains(t, got, "Some bold text with code.")
	assert.Contains(t, got, "item one")
	assert.Contains(t, got, "item two")
	assert.Contains(t, got, "fmt.Println(1)")
	for _, syntax := range []string{"#", "*", "`", "- item"} {
		assert.NotContains(t, got, syntax)
	}
}

func TestExtractTextPPTXOrdersSlides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	slides := map[string]string{
		"ppt/slides/slide10.xml":          `<p:sld><a:p><a:r><a:t>ten</a:t></a:r></a:p></p:sld>`,
		"ppt/slides/slide2.xml":           `<p:sld><a:p><a:r><a:t>two</a:t></a:r></a:p></p:sld>`,
		"ppt/slides/_rels/slide1.xml.rel": `<Relationships/>`,
		"ppt/slides/slide1.xml": `<p:sld><a:p><a:r><a:t>Hello</a:t></a:r><a:r><a:t xml:space="preserve"> world</a:t></a:r></a:p>` +
			`<a:p><a:r><a:t>second &amp; line</a:t></a:r></a:p></p:sld>`,
	}
	for name, body := range slides {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	got, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nsecond & line\ntwo\nten\n", got)
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	md := "# Title\n\n<div>raw html</div>\n"
	got, err := ReadSource(writeFile(t, dir, "a.md", md))
	require.NoError(t, err)
	assert.Equal(t, md, got)

	got, err = ReadSource(writeFile(t, dir, "b.log", "plain {x}"))
	require.NoError(t, err)
	assert.Equal(t, "plain {x}", got)

	_, err = ReadSource(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestExtractTextFromXMLSkipsSimilarTags(t *testing.T) {
	xml := `<w:p><w:r><w:t>A</w:t><w:tab/><w:t/><w:t>B</w:t></w:r></w:p><w:tbl/><w:p><w:r><w:t>C</w:t></w:r></w:p>`
	assert.Equal(t, "AB\nC", extractTextFromXML(xml, "w:t", "</w:p>"))
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.txt", "b.MD", "c.pdf", "d.docx", "e.pptx", "f.xlsx", "g.xlsm"} {
		assert.True(t, Supported(name), name)
	}
	for _, name := range []string{"a.go", "b", "c.ods"} {
		assert.False(t, Supported(name), name)
	}
}
