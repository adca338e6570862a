// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// NativeConverter converts the formats the Go ecosystem handles directly:
// plain text, HTML, CSV, JSON, XML, PDF text, XLSX workbooks, images, and
// ZIP archives of those. Word and PowerPoint files are reported as
// unsupported; use a markitdown backend for them.
type NativeConverter struct{}

// NewNativeConverter returns a NativeConverter.
func NewNativeConverter() *NativeConverter {
	return &NativeConverter{}
}

// Convert dispatches on the file extension.
func (n *NativeConverter) Convert(ctx context.Context, path string) (string, error) {
	var (
		md  string
		err error
	)
	switch Ext(path) {
	case ".txt":
		md, err = readText(path)
	case ".html":
		md, err = convertHTML(path)
	case ".csv":
		md, err = convertCSV(path)
	case ".json":
		md, err = convertJSON(path)
	case ".xml":
		md, err = fenced(path, "xml")
	case ".pdf":
		md, err = convertPDF(path)
	case ".xlsx":
		md, err = convertXLSX(path)
	case ".jpg", ".jpeg", ".png":
		md, err = describeImage(path)
	case ".zip":
		md, err = n.convertZip(ctx, path)
	default:
		return "", unsupportedf("no native converter for %s", filepath.Base(path))
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(md) == "" {
		return "", fmt.Errorf("%s produced empty output", path)
	}
	return md, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func convertHTML(path string) (string, error) {
	raw, err := readText(path)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		return "", fmt.Errorf("converting HTML %s: %w", path, err)
	}
	return md + "\n", nil
}

func convertCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing CSV %s: %w", path, err)
	}
	return markdownTable(rows), nil
}

func convertJSON(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		// Not valid JSON; keep the text as-is.
		buf.Reset()
		buf.Write(data)
	}
	return "```json\n" + strings.TrimRight(buf.String(), "\n") + "\n```\n", nil
}

func fenced(path, lang string) (string, error) {
	raw, err := readText(path)
	if err != nil {
		return "", err
	}
	return "```" + lang + "\n" + strings.TrimRight(raw, "\n") + "\n```\n", nil
}

func convertPDF(path string) (md string, err error) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			md, err = "", fmt.Errorf("parsing PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "<!-- page %d -->\n\n%s\n\n", i, text)
	}
	return b.String(), nil
}

func convertXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
		}
		fmt.Fprintf(&b, "## %s\n\n", sheet)
		b.WriteString(markdownTable(rows))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func describeImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening image %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n![%s](%s)\n", name, name, name)
	if cfg, format, err := image.DecodeConfig(f); err == nil {
		fmt.Fprintf(&b, "\nFormat: %s, %dx%d pixels\n", format, cfg.Width, cfg.Height)
	}
	return b.String(), nil
}

// convertZip converts every supported member of the archive and joins the
// results under one heading per file.
func (n *NativeConverter) convertZip(ctx context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer zr.Close()

	tmp, err := os.MkdirTemp("", "mdconvert-zip-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	var b strings.Builder
	fmt.Fprintf(&b, "Content from the zip file `%s`:\n\n", filepath.Base(path))
	for i, member := range zr.File {
		if member.FileInfo().IsDir() || !IsSupported(member.Name) || Ext(member.Name) == ".zip" {
			continue
		}
		local := filepath.Join(tmp, fmt.Sprintf("%d%s", i, Ext(member.Name)))
		if err := extractMember(member, local); err != nil {
			return "", fmt.Errorf("extracting %s from %s: %w", member.Name, path, err)
		}
		md, err := n.Convert(ctx, local)
		if err != nil {
			if IsUnsupported(err) {
				continue
			}
			return "", fmt.Errorf("converting %s from %s: %w", member.Name, path, err)
		}
		fmt.Fprintf(&b, "## File: %s\n\n%s\n\n", member.Name, strings.TrimSpace(md))
	}
	return b.String(), nil
}

func extractMember(member *zip.File, dest string) error {
	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// markdownTable renders rows as a pipe table; the first row is the header.
// Short rows are padded to the widest row.
func markdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = escapeCell(row[i])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
