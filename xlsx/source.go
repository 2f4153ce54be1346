package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/internal/xmlmeta"
)

// Source decodes XLSX workbooks.
type Source struct {
	// SkipHidden drops sheets marked hidden in the workbook.
	SkipHidden bool
	Logger     *slog.Logger
}

// Parse reads the whole archive from r and emits every worksheet to h.
func (s Source) Parse(ctx context.Context, r io.Reader, _ event.Hint, h event.Handler) error {
	log := logging.Or(s.Logger)

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading XLSX: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening ZIP archive: %w", err)
	}

	var wb workbookXML
	if err := unmarshalFile(zr, "xl/workbook.xml", &wb); err != nil {
		return fmt.Errorf("parsing workbook: %w", err)
	}

	emitProps(zr, "docProps/core.xml", xmlmeta.CoreProperties, h, log)
	emitProps(zr, "docProps/app.xml", xmlmeta.AppProperties, h, log)

	var rels relationshipsXML
	if err := unmarshalFile(zr, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		log.Debug("xlsx relationships unavailable", "error", err)
	}
	targets := make(map[string]string, len(rels.Relationship))
	for _, rel := range rels.Relationship {
		targets[rel.ID] = rel.Target
	}

	var sst sharedStringsXML
	if err := unmarshalFile(zr, "xl/sharedStrings.xml", &sst); err != nil {
		log.Debug("xlsx shared strings unavailable", "error", err)
	}
	shared := make([]string, len(sst.SI))
	for i, si := range sst.SI {
		shared[i] = si.text()
	}

	for i, ref := range wb.Sheets.Sheet {
		if err := ctx.Err(); err != nil {
			return err
		}
		hidden := ref.State == "hidden" || ref.State == "veryHidden"
		if hidden && s.SkipHidden {
			continue
		}
		name := sheetPath(targets[ref.RID], i)
		var ws worksheetXML
		if err := unmarshalFile(zr, name, &ws); err != nil {
			log.Warn("skipping unreadable worksheet", "sheet", ref.Name, "part", name, "error", err)
			continue
		}
		sheet := buildSheet(&ws, ref.Name, shared)
		sheet.Hidden = hidden
		if err := emitSheet(ctx, sheet, h); err != nil {
			return err
		}
	}
	return nil
}

// sheetPath resolves a workbook relationship target to an archive path.
func sheetPath(target string, index int) string {
	if target == "" {
		return fmt.Sprintf("xl/worksheets/sheet%d.xml", index+1)
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join("xl", target)
}

func buildSheet(ws *worksheetXML, name string, shared []string) *Sheet {
	sheet := newSheet(name)
	for _, row := range ws.SheetData.Rows {
		for i, x := range row.Cells {
			col, r := i, row.R-1
			if x.R != "" {
				var err error
				if col, r, err = ParseCellRef(x.R); err != nil {
					continue
				}
			}
			if r < 0 {
				continue
			}
			if c := cellValue(x, shared); c.Type != CellTypeEmpty {
				sheet.set(r, col, c)
			}
		}
	}
	if ws.MergeCells != nil {
		for _, mc := range ws.MergeCells.MergeCell {
			startCol, startRow, endCol, endRow, err := ParseRangeRef(mc.Ref)
			if err != nil {
				continue
			}
			sheet.merge(startRow, startCol, endRow, endCol)
		}
	}
	return sheet
}

func cellValue(x cellXML, shared []string) *Cell {
	c := &Cell{Formula: x.F}
	switch x.T {
	case "s":
		c.Type = CellTypeString
		if idx, err := strconv.Atoi(x.V); err == nil && idx >= 0 && idx < len(shared) {
			c.Value = shared[idx]
		}
	case "b":
		c.Type = CellTypeBoolean
		c.Value = "FALSE"
		if x.V == "1" {
			c.Value = "TRUE"
		}
	case "e":
		c.Type = CellTypeError
		c.Value = x.V
	case "str":
		c.Type = CellTypeString
		c.Value = x.V
	case "inlineStr":
		c.Type = CellTypeString
		if x.Is != nil {
			c.Value = x.Is.T
			if c.Value == "" {
				c.Value = runsText(x.Is.R)
			}
		}
	default:
		switch {
		case x.V != "":
			c.Type = CellTypeNumber
			c.Value = x.V
		case x.F != "":
			c.Type = CellTypeFormula
		default:
			c.Type = CellTypeEmpty
		}
	}
	return c
}

func emitSheet(ctx context.Context, sheet *Sheet, h event.Handler) error {
	var attrs []event.Attr
	if sheet.Hidden {
		attrs = []event.Attr{{Name: "class", Value: "hidden"}}
	}
	h.OpenTag("h1", attrs)
	h.Characters(sheet.Name)
	h.CloseTag("h1")
	h.Characters("\n")

	rows, minCol, maxCol := sheet.layout()
	if len(rows) == 0 {
		return nil
	}
	h.OpenTag("table", nil)
	for n, row := range rows {
		if n%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		h.OpenTag("tr", nil)
		first := true
		for col := minCol; col <= maxCol; col++ {
			if sheet.covered[[2]int{row, col}] {
				continue
			}
			if !first {
				h.Characters("\t")
			}
			first = false
			c := sheet.Cell(row, col)
			if c == nil {
				h.OpenTag("td", nil)
				h.CloseTag("td")
				continue
			}
			h.OpenTag("td", spanAttrs(c))
			if c.Value != "" {
				h.Characters(c.Value)
			}
			h.CloseTag("td")
		}
		h.CloseTag("tr")
		h.Characters("\n")
	}
	h.CloseTag("table")
	return nil
}

func spanAttrs(c *Cell) []event.Attr {
	var attrs []event.Attr
	if c.RowSpan > 1 {
		attrs = append(attrs, event.Attr{Name: "rowspan", Value: strconv.Itoa(c.RowSpan)})
	}
	if c.ColSpan > 1 {
		attrs = append(attrs, event.Attr{Name: "colspan", Value: strconv.Itoa(c.ColSpan)})
	}
	if c.Type != CellTypeString && c.Type != CellTypeEmpty {
		attrs = append(attrs, event.Attr{Name: "class", Value: c.Type.String()})
	}
	return attrs
}

func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func unmarshalFile(zr *zip.Reader, name string, v any) error {
	f := findFile(zr, name)
	if f == nil {
		return fmt.Errorf("missing required file: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

func emitProps(zr *zip.Reader, name string, fields []xmlmeta.Field, h event.Handler, log *slog.Logger) {
	f := findFile(zr, name)
	if f == nil {
		return
	}
	rc, err := f.Open()
	if err != nil {
		log.Debug("xlsx properties unavailable", "part", name, "error", err)
		return
	}
	defer rc.Close()
	if err := xmlmeta.Emit(rc, fields, h.Metadata); err != nil {
		log.Debug("xlsx properties unreadable", "part", name, "error", err)
	}
}
