// Package xlsx turns Office Open XML spreadsheets into markup events.
//
// Every worksheet becomes an h1 carrying the sheet name followed by a
// table. Rows become tr spans and cells td spans; cells are separated by a
// tab and rows end with a newline. Only the bounding box of non-empty cells
// is emitted, and merged regions are emitted once, on their top-left cell,
// with rowspan and colspan attributes.
package xlsx

import "encoding/xml"

type workbookXML struct {
	XMLName xml.Name  `xml:"workbook"`
	Sheets  sheetsXML `xml:"sheets"`
}

type sheetsXML struct {
	Sheet []sheetRefXML `xml:"sheet"`
}

type sheetRefXML struct {
	Name    string `xml:"name,attr"`
	SheetID string `xml:"sheetId,attr"`
	State   string `xml:"state,attr"` // hidden, veryHidden
	RID     string `xml:"id,attr"`    // r:id
}

type worksheetXML struct {
	XMLName    xml.Name       `xml:"worksheet"`
	SheetData  sheetDataXML   `xml:"sheetData"`
	MergeCells *mergeCellsXML `xml:"mergeCells"`
}

type sheetDataXML struct {
	Rows []rowXML `xml:"row"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // 1-indexed
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string        `xml:"r,attr"` // e.g. "A1"
	T  string        `xml:"t,attr"` // s, n, b, str, inlineStr, e
	V  string        `xml:"v"`
	F  string        `xml:"f"`
	Is *inlineStrXML `xml:"is"`
}

type inlineStrXML struct {
	T string `xml:"t"`
	R []rXML `xml:"r"`
}

type mergeCellsXML struct {
	MergeCell []mergeCellXML `xml:"mergeCell"`
}

type mergeCellXML struct {
	Ref string `xml:"ref,attr"` // e.g. "A1:B2"
}

type sharedStringsXML struct {
	XMLName xml.Name `xml:"sst"`
	SI      []siXML  `xml:"si"`
}

// siXML is a shared string: plain text or a list of rich text runs.
type siXML struct {
	T string `xml:"t"`
	R []rXML `xml:"r"`
}

type rXML struct {
	T string `xml:"t"`
}

func (s siXML) text() string {
	if s.T != "" || len(s.R) == 0 {
		return s.T
	}
	return runsText(s.R)
}

func runsText(runs []rXML) string {
	var n int
	for _, r := range runs {
		n += len(r.T)
	}
	b := make([]byte, 0, n)
	for _, r := range runs {
		b = append(b, r.T...)
	}
	return string(b)
}

type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}
