// Package pptx turns Office Open XML presentations into markup events.
//
// Slides are emitted in presentation order, each inside a div with class
// "slide". Title placeholders become h1 (h2 for subtitles), bulleted and
// numbered paragraphs become li spans inside ul or ol, other paragraphs
// become p, and tables become table/tr/td. Speaker notes follow their slide
// in a div with class "slide-notes".
package pptx

import "encoding/xml"

type presentationXML struct {
	XMLName     xml.Name        `xml:"presentation"`
	SlideIDList *slideIDListXML `xml:"sldIdLst"`
}

type slideIDListXML struct {
	SlideID []slideIDXML `xml:"sldId"`
}

type slideIDXML struct {
	ID  string `xml:"id,attr"`
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type slideXML struct {
	XMLName xml.Name `xml:"sld"`
	Show    string   `xml:"show,attr"` // "0" for hidden slides
	CSld    cSldXML  `xml:"cSld"`
}

type notesSlideXML struct {
	XMLName xml.Name `xml:"notes"`
	CSld    cSldXML  `xml:"cSld"`
}

type cSldXML struct {
	SpTree spTreeXML `xml:"spTree"`
}

// spTreeXML is a shape tree; group shapes share its layout.
type spTreeXML struct {
	Sp           []spXML           `xml:"sp"`
	Pic          []picXML          `xml:"pic"`
	GraphicFrame []graphicFrameXML `xml:"graphicFrame"`
	GrpSp        []spTreeXML       `xml:"grpSp"`
}

type cNvPrXML struct {
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
	Title string `xml:"title,attr"`
}

type spXML struct {
	NvSpPr nvSpPrXML  `xml:"nvSpPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type nvSpPrXML struct {
	CNvPr cNvPrXML `xml:"cNvPr"`
	NvPr  nvPrXML  `xml:"nvPr"`
}

type nvPrXML struct {
	Ph *phXML `xml:"ph"`
}

type phXML struct {
	Type string `xml:"type,attr"` // title, ctrTitle, subTitle, body, ftr, dt, sldNum, ...
}

type txBodyXML struct {
	P []pXML `xml:"p"`
}

// pXML is a paragraph. Runs, breaks and fields are kept in document order.
type pXML struct {
	PPr     *pPrXML     `xml:"pPr"`
	Content []inlineXML `xml:",any"`
}

// inlineXML is one child of a paragraph: a:r, a:br, a:fld or something
// ignored.
type inlineXML struct {
	XMLName xml.Name
	RPr     *rPrXML `xml:"rPr"`
	T       string  `xml:"t"`
}

type pPrXML struct {
	Lvl       int           `xml:"lvl,attr"`
	BuNone    *struct{}     `xml:"buNone"`
	BuChar    *buCharXML    `xml:"buChar"`
	BuAutoNum *buAutoNumXML `xml:"buAutoNum"`
}

type buCharXML struct {
	Char string `xml:"char,attr"`
}

type buAutoNumXML struct {
	Type    string `xml:"type,attr"`
	StartAt int    `xml:"startAt,attr"`
}

type rPrXML struct {
	B string `xml:"b,attr"`
	I string `xml:"i,attr"`
	U string `xml:"u,attr"`
}

type picXML struct {
	NvPicPr struct {
		CNvPr cNvPrXML `xml:"cNvPr"`
	} `xml:"nvPicPr"`
}

type graphicFrameXML struct {
	Graphic struct {
		GraphicData struct {
			Tbl *tblXML `xml:"tbl"`
		} `xml:"graphicData"`
	} `xml:"graphic"`
}

type tblXML struct {
	Tr []trXML `xml:"tr"`
}

type trXML struct {
	Tc []tcXML `xml:"tc"`
}

type tcXML struct {
	TxBody   *txBodyXML `xml:"txBody"`
	RowSpan  int        `xml:"rowSpan,attr"`
	GridSpan int        `xml:"gridSpan,attr"`
	VMerge   string     `xml:"vMerge,attr"`
	HMerge   string     `xml:"hMerge,attr"`
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
