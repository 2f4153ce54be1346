package docx

import (
	"encoding/xml"
	"strings"
)

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string       `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string       `xml:"styleId,attr"`
	Name    valXML       `xml:"name"`
	BasedOn valXML       `xml:"basedOn"`
	PPr     pPrXML       `xml:"pPr"`
	RPr     runFormatXML `xml:"rPr"`
}

type valXML struct {
	Val string `xml:"val,attr"`
}

type pPrXML struct {
	OutlineLvl valXML `xml:"outlineLvl"`
}

// runFormatXML holds the run properties a style may set.
type runFormatXML struct {
	Bold      *valXML `xml:"b"`
	Italic    *valXML `xml:"i"`
	Underline *valXML `xml:"u"`
}

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// builtInHeadings maps standard Word heading style IDs to levels.
var builtInHeadings = map[string]int{
	"heading1": 1, "heading2": 2, "heading3": 3,
	"heading4": 4, "heading5": 5, "heading6": 6,
	"heading7": 7, "heading8": 8, "heading9": 9,
	"title": 1,
}

// styleSheet resolves paragraph and character styles.
type styleSheet struct {
	byID map[string]styleDefXML
}

func newStyleSheet(s *stylesXML) *styleSheet {
	ss := &styleSheet{byID: make(map[string]styleDefXML)}
	if s == nil {
		return ss
	}
	for _, st := range s.Styles {
		ss.byID[strings.ToLower(st.StyleID)] = st
	}
	return ss
}

// headingLevel returns the heading level of a paragraph style, or 0.
// Styles inherit their outline level through basedOn.
func (ss *styleSheet) headingLevel(styleID string) int {
	id := strings.ToLower(styleID)
	for depth := 0; id != "" && depth < 10; depth++ {
		if level, ok := builtInHeadings[id]; ok {
			return level
		}
		st, ok := ss.byID[id]
		if !ok {
			return 0
		}
		if st.PPr.OutlineLvl.Val != "" {
			// OutlineLvl is 0-based in OOXML
			if level := parseOutlineLevel(st.PPr.OutlineLvl.Val); level >= 0 {
				return level + 1
			}
		}
		if strings.Contains(strings.ToLower(st.Name.Val), "heading") {
			if level := parseOutlineLevel(st.Name.Val); level >= 1 {
				return level
			}
			return 1
		}
		id = strings.ToLower(st.BasedOn.Val)
	}
	return 0
}

// runFormat returns the formatting a character style applies.
func (ss *styleSheet) runFormat(styleID string) (f runFlags) {
	id := strings.ToLower(styleID)
	for depth := 0; id != "" && depth < 10; depth++ {
		st, ok := ss.byID[id]
		if !ok {
			break
		}
		f = f.inherit(flagsOf(st.RPr))
		id = strings.ToLower(st.BasedOn.Val)
	}
	switch strings.ToLower(styleID) {
	case "strong":
		f.bold = set(true)
	case "emphasis":
		f.italic = set(true)
	}
	return f
}

// parseOutlineLevel parses the first run of digits in s.
func parseOutlineLevel(s string) int {
	level, seen := 0, false
	for _, c := range s {
		if c >= '0' && c <= '9' {
			level = level*10 + int(c-'0')
			seen = true
		} else if seen {
			break
		}
	}
	if seen && level <= 8 {
		return level
	}
	return -1
}

// tri is an unset, false or true run property.
type tri int8

const (
	unset tri = iota
	off
	on
)

func set(b bool) tri {
	if b {
		return on
	}
	return off
}

type runFlags struct {
	bold, italic, underline tri
}

// inherit fills unset properties of f from base.
func (f runFlags) inherit(base runFlags) runFlags {
	if f.bold == unset {
		f.bold = base.bold
	}
	if f.italic == unset {
		f.italic = base.italic
	}
	if f.underline == unset {
		f.underline = base.underline
	}
	return f
}

func flagsOf(x runFormatXML) runFlags {
	var f runFlags
	if x.Bold != nil {
		f.bold = set(boolVal(x.Bold.Val))
	}
	if x.Italic != nil {
		f.italic = set(boolVal(x.Italic.Val))
	}
	if x.Underline != nil {
		f.underline = set(x.Underline.Val != "none" && boolVal(x.Underline.Val))
	}
	return f
}

// boolVal interprets an OOXML on/off attribute; absence means on.
func boolVal(v string) bool {
	switch strings.ToLower(v) {
	case "false", "0", "off":
		return false
	}
	return true
}
