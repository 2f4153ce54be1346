package odt

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// stylesXML represents the structure of styles.xml
type stylesXML struct {
	XMLName    xml.Name      `xml:"document-styles"`
	Styles     *styleListXML `xml:"styles"`
	AutoStyles *styleListXML `xml:"automatic-styles"`
}

// styleListXML is an office:styles or office:automatic-styles element.
type styleListXML struct {
	Styles []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition (<style:style>).
type styleDefXML struct {
	Name            string        `xml:"name,attr"`
	Family          string        `xml:"family,attr"` // paragraph, text, table, table-cell, etc.
	ParentStyleName string        `xml:"parent-style-name,attr"`
	TextProps       *textPropsXML `xml:"text-properties"`
}

// textPropsXML represents text properties (<style:text-properties>).
type textPropsXML struct {
	FontStyle     string `xml:"font-style,attr"`           // normal, italic
	FontWeight    string `xml:"font-weight,attr"`          // normal, bold
	TextUnderline string `xml:"text-underline-style,attr"` // none, solid
}

// tri is an unset, false or true text property.
type tri int8

const (
	unset tri = iota
	off
	on
)

type textFlags struct {
	bold, italic, underline tri
}

func (f textFlags) inherit(base textFlags) textFlags {
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

// flagsOf reads the attributes of a style:text-properties element.
func flagsOf(weight, style, underline string) textFlags {
	var f textFlags
	if weight != "" {
		f.bold = off
		if isBold(weight) {
			f.bold = on
		}
	}
	if style != "" {
		f.italic = off
		if style == "italic" || style == "oblique" {
			f.italic = on
		}
	}
	if underline != "" {
		f.underline = off
		if underline != "none" {
			f.underline = on
		}
	}
	return f
}

func isBold(weight string) bool {
	if weight == "bold" {
		return true
	}
	n, err := strconv.Atoi(weight)
	return err == nil && n >= 600
}

type textStyle struct {
	parent string
	flags  textFlags
}

// styleSheet resolves text styles by name through their parents.
type styleSheet struct {
	byName map[string]textStyle
}

func newStyleSheet() *styleSheet {
	return &styleSheet{byName: make(map[string]textStyle)}
}

// addAll registers the styles of a styles.xml style list.
func (ss *styleSheet) addAll(list *styleListXML) {
	if list == nil {
		return
	}
	for _, st := range list.Styles {
		var f textFlags
		if tp := st.TextProps; tp != nil {
			f = flagsOf(tp.FontWeight, tp.FontStyle, tp.TextUnderline)
		}
		ss.byName[st.Name] = textStyle{parent: st.ParentStyleName, flags: f}
	}
}

func (ss *styleSheet) resolve(name string) textFlags {
	var f textFlags
	for depth := 0; name != "" && depth < 10; depth++ {
		st, ok := ss.byName[name]
		if !ok {
			break
		}
		f = f.inherit(st.flags)
		name = st.parent
	}
	// name is now the first style in the chain without a definition;
	// LibreOffice's built-in character styles may be referenced undefined.
	switch strings.ReplaceAll(name, "_20_", " ") {
	case "Strong Emphasis":
		f = f.inherit(textFlags{bold: on})
	case "Emphasis":
		f = f.inherit(textFlags{italic: on})
	}
	return f
}
