// Package xmlmeta extracts document properties from XML parts with XPath.
package xmlmeta

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Field maps an XPath expression to a metadata key.
type Field struct {
	Key  string
	Expr *xpath.Expr
}

// Local returns a Field selecting every element with the given local name,
// regardless of namespace prefix.
func Local(key, local string) Field {
	return Field{Key: key, Expr: xpath.MustCompile(fmt.Sprintf("//*[local-name()='%s']", local))}
}

// Emit parses the XML in r and calls emit for every non-empty value the
// fields select, in field order.
func Emit(r io.Reader, fields []Field, emit func(key, value string)) error {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return err
	}
	for _, f := range fields {
		for _, n := range xmlquery.QuerySelectorAll(doc, f.Expr) {
			if v := strings.TrimSpace(n.InnerText()); v != "" {
				emit(f.Key, v)
			}
		}
	}
	return nil
}

// CoreProperties selects the Dublin Core fields of an OOXML
// docProps/core.xml part.
var CoreProperties = []Field{
	Local("dc:title", "title"),
	Local("dc:creator", "creator"),
	Local("dc:subject", "subject"),
	Local("dc:description", "description"),
	Local("meta:keyword", "keywords"),
	Local("meta:last-author", "lastModifiedBy"),
	Local("cp:revision", "revision"),
	Local("cp:category", "category"),
	Local("dcterms:created", "created"),
	Local("dcterms:modified", "modified"),
}

// AppProperties selects the fields of an OOXML docProps/app.xml part.
var AppProperties = []Field{
	Local("Application-Name", "Application"),
	Local("meta:page-count", "Pages"),
	Local("meta:word-count", "Words"),
	Local("meta:character-count", "Characters"),
	Local("meta:slide-count", "Slides"),
	Local("extended-properties:Company", "Company"),
	Local("extended-properties:Template", "Template"),
}
