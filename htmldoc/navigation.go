package htmldoc

import (
	"regexp"

	"golang.org/x/net/html"
)

// NavigationExclusionMode controls how navigation, headers, and footers are filtered.
type NavigationExclusionMode int

const (
	// NavigationExclusionNone includes all content without filtering.
	NavigationExclusionNone NavigationExclusionMode = iota

	// NavigationExclusionExplicit skips only explicit semantic HTML5 elements:
	// <nav>, <aside>, and ARIA roles (role="navigation", role="complementary").
	// <header> and <footer> are only skipped when they are direct children of <body>.
	NavigationExclusionExplicit

	// NavigationExclusionStandard adds common class/id pattern matching, such as
	// nav, navbar, menu, footer and sidebar.
	NavigationExclusionStandard
)

// navigationPattern matches class/id values that indicate navigation or boilerplate content.
var navigationPattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget|aside)([^a-z]|$)`)

// exclusionChecker decides which elements to exclude as they are opened.
type exclusionChecker struct {
	mode NavigationExclusionMode
}

func newExclusionChecker(mode NavigationExclusionMode) *exclusionChecker {
	return &exclusionChecker{mode: mode}
}

// excludes reports whether the element being opened, with the given
// attributes and innermost open parent, should be dropped with its content.
func (ec *exclusionChecker) excludes(name string, attrs []html.Attribute, parent string) bool {
	if ec == nil || ec.mode == NavigationExclusionNone {
		return false
	}
	if ec.excludesExplicit(name, attrs, parent) {
		return true
	}
	if ec.mode >= NavigationExclusionStandard {
		return excludesByPattern(attrs)
	}
	return false
}

func (ec *exclusionChecker) excludesExplicit(name string, attrs []html.Attribute, parent string) bool {
	switch name {
	case "nav", "aside":
		return true
	}

	topLevel := parent == "body"
	switch getAttr(attrs, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		return topLevel
	}

	switch name {
	case "header", "footer":
		return topLevel
	}
	return false
}

func excludesByPattern(attrs []html.Attribute) bool {
	if class := getAttr(attrs, "class"); class != "" && navigationPattern.MatchString(class) {
		return true
	}
	if id := getAttr(attrs, "id"); id != "" && navigationPattern.MatchString(id) {
		return true
	}
	return false
}

// getAttr returns the value of an attribute, or empty string if not found.
func getAttr(attrs []html.Attribute, key string) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
