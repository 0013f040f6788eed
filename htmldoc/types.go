package htmldoc

// elementType is the kind of a block pulled out of the body.
type elementType int

const (
	elementParagraph elementType = iota
	elementHeading
	elementList
	elementTable
	elementCode
	elementBlockquote
)

// parsedElement is one block of body content in document order.
type parsedElement struct {
	Type  elementType
	Text  string
	Level int // headings
	Items []listItem
	Table *parsedTable
}

// listItem is one entry of a list. Level counts nesting from zero.
type listItem struct {
	Text  string
	Level int
}

// parsedTable holds the cell text of an HTML table row by row.
type parsedTable struct {
	Rows      [][]string
	HasHeader bool
}

// NavigationExclusionMode controls how navigation, headers, and footers are filtered.
type NavigationExclusionMode int

const (
	// NavigationExclusionNone includes all content without filtering.
	NavigationExclusionNone NavigationExclusionMode = iota

	// NavigationExclusionExplicit skips only explicit semantic HTML5 elements:
	// <nav>, <aside>, and ARIA roles (role="navigation", role="complementary").
	// <header> and <footer> are only skipped when they are direct children of <body>
	// or a single top-level wrapper element.
	NavigationExclusionExplicit

	// NavigationExclusionStandard (default) combines explicit element detection with
	// common class/id pattern matching such as nav, navbar, menu, footer and sidebar.
	NavigationExclusionStandard

	// NavigationExclusionAggressive adds link-density heuristics to standard detection.
	// Sections with very high link-to-text ratios are excluded.
	NavigationExclusionAggressive
)

// String returns the mode name.
func (m NavigationExclusionMode) String() string {
	switch m {
	case NavigationExclusionNone:
		return "none"
	case NavigationExclusionExplicit:
		return "explicit"
	case NavigationExclusionStandard:
		return "standard"
	case NavigationExclusionAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// ParseNavigationExclusionMode maps a mode name back to its value. Unknown
// names yield NavigationExclusionStandard and false.
func ParseNavigationExclusionMode(s string) (NavigationExclusionMode, bool) {
	switch s {
	case "none":
		return NavigationExclusionNone, true
	case "explicit":
		return NavigationExclusionExplicit, true
	case "standard", "":
		return NavigationExclusionStandard, true
	case "aggressive":
		return NavigationExclusionAggressive, true
	}
	return NavigationExclusionStandard, false
}
