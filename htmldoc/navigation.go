package htmldoc

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// boilerplateClass matches class and id values used for navigation and
// page chrome.
var boilerplateClass = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget|aside)([^a-z]|$)`)

// exclusionChecker decides which elements are navigation or boilerplate.
type exclusionChecker struct {
	mode    NavigationExclusionMode
	body    *html.Node
	wrapper *html.Node // single top-level div/main, if any
	density map[*html.Node]float64
}

func newExclusionChecker(mode NavigationExclusionMode, body *html.Node) *exclusionChecker {
	return &exclusionChecker{
		mode:    mode,
		body:    body,
		wrapper: topLevelWrapper(body),
		density: make(map[*html.Node]float64),
	}
}

// topLevelWrapper handles the common <body><div id="wrapper">...</div></body>
// layout by returning that single structural child.
func topLevelWrapper(body *html.Node) *html.Node {
	var wrapper *html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "div", "main":
			if wrapper != nil {
				return nil
			}
			wrapper = c
		case "script", "style", "noscript", "template":
		default:
			return nil
		}
	}
	return wrapper
}

func (ec *exclusionChecker) excluded(n *html.Node) bool {
	if n.Type != html.ElementNode || ec.mode == NavigationExclusionNone {
		return false
	}
	if ec.explicit(n) {
		return true
	}
	if ec.mode >= NavigationExclusionStandard && ec.byClass(n) {
		return true
	}
	return ec.mode >= NavigationExclusionAggressive && ec.byLinkDensity(n)
}

// explicit covers <nav>, <aside>, ARIA landmarks, and top-level
// <header>/<footer>.
func (ec *exclusionChecker) explicit(n *html.Node) bool {
	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		return ec.topLevel(n)
	}

	switch getAttr(n, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		return ec.topLevel(n)
	}
	return false
}

func (ec *exclusionChecker) topLevel(n *html.Node) bool {
	p := n.Parent
	return p != nil && (p == ec.body || (ec.wrapper != nil && p == ec.wrapper))
}

func (ec *exclusionChecker) byClass(n *html.Node) bool {
	for _, key := range []string{"class", "id"} {
		if v := getAttr(n, key); v != "" && boilerplateClass.MatchString(v) {
			return true
		}
	}
	return false
}

// byLinkDensity flags block containers where more than 60% of the text sits
// inside at least four links.
func (ec *exclusionChecker) byLinkDensity(n *html.Node) bool {
	switch n.Data {
	case "div", "section", "ul", "ol":
	default:
		return false
	}
	return ec.linkDensity(n) > 0.6 && countLinks(n) >= 4
}

func (ec *exclusionChecker) linkDensity(n *html.Node) float64 {
	if d, ok := ec.density[n]; ok {
		return d
	}
	var d float64
	if total := textLength(n); total > 0 {
		d = float64(linkTextLength(n)) / float64(total)
	}
	ec.density[n] = d
	return d
}

// prune removes every excluded subtree below n.
func (ec *exclusionChecker) prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if ec.excluded(c) || (c.Type == html.ElementNode && skipElement(c.Data)) {
			n.RemoveChild(c)
		} else {
			ec.prune(c)
		}
		c = next
	}
}

func textLength(n *html.Node) int {
	if n.Type == html.TextNode {
		return len(strings.TrimSpace(n.Data))
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += textLength(c)
	}
	return total
}

func linkTextLength(n *html.Node) int {
	if n.Type == html.ElementNode && n.Data == "a" {
		return textLength(n)
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += linkTextLength(c)
	}
	return total
}

func countLinks(n *html.Node) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == "a" {
		count = 1
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countLinks(c)
	}
	return count
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// navPhrase matches link and UI wording that survives structural filtering.
var navPhrase = regexp.MustCompile(`(?i)\b(home|menu|navigation|nav|skip to|breadcrumb|search|login|log in|sign in|sign up|register|contact|about us|privacy|terms|copyright|all rights reserved|click here|read more|continue reading|next|previous|back to top|scroll to top|follow us|social media|share|subscribe|newsletter)\b`)

var callToAction = regexp.MustCompile(`\b(click|here|more)\b`)

// maxNavLine is the longest line the phrase filter considers. Longer lines
// are treated as prose.
const maxNavLine = 60

// isLikelyNavigation reports whether a rendered line looks like menu,
// footer or call-to-action text.
func isLikelyNavigation(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, "\u00a9") || strings.Contains(lower, "cookie") || strings.Contains(lower, "javascript") {
		return true
	}
	if len(line) > maxNavLine {
		return false
	}
	if navPhrase.MatchString(lower) {
		return true
	}
	return len(line) < 20 && callToAction.MatchString(lower)
}

var webpageIndicators = []string{
	"<nav", "<header", "<footer", "<aside", "<main",
	"javascript", "stylesheet", "jquery", "bootstrap",
	"google-analytics", "facebook", "twitter", "instagram",
	"cookie", "privacy", "terms of service",
}

// IsWebpage reports whether markup looks like a site page rather than a
// standalone document: more than two web chrome indicators.
func IsWebpage(markup string) bool {
	lower := strings.ToLower(markup)
	count := 0
	for _, ind := range webpageIndicators {
		if strings.Contains(lower, ind) {
			count++
		}
	}
	return count > 2
}
