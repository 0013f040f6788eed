// Package htmldoc extracts text and metadata from HTML and XHTML documents.
package htmldoc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Document is a parsed HTML page.
type Document struct {
	Title    string
	Language string
	// Meta holds <meta name|property content> pairs with lowercased names.
	Meta map[string]string

	body     *html.Node
	elements []parsedElement
}

// Parse decodes content using its BOM, <meta charset> or a sniffed
// encoding, then parses it. Navigation and boilerplate are dropped
// according to mode.
func Parse(content []byte, mode NavigationExclusionMode) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(decode(content)))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	d := &Document{
		Meta: make(map[string]string),
	}
	if head := findElement(root, "head"); head != nil {
		d.readHead(head)
	}
	if h := findElement(root, "html"); h != nil {
		d.Language = strings.TrimSpace(getAttr(h, "lang"))
	}

	d.body = findElement(root, "body")
	if d.body == nil {
		d.body = root
	}

	b := &builder{checker: newExclusionChecker(mode, d.body)}
	b.traverse(d.body)
	b.flushList()
	d.elements = b.elements
	return d, nil
}

// decode converts content to UTF-8. Undecodable input is returned as is.
func decode(content []byte) []byte {
	enc, name, _ := charset.DetermineEncoding(content, "")
	if enc == nil || name == "utf-8" {
		return content
	}
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return content
	}
	return out
}

func (d *Document) readHead(head *html.Node) {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			d.Title = textContent(c)
		case "meta":
			name := getAttr(c, "name")
			if name == "" {
				name = getAttr(c, "property")
			}
			content := strings.TrimSpace(getAttr(c, "content"))
			if name != "" && content != "" {
				d.Meta[strings.ToLower(name)] = content
			}
		}
	}
}

// Text renders the body as plain text, one block per line group. Tables
// are tab-delimited and wrapped in [TABLE] markers when markers is set.
func (d *Document) Text(markers bool) string {
	var sb strings.Builder
	for _, elem := range d.elements {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		switch elem.Type {
		case elementList:
			for i, item := range elem.Items {
				if i > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(strings.Repeat("  ", item.Level))
				sb.WriteString("\u2022 ")
				sb.WriteString(item.Text)
			}
		case elementTable:
			if markers {
				sb.WriteString("[TABLE]\n")
			}
			for _, row := range elem.Table.Rows {
				sb.WriteString(strings.Join(row, "\t"))
				sb.WriteByte('\n')
			}
			if markers {
				sb.WriteString("[/TABLE]")
			}
		default:
			sb.WriteString(elem.Text)
		}
	}
	return sb.String()
}

// Headings returns heading texts in document order.
func (d *Document) Headings() []string {
	var out []string
	for _, elem := range d.elements {
		if elem.Type == elementHeading {
			out = append(out, elem.Text)
		}
	}
	return out
}

// builder turns the body tree into a flat list of blocks.
type builder struct {
	checker  *exclusionChecker
	elements []parsedElement

	inList    bool
	listLevel int
	items     []listItem
}

func (b *builder) add(e parsedElement) {
	b.elements = append(b.elements, e)
}

func (b *builder) flushList() {
	if b.inList && len(b.items) > 0 {
		b.add(parsedElement{Type: elementList, Items: b.items})
	}
	b.inList = false
	b.items = nil
}

func (b *builder) traverseChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.traverse(c)
	}
}

func (b *builder) traverse(n *html.Node) {
	if n.Type != html.ElementNode {
		b.traverseChildren(n)
		return
	}
	if skipElement(n.Data) || b.checker.excluded(n) {
		return
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		b.flushList()
		if text := textContent(n); text != "" {
			b.add(parsedElement{Type: elementHeading, Text: text, Level: int(n.Data[1] - '0')})
		}

	case "p", "div":
		if n.Data == "p" {
			b.flushList()
		}
		if isBlockContainer(n) {
			b.traverseChildren(n)
			return
		}
		if text := textContent(n); text != "" {
			b.add(parsedElement{Type: elementParagraph, Text: text})
		}

	case "ul", "ol":
		b.list(n)

	case "li":
		if !b.inList {
			b.traverseChildren(n)
			return
		}
		if text := directTextContent(n); text != "" {
			b.items = append(b.items, listItem{Text: text, Level: b.listLevel})
		}
		b.listLevel++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				b.traverse(c)
			}
		}
		b.listLevel--

	case "table":
		b.flushList()
		if t := parseTable(n); len(t.Rows) > 0 {
			b.add(parsedElement{Type: elementTable, Table: t})
		}

	case "pre":
		b.flushList()
		if text := strings.Trim(rawText(n), "\n"); strings.TrimSpace(text) != "" {
			b.add(parsedElement{Type: elementCode, Text: text})
		}

	case "blockquote":
		b.flushList()
		if text := textContent(n); text != "" {
			b.add(parsedElement{Type: elementBlockquote, Text: text})
		}

	case "br", "hr":

	default:
		b.traverseChildren(n)
	}
}

// list collects a top-level list with its nested sublists into one
// element. Nested lists only raise the item level.
func (b *builder) list(n *html.Node) {
	if b.inList {
		b.traverseChildren(n)
		return
	}
	b.flushList()
	b.inList = true
	b.listLevel = 0
	b.traverseChildren(n)
	b.flushList()
}

func parseTable(n *html.Node) *parsedTable {
	t := &parsedTable{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead":
				t.HasHeader = true
				walk(c)
			case "tbody", "tfoot":
				walk(c)
			case "tr":
				if row := parseRow(c); len(row) > 0 {
					t.Rows = append(t.Rows, row)
				}
			}
		}
	}
	walk(n)
	return t
}

// parseRow returns the cell texts of a row. A colspan pads the row with
// empty cells, capped at 100 columns per cell.
func parseRow(tr *html.Node) []string {
	var row []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		text := strings.Join(strings.Fields(textContent(c)), " ")
		span := 1
		if v, err := strconv.Atoi(getAttr(c, "colspan")); err == nil && v > 1 {
			span = min(v, 100)
		}
		row = append(row, text)
		for range span - 1 {
			row = append(row, "")
		}
	}
	if strings.TrimSpace(strings.Join(row, "")) == "" {
		return nil
	}
	return row
}

func skipElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "head":
		return true
	}
	return false
}

// isBlockContainer reports whether n has block-level children.
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "div", "p", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6",
			"blockquote", "pre", "article", "section", "header", "footer", "nav", "aside", "main":
			return true
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// textContent returns the trimmed text below n with whitespace runs inside
// each line collapsed. <br> becomes a newline.
func textContent(n *html.Node) string {
	lines := strings.Split(rawText(n), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// rawText returns the text below n. Newlines in source text are kept only
// inside <pre>.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node, pre bool)
	walk = func(n *html.Node, pre bool) {
		switch n.Type {
		case html.TextNode:
			if pre {
				sb.WriteString(n.Data)
			} else {
				sb.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
			}
			return
		case html.ElementNode:
			if skipElement(n.Data) {
				return
			}
			if n.Data == "br" {
				sb.WriteByte('\n')
				return
			}
			pre = pre || n.Data == "pre"
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, pre)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "td", "th":
				sb.WriteByte(' ')
			}
		}
	}
	walk(n, false)
	return sb.String()
}

// directTextContent returns the text of n without nested block children.
func directTextContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
		case c.Type == html.ElementNode:
			switch c.Data {
			case "ul", "ol", "div", "p", "table", "blockquote":
			default:
				sb.WriteString(textContent(c))
			}
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
