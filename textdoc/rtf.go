package textdoc

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
)

// Destinations whose content is never text.
var rtfSkipped = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "pict": true,
	"listtable": true, "listoverridetable": true, "rsidtbl": true,
	"generator": true, "themedata": true, "colorschememapping": true,
	"datastore": true, "latentstyles": true, "xmlnstbl": true, "object": true,
	"fldinst": true, "filetbl": true, "revtbl": true, "info": true,
	"nonshppict": true, "bkmkstart": true, "bkmkend": true,
}

// Fields of the \info group reported as metadata, keyed by control word.
var rtfInfoFields = map[string]string{
	"title":    "title",
	"author":   "author",
	"subject":  "subject",
	"keywords": "keywords",
	"doccomm":  "comment",
	"operator": "last_modified_by",
	"company":  "company",
	"category": "category",
}

var rtfSymbols = map[string]string{
	"par": "\n", "line": "\n", "sect": "\n", "page": "\n", "row": "\n",
	"tab": "\t", "cell": "\t",
	"emdash": "\u2014", "endash": "\u2013", "bullet": "\u2022",
	"lquote": "\u2018", "rquote": "\u2019", "ldblquote": "\u201c", "rdblquote": "\u201d",
	"emspace": " ", "enspace": " ", "qmspace": " ",
}

var rtfCodePages = map[int]*charmap.Charmap{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	10000: charmap.Macintosh,
}

type rtfGroup struct {
	skip  bool
	info  bool
	uc    int
	field string
}

type rtfParser struct {
	src      []byte
	pos      int
	cur      rtfGroup
	stack    []rtfGroup
	pending  int // fallback bytes still to skip after \u
	codePage *charmap.Charmap
	cpNumber int
	out      strings.Builder
	fields   map[string]*strings.Builder
}

func parseRTF(src []byte) *rtfParser {
	p := &rtfParser{
		src:      src,
		cur:      rtfGroup{uc: 1},
		codePage: charmap.Windows1252,
		cpNumber: 1252,
		fields:   make(map[string]*strings.Builder),
	}
	p.run()
	return p
}

func (p *rtfParser) run() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '{':
			p.stack = append(p.stack, p.cur)
			p.pending = 0
			p.pos++
		case '}':
			if n := len(p.stack); n > 0 {
				p.cur = p.stack[n-1]
				p.stack = p.stack[:n-1]
			}
			p.pending = 0
			p.pos++
		case '\\':
			p.control()
		case '\r', '\n':
			p.pos++
		default:
			p.pos++
			if p.pending > 0 {
				p.pending--
				continue
			}
			if c < 0x80 {
				p.emit(string(rune(c)))
			} else {
				p.emit(string(p.codePage.DecodeByte(c)))
			}
		}
	}
}

func (p *rtfParser) control() {
	p.pos++
	if p.pos >= len(p.src) {
		return
	}
	c := p.src[p.pos]
	if !isASCIILetter(c) {
		p.symbol(c)
		return
	}

	start := p.pos
	for p.pos < len(p.src) && isASCIILetter(p.src[p.pos]) {
		p.pos++
	}
	word := string(p.src[start:p.pos])

	param, hasParam := 0, false
	numStart := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos > numStart {
		if n, err := strconv.Atoi(string(p.src[numStart:p.pos])); err == nil {
			param, hasParam = n, true
		}
	}
	if p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}

	p.word(word, param, hasParam)
}

func (p *rtfParser) symbol(c byte) {
	p.pos++
	switch c {
	case '\'':
		if p.pos+2 > len(p.src) {
			p.pos = len(p.src)
			return
		}
		b, err := strconv.ParseUint(string(p.src[p.pos:p.pos+2]), 16, 8)
		p.pos += 2
		if err != nil {
			return
		}
		if p.pending > 0 {
			p.pending--
			return
		}
		p.emit(string(p.codePage.DecodeByte(byte(b))))
	case '\\', '{', '}':
		p.emit(string(rune(c)))
	case '~':
		p.emit(" ")
	case '_':
		p.emit("-")
	case '*':
		p.cur.skip = true
	case '\n', '\r':
		p.emit("\n")
	}
}

func (p *rtfParser) word(word string, param int, hasParam bool) {
	if field, ok := rtfInfoFields[word]; ok && p.cur.info {
		p.cur.field = field
		return
	}
	if word == "info" {
		p.cur.info = true
	}
	if rtfSkipped[word] {
		p.cur.skip = true
		return
	}
	if s, ok := rtfSymbols[word]; ok {
		p.emit(s)
		return
	}

	switch word {
	case "u":
		if !hasParam {
			return
		}
		if param < 0 {
			param += 65536
		}
		p.emit(string(rune(param)))
		p.pending = p.cur.uc
	case "uc":
		if hasParam && param >= 0 {
			p.cur.uc = param
		}
	case "ansicpg":
		if cm, ok := rtfCodePages[param]; ok {
			p.codePage = cm
			p.cpNumber = param
		}
	}
}

func (p *rtfParser) emit(s string) {
	if p.cur.field != "" {
		b, ok := p.fields[p.cur.field]
		if !ok {
			b = &strings.Builder{}
			p.fields[p.cur.field] = b
		}
		b.WriteString(s)
		return
	}
	if !p.cur.skip {
		p.out.WriteString(s)
	}
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// RTF implements extract.Extractor and extract.MetadataExtractor for Rich
// Text Format.
type RTF struct{}

// NewRTF returns an RTF extractor.
func NewRTF() RTF {
	return RTF{}
}

func rtfBody(content []byte) ([]byte, error) {
	body := bytes.TrimLeft(content, " \t\r\n\ufeff")
	if !bytes.HasPrefix(body, []byte(`{\rtf`)) {
		return nil, docerr.New(docerr.Rtf, "Not a valid RTF file")
	}
	return body, nil
}

// Extract returns the document text with font tables, pictures, field
// instructions and other non-text destinations removed. Paragraphs become
// lines and table cells are tab-separated; blank lines are dropped.
func (RTF) Extract(content []byte, opts extract.Options) (string, error) {
	body, err := rtfBody(content)
	if err != nil {
		return "", err
	}
	p := parseRTF(body)

	text := trimLines(p.out.String())
	if text == "" {
		return "", docerr.NoText(docerr.Rtf, "No text found in RTF file")
	}
	return text, nil
}

// Metadata reports the \info fields and the code page.
func (RTF) Metadata(content []byte) (map[string]string, error) {
	body, err := rtfBody(content)
	if err != nil {
		return nil, err
	}
	p := parseRTF(body)

	meta := map[string]string{"code_page": strconv.Itoa(p.cpNumber)}
	for key, b := range p.fields {
		if v := strings.TrimSpace(b.String()); v != "" {
			meta[key] = v
		}
	}
	return meta, nil
}
