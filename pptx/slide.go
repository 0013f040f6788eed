package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Slide is one slide's extracted text.
type Slide struct {
	Number int    // 1-indexed position in the presentation
	Text   string // slide body, one line per paragraph
	Notes  string // speaker notes, if read
}

// slideText returns the DrawingML text of a slide or notes part. Text runs
// in a paragraph are joined by spaces and each paragraph ends a line.
func slideText(data []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(data))

	var text, run strings.Builder
	inText := false
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
				run.Reset()
			}
		case xml.CharData:
			if inText {
				run.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
				if strings.TrimSpace(run.String()) != "" {
					text.WriteString(run.String())
					text.WriteByte(' ')
				}
			case "p":
				s := text.String()
				if strings.TrimSpace(s) != "" && !strings.HasSuffix(s, "\n") {
					text.WriteByte('\n')
				}
			}
		}
	}
	return text.String(), nil
}

// processSlideText trims lines and drops blank ones. Without
// preserveFormatting, lines shorter than two bytes are dropped and a line
// ending a sentence is followed by a blank line.
func processSlideText(text string, preserveFormatting bool) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !preserveFormatting && len(line) < 2 {
			continue
		}
		lines = append(lines, line)
	}
	if preserveFormatting {
		return strings.Join(lines, "\n")
	}

	var sb strings.Builder
	for i, line := range lines {
		sb.WriteString(line)
		if i == len(lines)-1 {
			break
		}
		switch line[len(line)-1] {
		case '.', '!', '?':
			sb.WriteString("\n\n")
		default:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
