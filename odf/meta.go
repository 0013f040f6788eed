package odf

import (
	"encoding/xml"
	"strings"
)

// metaXML represents meta.xml.
type metaXML struct {
	XMLName xml.Name    `xml:"document-meta"`
	Meta    metaInfoXML `xml:"meta"`
}

// metaInfoXML represents the office:meta element.
type metaInfoXML struct {
	Title          string       `xml:"title"`
	Description    string       `xml:"description"`
	Subject        string       `xml:"subject"`
	Keyword        []string     `xml:"keyword"`
	InitialCreator string       `xml:"initial-creator"`
	Creator        string       `xml:"creator"`
	CreationDate   string       `xml:"creation-date"`
	Date           string       `xml:"date"`
	Generator      string       `xml:"generator"`
	Language       string       `xml:"language"`
	Statistic      statisticXML `xml:"document-statistic"`
}

// statisticXML carries counts such as meta:page-count as attributes.
type statisticXML struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

// fill copies the non-empty properties into meta under snake_case keys.
// Statistics keep their attribute names with hyphens replaced.
func (m metaInfoXML) fill(meta map[string]string) {
	for key, val := range map[string]string{
		"title":            m.Title,
		"description":      m.Description,
		"subject":          m.Subject,
		"keywords":         strings.Join(m.Keyword, ", "),
		"creator":          m.InitialCreator,
		"last_modified_by": m.Creator,
		"created":          m.CreationDate,
		"modified":         m.Date,
		"generator":        m.Generator,
		"language":         m.Language,
	} {
		if val = strings.TrimSpace(val); val != "" {
			meta[key] = val
		}
	}

	for _, attr := range m.Statistic.Attrs {
		if attr.Value == "" {
			continue
		}
		meta[strings.ReplaceAll(attr.Name.Local, "-", "_")] = attr.Value
	}
}
