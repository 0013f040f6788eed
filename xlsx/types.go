// Package xlsx extracts text and metadata from XLSX (Office Open XML
// Spreadsheet) workbooks.
package xlsx

import "encoding/xml"

// workbookXML represents the xl/workbook.xml file structure.
type workbookXML struct {
	XMLName xml.Name `xml:"workbook"`
	Sheets  struct {
		Sheet []sheetRefXML `xml:"sheet"`
	} `xml:"sheets"`
}

type sheetRefXML struct {
	Name  string `xml:"name,attr"`
	State string `xml:"state,attr"` // hidden, veryHidden
	RID   string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// worksheetXML represents a xl/worksheets/sheet*.xml file structure.
type worksheetXML struct {
	XMLName   xml.Name `xml:"worksheet"`
	SheetData struct {
		Rows []rowXML `xml:"row"`
	} `xml:"sheetData"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // 1-indexed, optional
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string       `xml:"r,attr"` // e.g. "B3", optional
	T  string       `xml:"t,attr"` // s, n, b, str, inlineStr, e, d
	V  string       `xml:"v"`
	Is *richTextXML `xml:"is"`
}

// sharedStringsXML represents the xl/sharedStrings.xml file structure.
type sharedStringsXML struct {
	XMLName xml.Name      `xml:"sst"`
	SI      []richTextXML `xml:"si"`
}

// richTextXML is either a plain t element or a sequence of formatted runs.
// Phonetic runs (rPh) are not read.
type richTextXML struct {
	T string `xml:"t"`
	R []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (rt richTextXML) text() string {
	if len(rt.R) == 0 {
		return rt.T
	}
	s := rt.T
	for _, r := range rt.R {
		s += r.T
	}
	return s
}

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name `xml:"Relationships"`
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}
