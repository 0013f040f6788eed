package epubdoc

import (
	"encoding/xml"
	"errors"

	"github.com/tsawler/docproc/internal/ooxml"
)

// Container-related errors.
var (
	ErrNoContainer      = errors.New("epub: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("epub: invalid container.xml")
	ErrNoRootfile       = errors.New("epub: no rootfile found in container.xml")
)

const containerPath = "META-INF/container.xml"

// containerXML represents the structure of META-INF/container.xml.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// parseContainer returns the path of the OPF package document. A rootfile
// with the OEBPS media type wins; otherwise the first rootfile is used.
func parseContainer(a *ooxml.Archive) (string, error) {
	data, err := a.Read(containerPath)
	if err != nil {
		return "", ErrNoContainer
	}

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", ErrInvalidContainer
	}

	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "") {
			return rf.FullPath, nil
		}
	}
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", ErrNoRootfile
}
