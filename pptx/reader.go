package pptx

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/internal/ooxml"
)

// Extractor implements extract.Extractor and extract.MetadataExtractor for
// PPTX.
type Extractor struct{}

// New returns a PPTX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract renders each slide with text under a "=== Slide N ===" header,
// followed by its speaker notes under "=== Notes N ===" when
// opts.ExtractMetadata is set. opts.MaxPages caps the number of slides.
func (e *Extractor) Extract(content []byte, opts extract.Options) (string, error) {
	a, err := open(content)
	if err != nil {
		return "", err
	}

	slides, err := readSlides(a, opts)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, s := range slides {
		if s.Text != "" {
			fmt.Fprintf(&sb, "\n=== Slide %d ===\n%s\n", s.Number, s.Text)
		}
		if s.Notes != "" {
			fmt.Fprintf(&sb, "\n=== Notes %d ===\n%s\n", s.Number, s.Notes)
		}
	}

	out := strings.Trim(sb.String(), "\n")
	if out == "" {
		return "", docerr.NoText(docerr.PowerPoint, "No text found in presentation")
	}
	return out, nil
}

// Metadata reports the slide count, whether speaker notes exist and the
// core properties.
func (e *Extractor) Metadata(content []byte) (map[string]string, error) {
	a, err := open(content)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	a.CoreProperties().Fill(meta)
	meta["slide_count"] = strconv.Itoa(len(slidePaths(a)))
	meta["has_notes"] = strconv.FormatBool(len(a.Numbered("ppt/notesSlides/notesSlide", ".xml")) > 0)
	return meta, nil
}

// ExtractLegacy rejects the binary PowerPoint format.
func ExtractLegacy(content []byte, opts extract.Options) (string, error) {
	return "", docerr.New(docerr.PowerPoint, "Legacy PPT format not supported. Please convert to PPTX format.")
}

func open(content []byte) (*ooxml.Archive, error) {
	a, err := ooxml.Open(content)
	if err != nil {
		return nil, docerr.Wrap(docerr.PowerPoint, "Failed to open PPTX", err)
	}
	return a, nil
}

func readSlides(a *ooxml.Archive, opts extract.Options) ([]Slide, error) {
	paths := slidePaths(a)
	if opts.MaxPages > 0 && len(paths) > opts.MaxPages {
		paths = paths[:opts.MaxPages]
	}

	slides := make([]Slide, 0, len(paths))
	for i, p := range paths {
		data, err := a.Read(p)
		if err != nil {
			return nil, docerr.Wrap(docerr.PowerPoint, "Failed to read slide content", err)
		}
		raw, err := slideText(data)
		if err != nil {
			return nil, docerr.Wrap(docerr.PowerPoint, "XML parsing error", err)
		}

		s := Slide{Number: i + 1, Text: processSlideText(raw, opts.PreserveFormatting)}
		if opts.ExtractMetadata {
			if np := notesPath(a, p); np != "" {
				if data, err := a.Read(np); err == nil {
					if raw, err := slideText(data); err == nil {
						s.Notes = processSlideText(raw, opts.PreserveFormatting)
					}
				}
			}
		}
		slides = append(slides, s)
	}
	return slides, nil
}

// slidePaths returns slide parts in presentation order, falling back to
// numeric file order when the presentation part cannot be resolved.
func slidePaths(a *ooxml.Archive) []string {
	fallback := a.Numbered("ppt/slides/slide", ".xml")

	data, err := a.Read("ppt/presentation.xml")
	if err != nil {
		return fallback
	}
	var pres presentationXML
	if xml.Unmarshal(data, &pres) != nil {
		return fallback
	}
	targets := relationshipTargets(a, "ppt/presentation.xml")

	var paths []string
	for _, id := range pres.SlideIDList.SlideID {
		target := targets[id.RID].Target
		if target == "" || !a.Has(target) {
			return fallback
		}
		paths = append(paths, target)
	}
	if len(paths) == 0 {
		return fallback
	}
	return paths
}

// notesPath returns the notes part linked from a slide, or "".
func notesPath(a *ooxml.Archive, slide string) string {
	for _, rel := range relationshipTargets(a, slide) {
		if rel.Type == relTypeNotesSlide {
			return rel.Target
		}
	}
	return ""
}

// relationshipTargets reads the .rels part for the given part and returns
// relationships by ID with targets resolved to archive paths.
func relationshipTargets(a *ooxml.Archive, part string) map[string]relationshipXML {
	dir, base := path.Split(part)
	data, err := a.Read(dir + "_rels/" + base + ".rels")
	if err != nil {
		return nil
	}

	var rels relationshipsXML
	if xml.Unmarshal(data, &rels) != nil {
		return nil
	}

	out := make(map[string]relationshipXML, len(rels.Relationship))
	for _, rel := range rels.Relationship {
		if strings.HasPrefix(rel.Target, "/") {
			rel.Target = strings.TrimPrefix(rel.Target, "/")
		} else {
			rel.Target = path.Join(dir, rel.Target)
		}
		out[rel.ID] = rel
	}
	return out
}
