package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tsawler/docproc"
	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/langdetect"
	"github.com/tsawler/docproc/normalize"
	"github.com/tsawler/docproc/rag"
)

// maxJSONBody bounds the text endpoints.
const maxJSONBody = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"formats": docproc.SupportedFormats()})
}

// handleParse extracts text from the raw request body.
// POST /v1/parse?filename=report.pdf&preserve_formatting=true
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	opts, err := s.extractOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	content, err := s.readDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.proc.Extract(content, r.URL.Query().Get("filename"), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleMetadata reports document metadata.
// POST /v1/metadata?filename=deck.pptx
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	content, err := s.readDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	meta, err := s.proc.Metadata(content, r.URL.Query().Get("filename"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"metadata": meta})
}

// handleMarkdown converts html, epub and markdown documents.
// POST /v1/markdown?filename=page.html
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	content, err := s.readDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	md, err := s.proc.Markdown(content, r.URL.Query().Get("filename"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"markdown": md})
}

type batchResult struct {
	Index    int        `json:"index"`
	Filename string     `json:"filename"`
	Kind     string     `json:"kind,omitempty"`
	Text     string     `json:"text,omitempty"`
	Error    *errorBody `json:"error,omitempty"`
}

// handleBatch extracts every file part of a multipart form. The whole
// request is bounded by the processor size ceiling. Per-file failures are
// reported in their result slot.
// POST /v1/batch (multipart/form-data, field "files")
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	opts, err := s.extractOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.proc.MaxSize())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeError(w, s.bodyError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, docerr.New(docerr.InvalidConfig, "no files in field \"files\""))
		return
	}

	items := make([]docproc.BatchItem, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			s.writeError(w, docerr.Wrap(docerr.Io, "Failed to open upload", err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.writeError(w, docerr.Wrap(docerr.Io, "Failed to read upload", err))
			return
		}
		items = append(items, docproc.BatchItem{Content: data, Filename: fh.Filename})
	}

	results := s.proc.ProcessBatch(r.Context(), items, opts)
	out := make([]batchResult, len(results))
	for i, res := range results {
		out[i] = batchResult{
			Index:    res.Index,
			Filename: res.Filename,
			Kind:     res.Kind.String(),
			Text:     res.Text,
			Error:    newErrorBody(res.Err),
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

type cleanRequest struct {
	Text    string                  `json:"text"`
	Options *normalize.CleanOptions `json:"options,omitempty"`
}

// POST /v1/clean
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req cleanRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	opts := s.defaults.Clean
	if req.Options != nil {
		opts = *req.Options
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"text": normalize.Clean(req.Text, opts)})
}

type chunkRequest struct {
	Text    string            `json:"text"`
	Size    int               `json:"size,omitempty"`
	Overlap *int              `json:"overlap,omitempty"`
	Options *rag.ChunkOptions `json:"options,omitempty"`
}

// POST /v1/chunk
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	size, overlap, opts := s.defaults.ChunkSize, s.defaults.ChunkOverlap, s.defaults.Chunk
	if req.Size > 0 {
		size = req.Size
	}
	if req.Overlap != nil {
		overlap = *req.Overlap
	}
	if req.Options != nil {
		opts = *req.Options
	}

	texts, err := rag.ChunkText(req.Text, size, overlap, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"chunks": rag.Describe(texts)})
}

type languageRequest struct {
	Text string `json:"text"`
}

// POST /v1/language
func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"language": langdetect.Detect(req.Text)})
}

// readDocument reads the raw request body, rejecting bodies above the
// size ceiling.
func (s *Server) readDocument(r *http.Request) ([]byte, error) {
	limit := s.proc.MaxSize()
	if r.ContentLength > limit {
		return nil, docerr.TooLarge(r.ContentLength, limit)
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, docerr.Wrap(docerr.Io, "Failed to read request body", err)
	}
	if size := int64(len(data)); size > limit {
		return nil, docerr.TooLarge(size, limit)
	}
	return data, nil
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return s.bodyError(err)
	}
	return nil
}

func (s *Server) bodyError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return docerr.TooLarge(mbe.Limit+1, mbe.Limit)
	}
	return badRequest("Invalid request body", err)
}

// extractOptions overlays query parameters on the default extract options.
func (s *Server) extractOptions(q url.Values) (extract.Options, error) {
	opts := s.defaults.Extract

	bools := []struct {
		key string
		dst *bool
	}{
		{"enable_ocr", &opts.EnableOCR},
		{"extract_tables", &opts.ExtractTables},
		{"extract_images", &opts.ExtractImages},
		{"extract_metadata", &opts.ExtractMetadata},
		{"preserve_formatting", &opts.PreserveFormatting},
	}
	for _, b := range bools {
		if v := q.Get(b.key); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return opts, badRequest("Invalid "+b.key, err)
			}
			*b.dst = parsed
		}
	}

	if v := q.Get("max_pages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, docerr.Newf(docerr.InvalidConfig, "Invalid max_pages %q", v)
		}
		opts.MaxPages = n
	}
	if v := q.Get("language"); v != "" {
		opts.Language = v
	}
	return opts, nil
}
