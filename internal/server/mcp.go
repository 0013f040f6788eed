package server

import (
	"context"
	"encoding/base64"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tsawler/docproc"
	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/langdetect"
	"github.com/tsawler/docproc/normalize"
	"github.com/tsawler/docproc/rag"
)

// NewMCPServer returns an MCP server with the docproc tools registered.
func (s *Server) NewMCPServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "docproc", Version: s.version}, nil)
	s.RegisterMCP(srv)
	return srv
}

// ServeStdio runs the MCP server on stdin and stdout until ctx is done or
// the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.NewMCPServer().Run(ctx, &mcp.StdioTransport{})
}

// RegisterMCP registers the docproc tools on srv.
func (s *Server) RegisterMCP(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docproc_parse",
		Description: "Extract plain text from a document (pdf, docx, xlsx, pptx, odt, epub, html, markdown, csv and more).",
	}, s.parseTool)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docproc_metadata",
		Description: "Report document metadata such as file_type, file_size, title and page or sheet counts.",
	}, s.metadataTool)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docproc_formats",
		Description: "List the supported document formats.",
	}, s.formatsTool)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docproc_chunk",
		Description: "Split text into overlapping chunks that respect paragraph and sentence boundaries.",
	}, s.chunkTool)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docproc_clean",
		Description: "Normalize text: Unicode NFC, encoding repair, control characters, line endings and whitespace.",
	}, s.cleanTool)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docproc_detect_language",
		Description: "Detect the language of a text (en, es, fr, de, zh, ja, ko, ru, ar).",
	}, s.languageTool)
}

// documentInput names a document by path or carries it inline.
type documentInput struct {
	Path          string `json:"path,omitempty" jsonschema:"path of a file readable by the server"`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"document bytes, base64 encoded, when path is not set"`
	Filename      string `json:"filename,omitempty" jsonschema:"filename hint for inline content"`
}

func (in documentInput) document(p *docproc.Processor) (*docproc.Document, error) {
	switch {
	case in.Path != "":
		return docproc.Open(in.Path).WithProcessor(p), nil
	case in.ContentBase64 != "":
		data, err := base64.StdEncoding.DecodeString(in.ContentBase64)
		if err != nil {
			return nil, docerr.Wrap(docerr.InvalidConfig, "Invalid content_base64", err)
		}
		return docproc.FromBytes(data, in.Filename).WithProcessor(p), nil
	}
	return nil, docerr.New(docerr.InvalidConfig, "path or content_base64 is required")
}

type parseInput struct {
	Path               string `json:"path,omitempty" jsonschema:"path of a file readable by the server"`
	ContentBase64      string `json:"content_base64,omitempty" jsonschema:"document bytes, base64 encoded, when path is not set"`
	Filename           string `json:"filename,omitempty" jsonschema:"filename hint for inline content"`
	PreserveFormatting *bool  `json:"preserve_formatting,omitempty" jsonschema:"tab-delimited structured output instead of flattened text"`
	ExtractTables      *bool  `json:"extract_tables,omitempty" jsonschema:"include table markers (default true)"`
	ExtractMetadata    *bool  `json:"extract_metadata,omitempty" jsonschema:"include headers, footers, notes and frontmatter (default true)"`
	MaxPages           int    `json:"max_pages,omitempty" jsonschema:"cap on pages, sheets, slides or chapters read"`
	Language           string `json:"language,omitempty" jsonschema:"language hint"`
}

func (in parseInput) options(base extract.Options) extract.Options {
	opts := base
	if in.PreserveFormatting != nil {
		opts.PreserveFormatting = *in.PreserveFormatting
	}
	if in.ExtractTables != nil {
		opts.ExtractTables = *in.ExtractTables
	}
	if in.ExtractMetadata != nil {
		opts.ExtractMetadata = *in.ExtractMetadata
	}
	if in.MaxPages > 0 {
		opts.MaxPages = in.MaxPages
	}
	if in.Language != "" {
		opts.Language = in.Language
	}
	return opts
}

type parseOutput struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func (s *Server) parseTool(_ context.Context, _ *mcp.CallToolRequest, in parseInput) (*mcp.CallToolResult, parseOutput, error) {
	src := documentInput{Path: in.Path, ContentBase64: in.ContentBase64, Filename: in.Filename}
	doc, err := src.document(s.proc)
	if err != nil {
		return nil, parseOutput{}, err
	}

	res, err := doc.Options(in.options(s.defaults.Extract)).Result()
	if err != nil {
		return nil, parseOutput{}, err
	}
	return nil, parseOutput{Kind: res.Kind.String(), Text: res.Text}, nil
}

type metadataOutput struct {
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) metadataTool(_ context.Context, _ *mcp.CallToolRequest, in documentInput) (*mcp.CallToolResult, metadataOutput, error) {
	doc, err := in.document(s.proc)
	if err != nil {
		return nil, metadataOutput{}, err
	}
	meta, err := doc.Metadata()
	if err != nil {
		return nil, metadataOutput{}, err
	}
	return nil, metadataOutput{Metadata: meta}, nil
}

type formatsOutput struct {
	Formats []string `json:"formats"`
}

func (s *Server) formatsTool(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, formatsOutput, error) {
	return nil, formatsOutput{Formats: docproc.SupportedFormats()}, nil
}

type chunkInput struct {
	Text    string `json:"text" jsonschema:"text to split"`
	Size    int    `json:"size,omitempty" jsonschema:"maximum chunk size in bytes"`
	Overlap *int   `json:"overlap,omitempty" jsonschema:"bytes repeated between neighboring chunks"`
}

type chunkOutput struct {
	Chunks []rag.Chunk `json:"chunks"`
}

func (s *Server) chunkTool(_ context.Context, _ *mcp.CallToolRequest, in chunkInput) (*mcp.CallToolResult, chunkOutput, error) {
	size, overlap := s.defaults.ChunkSize, s.defaults.ChunkOverlap
	if in.Size > 0 {
		size = in.Size
	}
	if in.Overlap != nil {
		overlap = *in.Overlap
	}
	texts, err := rag.ChunkText(in.Text, size, overlap, s.defaults.Chunk)
	if err != nil {
		return nil, chunkOutput{}, err
	}
	return nil, chunkOutput{Chunks: rag.Describe(texts)}, nil
}

type textInput struct {
	Text string `json:"text"`
}

type cleanOutput struct {
	Text string `json:"text"`
}

func (s *Server) cleanTool(_ context.Context, _ *mcp.CallToolRequest, in textInput) (*mcp.CallToolResult, cleanOutput, error) {
	return nil, cleanOutput{Text: normalize.Clean(in.Text, s.defaults.Clean)}, nil
}

type languageOutput struct {
	Language string `json:"language"`
}

func (s *Server) languageTool(_ context.Context, _ *mcp.CallToolRequest, in textInput) (*mcp.CallToolResult, languageOutput, error) {
	return nil, languageOutput{Language: langdetect.Detect(in.Text)}, nil
}
