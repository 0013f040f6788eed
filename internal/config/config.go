// Package config loads docproc settings from a YAML file, a .env file and
// DOCPROC_* environment variables, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/docproc"
	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/htmldoc"
	"github.com/tsawler/docproc/internal/logger"
	"github.com/tsawler/docproc/normalize"
	"github.com/tsawler/docproc/rag"
)

// Config is the full command configuration.
type Config struct {
	// MaxSize is the input size ceiling in bytes.
	MaxSize int64 `yaml:"max_size"`
	// Concurrency bounds parallel batch extraction.
	Concurrency int `yaml:"concurrency"`
	// Navigation is the HTML navigation exclusion mode: none, explicit,
	// standard or aggressive.
	Navigation string `yaml:"navigation_exclusion"`

	Extract extract.Options        `yaml:"extract"`
	Clean   normalize.CleanOptions `yaml:"clean"`
	Chunk   Chunk                  `yaml:"chunk"`
	Log     logger.Config          `yaml:"log"`
	Server  Server                 `yaml:"server"`
}

// Chunk holds the chunking defaults used by the commands.
type Chunk struct {
	Size             int `yaml:"size"`
	Overlap          int `yaml:"overlap"`
	rag.ChunkOptions `yaml:",inline"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxSize:     docproc.DefaultMaxSize,
		Concurrency: 4,
		Navigation:  htmldoc.NavigationExclusionStandard.String(),
		Extract:     extract.DefaultOptions(),
		Clean:       normalize.DefaultCleanOptions(),
		Chunk: Chunk{
			Size:         1000,
			Overlap:      200,
			ChunkOptions: rag.DefaultChunkOptions(),
		},
		Log: logger.DefaultConfig(),
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads path, when non-empty, over the defaults, then applies a .env
// file from the working directory if present, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, docerr.Wrap(docerr.Io, "Failed to read config file", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, docerr.Wrap(docerr.InvalidConfig, "Failed to load .env", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// decode overlays YAML onto cfg. Unknown keys are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return docerr.Wrap(docerr.InvalidConfig, "Failed to parse config file", err)
	}
	return nil
}

// applyEnv overlays DOCPROC_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"DOCPROC_CONCURRENCY", &c.Concurrency},
		{"DOCPROC_CHUNK_SIZE", &c.Chunk.Size},
		{"DOCPROC_CHUNK_OVERLAP", &c.Chunk.Overlap},
		{"DOCPROC_MAX_PAGES", &c.Extract.MaxPages},
	}
	for _, v := range ints {
		s, ok := lookup(v.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return docerr.Wrap(docerr.InvalidConfig, v.key, err)
		}
		*v.dst = n
	}

	if s, ok := lookup("DOCPROC_MAX_SIZE"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return docerr.Wrap(docerr.InvalidConfig, "DOCPROC_MAX_SIZE", err)
		}
		c.MaxSize = n
	}
	if s, ok := lookup("DOCPROC_ENABLE_OCR"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return docerr.Wrap(docerr.InvalidConfig, "DOCPROC_ENABLE_OCR", err)
		}
		c.Extract.EnableOCR = b
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"DOCPROC_NAVIGATION_EXCLUSION", &c.Navigation},
		{"DOCPROC_LANGUAGE", &c.Extract.Language},
		{"DOCPROC_LOG_LEVEL", &c.Log.Level},
		{"DOCPROC_LOG_ENCODING", &c.Log.Encoding},
		{"DOCPROC_ADDR", &c.Server.Addr},
	}
	for _, v := range strs {
		if s, ok := lookup(v.key); ok {
			*v.dst = strings.TrimSpace(s)
		}
	}
	if s, ok := lookup("DOCPROC_LOG_FILE"); ok && strings.TrimSpace(s) != "" {
		c.Log.OutputPaths = []string{"stderr", strings.TrimSpace(s)}
	}
	return nil
}

// Validate reports the first invalid setting as an InvalidConfig error.
func (c *Config) Validate() error {
	switch {
	case c.MaxSize <= 0:
		return docerr.Newf(docerr.InvalidConfig, "max_size must be positive, got %d", c.MaxSize)
	case c.Concurrency <= 0:
		return docerr.Newf(docerr.InvalidConfig, "concurrency must be positive, got %d", c.Concurrency)
	case c.Extract.MaxPages < 0:
		return docerr.Newf(docerr.InvalidConfig, "extract.max_pages must not be negative, got %d", c.Extract.MaxPages)
	case c.Chunk.Size <= 0:
		return docerr.Newf(docerr.InvalidConfig, "chunk.size must be positive, got %d", c.Chunk.Size)
	case c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size:
		return docerr.Newf(docerr.InvalidConfig, "chunk.overlap must be in [0, %d), got %d", c.Chunk.Size, c.Chunk.Overlap)
	}
	if _, ok := htmldoc.ParseNavigationExclusionMode(c.Navigation); !ok {
		return docerr.Newf(docerr.InvalidConfig, "unknown navigation_exclusion %q", c.Navigation)
	}
	return nil
}

// ProcessorOptions converts the settings to docproc options.
func (c *Config) ProcessorOptions(log *zap.Logger) []docproc.Option {
	mode, _ := htmldoc.ParseNavigationExclusionMode(c.Navigation)
	return []docproc.Option{
		docproc.WithMaxSize(c.MaxSize),
		docproc.WithConcurrency(c.Concurrency),
		docproc.WithNavigationExclusion(mode),
		docproc.WithLogger(log),
	}
}
