package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/docproc"
	"github.com/tsawler/docproc/internal/config"
	"github.com/tsawler/docproc/internal/logger"
	"github.com/tsawler/docproc/internal/server"
)

// app is the state shared by every subcommand, built before each run.
type app struct {
	configPath string
	logLevel   string

	cfg  *config.Config
	log  *zap.Logger
	proc *docproc.Processor
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "docproc",
		Short:         "Extract text and metadata from documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newParseCmd(a),
		newMetaCmd(a),
		newMarkdownCmd(a),
		newFormatsCmd(),
		newChunkCmd(a),
		newCleanCmd(a),
		newLangCmd(),
		newBatchCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, logger.WithLevel(a.logLevel))
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.proc = docproc.New(cfg.ProcessorOptions(log)...)
	return nil
}

func (a *app) server() *server.Server {
	return server.New(a.proc, server.Defaults{
		Extract:      a.cfg.Extract,
		Clean:        a.cfg.Clean,
		Chunk:        a.cfg.Chunk.ChunkOptions,
		ChunkSize:    a.cfg.Chunk.Size,
		ChunkOverlap: a.cfg.Chunk.Overlap,
	}, a.log, version)
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported document formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range docproc.SupportedFormats() {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}
