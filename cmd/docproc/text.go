package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsawler/docproc"
	"github.com/tsawler/docproc/rag"
)

func newChunkCmd(a *app) *cobra.Command {
	var (
		flags    extractFlags
		size     int
		overlap  int
		minSize  int
		output   string
		filename string
	)

	cmd := &cobra.Command{
		Use:   "chunk [file|-]",
		Short: "Extract, clean and split a document into chunks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.document(cmd, args, filename)
			if err != nil {
				return err
			}
			doc = doc.Options(flags.options(cmd, a.cfg.Extract))

			opts := a.cfg.Chunk.ChunkOptions
			if cmd.Flags().Changed("min-size") {
				opts.MinChunkSize = minSize
			}
			if !cmd.Flags().Changed("size") {
				size = a.cfg.Chunk.Size
			}
			if !cmd.Flags().Changed("overlap") {
				overlap = a.cfg.Chunk.Overlap
			}

			chunks, err := doc.ChunksWithOptions(size, overlap, opts)
			if err != nil {
				return err
			}
			if output != "text" {
				ef, err := rag.ParseExportFormat(output)
				if err != nil {
					return err
				}
				source := filename
				if len(args) == 1 && args[0] != "-" {
					source = filepath.Base(args[0])
				}
				return rag.NewExporterWithConfig(rag.ExportConfig{
					Format:        ef,
					Source:        source,
					IncludeHeader: true,
				}).Export(chunks, cmd.OutOrStdout())
			}
			for _, c := range chunks {
				fmt.Fprintf(cmd.OutOrStdout(), "--- chunk %d (%d bytes, %d words) ---\n%s\n", c.Index, c.ByteCount, c.WordCount, c.Text)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&size, "size", "s", 1000, "maximum chunk size in bytes")
	cmd.Flags().IntVarP(&overlap, "overlap", "o", 200, "bytes repeated between neighboring chunks")
	cmd.Flags().IntVar(&minSize, "min-size", 0, "drop chunks shorter than this many bytes")
	cmd.Flags().StringVarP(&output, "format", "f", "text", "output format: text, jsonl, json, csv or tsv")
	cmd.Flags().StringVar(&filename, "filename", "", "filename hint for stdin input")
	return cmd
}

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [file|-]",
		Short: "Normalize plain text from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), docproc.CleanText(string(data), &a.cfg.Clean))
			return nil
		},
	}
}

func newLangCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lang [file|-]",
		Short: "Detect the language of plain text from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), docproc.DetectLanguage(string(data)))
			return nil
		},
	}
}
