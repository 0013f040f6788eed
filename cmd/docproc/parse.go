package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsawler/docproc"
	"github.com/tsawler/docproc/extract"
)

// extractFlags are the extraction options shared by parse, chunk and batch.
type extractFlags struct {
	preserve   bool
	noTables   bool
	noMetadata bool
	ocr        bool
	maxPages   int
	language   string
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.preserve, "preserve-formatting", "p", false, "structured, tab-delimited output")
	cmd.Flags().BoolVar(&f.noTables, "no-tables", false, "omit table markers")
	cmd.Flags().BoolVar(&f.noMetadata, "no-metadata", false, "omit headers, footers, notes and frontmatter")
	cmd.Flags().BoolVar(&f.ocr, "ocr", false, "OCR scanned PDFs (requires a build with -tags ocr)")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "cap on pages, sheets, slides or chapters read")
	cmd.Flags().StringVar(&f.language, "language", "", "language hint")
}

// options overlays flags that were set on the configured defaults.
func (f *extractFlags) options(cmd *cobra.Command, base extract.Options) extract.Options {
	opts := base
	flags := cmd.Flags()
	if flags.Changed("preserve-formatting") {
		opts.PreserveFormatting = f.preserve
	}
	if flags.Changed("no-tables") {
		opts.ExtractTables = !f.noTables
	}
	if flags.Changed("no-metadata") {
		opts.ExtractMetadata = !f.noMetadata
	}
	if flags.Changed("ocr") {
		opts.EnableOCR = f.ocr
	}
	if flags.Changed("max-pages") {
		opts.MaxPages = f.maxPages
	}
	if flags.Changed("language") {
		opts.Language = f.language
	}
	return opts
}

func newParseCmd(a *app) *cobra.Command {
	var (
		flags    extractFlags
		clean    bool
		asJSON   bool
		filename string
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Extract plain text from a document",
		Long: "Extract plain text from a document. With no file or \"-\", the document\n" +
			"is read from stdin; use --filename to give its kind a hint.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.document(cmd, args, filename)
			if err != nil {
				return err
			}
			doc = doc.Options(flags.options(cmd, a.cfg.Extract))

			res, err := doc.Result()
			if err != nil {
				return err
			}
			if clean {
				res.Text = docproc.CleanText(res.Text, &a.cfg.Clean)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&clean, "clean", false, "normalize the extracted text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print kind and text as JSON")
	cmd.Flags().StringVar(&filename, "filename", "", "filename hint for stdin input")
	return cmd
}

func newMetaCmd(a *app) *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "meta [file|-]",
		Short: "Print document metadata as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.document(cmd, args, filename)
			if err != nil {
				return err
			}
			meta, err := doc.Metadata()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), meta)
		},
	}
	cmd.Flags().StringVar(&filename, "filename", "", "filename hint for stdin input")
	return cmd
}

func newMarkdownCmd(a *app) *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "markdown [file|-]",
		Short: "Convert an html, epub or markdown document to Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.document(cmd, args, filename)
			if err != nil {
				return err
			}
			md, err := doc.Markdown()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		},
	}
	cmd.Flags().StringVar(&filename, "filename", "", "filename hint for stdin input")
	return cmd
}

// document opens the named file, or reads stdin under the hint filename.
func (a *app) document(cmd *cobra.Command, args []string, filename string) (*docproc.Document, error) {
	if len(args) == 1 && args[0] != "-" {
		return docproc.Open(args[0]).WithProcessor(a.proc), nil
	}
	data, err := readInput(cmd, nil)
	if err != nil {
		return nil, err
	}
	return docproc.FromBytes(data, filename).WithProcessor(a.proc), nil
}
