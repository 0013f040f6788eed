package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/docproc"
	"github.com/tsawler/docproc/docerr"
)

type batchLine struct {
	Filename string `json:"filename"`
	Kind     string `json:"kind,omitempty"`
	Chars    int    `json:"chars"`
	Text     string `json:"text,omitempty"`
	Error    string `json:"error,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		flags  extractFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "batch file...",
		Short: "Extract many documents concurrently",
		Long: "Extract many documents concurrently. A failing file is reported and\n" +
			"does not stop the others; the exit status is non-zero if any failed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]docproc.BatchItem, len(args))
			readErrs := make([]error, len(args))
			for i, path := range args {
				items[i].Filename = path
				data, err := os.ReadFile(path)
				if err != nil {
					readErrs[i] = docerr.Wrap(docerr.Io, "Failed to read file", err)
					continue
				}
				items[i].Content = data
			}

			results := a.proc.ProcessBatch(cmd.Context(), items, flags.options(cmd, a.cfg.Extract))

			failed := 0
			lines := make([]batchLine, len(results))
			for i, r := range results {
				if readErrs[i] != nil {
					r.Err, r.Text = readErrs[i], ""
				}
				lines[i] = batchLine{Filename: r.Filename, Kind: r.Kind.String(), Chars: len([]rune(r.Text))}
				if r.Err != nil {
					failed++
					lines[i].Error = r.Err.Error()
					continue
				}
				if asJSON {
					lines[i].Text = r.Text
				}
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), lines); err != nil {
					return err
				}
			} else {
				for _, l := range lines {
					if l.Error != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", l.Filename, l.Error)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s, %d chars)\n", l.Filename, l.Kind, l.Chars)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(results))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results, including text, as JSON")
	return cmd
}
