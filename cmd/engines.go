package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/ocr"
	"github.com/nodewee/ocr-hub/pkg/pdf"
)

// enginesCmd reports which OCR engines and PDF renderers can run here
var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Show available OCR engines and PDF renderers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfigWithEnvOverrides()
		applyCommandLineOverrides(cfg)
		return listEngines(cmd, cfg, ocr.NewSelector(cfg, logger.Nop()))
	},
}

func listEngines(cmd *cobra.Command, cfg *config.Config, selector *ocr.Selector) error {
	w := cmd.OutOrStdout()

	statuses, err := selector.Status(cmd.Context())
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, []string{string(st.Strategy), availability(st.Available), st.Description})
	}
	fmt.Fprintf(w, "🔍 OCR engines (configured: %s)\n", cfg.OCRStrategy)
	printTable(w, []string{"Engine", "Status", "Description"}, rows)

	fmt.Fprintln(w)
	return listRenderers(w, cfg)
}

// listRenderers prints the rasterizer fallback chain in order
func listRenderers(w io.Writer, cfg *config.Config) error {
	rows := make([][]string, 0, len(cfg.Renderers))
	for i, name := range cfg.Renderers {
		backend, err := pdf.NewBackend(name, cfg, logger.Nop())
		if err != nil {
			return err
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), name, availability(backend.Available())})
	}
	fmt.Fprintln(w, "🖨️  PDF renderers (fallback order)")
	printTable(w, []string{"Order", "Renderer", "Status"}, rows)
	return nil
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "missing"
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}
