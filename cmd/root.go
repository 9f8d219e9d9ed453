package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nodewee/ocr-hub/pkg/capture"
	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/core"
	"github.com/nodewee/ocr-hub/pkg/export"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/session"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

var (
	outputPath     string
	ocrStrategy    string
	llmTemplate    string
	language       string
	renderers      string
	timeoutSeconds int
	useCamera      bool
	saveText       bool
	copyText       bool
	verbose        bool
	showVersion    bool
)

// AppHandler runs one extraction from the command line
type AppHandler struct {
	config     *config.Config
	logger     *logger.Logger
	controller *session.Controller
	out        io.Writer
}

// NewAppHandler loads configuration, applies flag overrides and wires the pipeline
func NewAppHandler(out io.Writer) (*AppHandler, error) {
	cfg := config.LoadConfigWithEnvOverrides()
	applyCommandLineOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.EnableVerbose)
	pipeline, err := core.NewPipeline(cfg, log, nil)
	if err != nil {
		return nil, err
	}

	controller := session.NewController(pipeline.Aggregator, session.Options{
		Camera:       capture.NewFFmpegCamera(cfg.FFmpegPath, log),
		CameraDevice: cfg.CameraDevice,
		Clipboard:    export.SystemClipboard{},
		Logger:       log,
		// The terminal has nowhere to show a thumbnail
		Preview: func([]byte, string) (string, error) { return "", nil },
	})

	return &AppHandler{config: cfg, logger: log, controller: controller, out: out}, nil
}

// applyCommandLineOverrides applies flags on top of file and environment settings
func applyCommandLineOverrides(cfg *config.Config) {
	if ocrStrategy != "" {
		cfg.OCRStrategy = types.OCRStrategy(ocrStrategy)
	}
	if llmTemplate != "" {
		cfg.LLMTemplate = llmTemplate
	}
	if language != "" {
		cfg.Language = language
	}
	if renderers != "" {
		cfg.Renderers = config.SplitList(renderers)
	}
	if timeoutSeconds > 0 {
		cfg.TimeoutSeconds = timeoutSeconds
	}
	if verbose {
		cfg.EnableVerbose = true
	}
}

// Run extracts text from inputFile, or from a camera snapshot when useCamera is set
func (h *AppHandler) Run(ctx context.Context, inputFile string) error {
	defer h.controller.Close()

	states, cancel := h.controller.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.followProgress(states)
	}()

	result, err := h.extract(ctx, inputFile)
	cancel()
	<-done
	if err != nil {
		return err
	}

	h.displayResults(result)
	return h.deliver()
}

func (h *AppHandler) extract(ctx context.Context, inputFile string) (*interfaces.ExtractionResult, error) {
	if useCamera {
		if err := h.controller.StartCamera(ctx); err != nil {
			return nil, err
		}
		h.logger.ProgressAlways("📷", "Capturing a frame from %s", h.config.CameraDevice)
		return h.controller.CaptureFromCamera(ctx)
	}

	absPath, err := filepath.Abs(inputFile)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "error resolving file path")
	}
	file, err := capture.FromPath(absPath)
	if err != nil {
		return nil, err
	}
	h.logger.Progress("📄", "Processing %s (%s, %s)", file.Name, file.MIMEType, file.SizeMB())
	return h.controller.Submit(ctx, file)
}

// followProgress prints progress and pipeline notifications until states is closed
func (h *AppHandler) followProgress(states <-chan session.State) {
	lastProgress := -1
	var lastSeq uint64
	for s := range states {
		if s.Processing.IsProcessing && s.Processing.Progress != lastProgress {
			lastProgress = s.Processing.Progress
			h.logger.Progress("⏳", "%d%%", lastProgress)
		}
		n := s.Notification
		if n.Visible && n.Seq != lastSeq && n.Kind == types.NotificationInfo {
			lastSeq = n.Seq
			h.logger.Progress("ℹ️ ", "%s", n.Message)
		}
	}
}

// displayResults prints the run summary to stderr-style progress output
func (h *AppHandler) displayResults(result *interfaces.ExtractionResult) {
	chars, words := export.Stats(result.Text)
	h.logger.ProgressAlways("✅", "%s", session.MsgExtractionSucceeded)
	h.logger.Progress("📊", "Engine used: %s", result.EngineUsed)
	if result.RendererUsed != "" {
		h.logger.Progress("🖨️ ", "Renderer used: %s", result.RendererUsed)
	}
	if result.FallbackUsed {
		h.logger.ProgressAlways("⚠️ ", "Fallback renderer was used")
	}
	h.logger.Progress("⏱️ ", "Processing time: %dms", result.ProcessTimeMS)
	h.logger.ProgressAlways("📝", "%d characters, %d words", chars, words)
}

// deliver writes the text to a file, the clipboard or stdout
func (h *AppHandler) deliver() error {
	text := h.controller.State().Text

	switch {
	case outputPath != "":
		path, err := export.SaveText(filepath.Dir(outputPath), filepath.Base(outputPath), text)
		if err != nil {
			return err
		}
		h.logger.ProgressAlways("💾", "Saved to %s", path)
	case saveText:
		name, _ := h.controller.CurrentDownload()
		path, err := export.SaveText(".", name, text)
		if err != nil {
			return err
		}
		h.logger.ProgressAlways("💾", "%s (%s)", session.MsgDownloaded, path)
	default:
		if err := h.controller.DownloadText(h.out, text); err != nil {
			return err
		}
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(h.out)
		}
	}

	if copyText {
		if err := h.controller.CopyCurrent(); err != nil {
			return err
		}
		h.logger.ProgressAlways("📋", "%s", session.MsgCopied)
	}
	return nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ocr-hub [input_file]",
	Short: "Extract text from images and PDFs with OCR",
	Long: `Extract text from an image, a PDF (first ` + fmt.Sprint(constants.MaxPDFPages) + ` pages) or a camera snapshot.

Supported inputs: PNG, JPEG, GIF, BMP, WebP and PDF.

OCR engines:
- tesseract:     in-process Tesseract (binaries built with -tags ocr)
- tesseract-cli: the tesseract command
- surya_ocr:     Surya OCR
- llm-caller:    LLM Caller with a template (see --llm_template)
- auto:          first available of the above (default)

PDF pages are rendered with MuPDF, falling back to pdftoppm or ghostscript
when the preferred renderer is unavailable.

Examples:
  ocr-hub receipt.jpg                         # Print the text of an image
  ocr-hub scan.pdf -o ./scan.txt              # Save the text of a PDF
  ocr-hub scan.pdf --save --copy              # Save as extracted_text.txt and copy it
  ocr-hub --camera                            # Recognize a camera snapshot
  ocr-hub photo.png --ocr tesseract-cli --lang deu
  ocr-hub serve                               # Open the capture page in a browser`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.AppName, version)
			return nil
		}
		if len(args) == 0 && !useCamera {
			return cmd.Help()
		}

		handler, err := NewAppHandler(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		var input string
		if len(args) > 0 {
			input = args[0]
		}
		return handler.Run(cmd.Context(), input)
	},
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// PrintError reports err the way the CLI shows failures
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "❌ Error (%s): %s\n", utils.GetErrorType(err), utils.UserMessage(err))
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Write the text to this file instead of stdout")
	rootCmd.Flags().BoolVar(&saveText, "save", false,
		"Save the text as "+constants.DefaultDownloadName+" in the current directory")
	rootCmd.Flags().BoolVar(&copyText, "copy", false,
		"Copy the text to the clipboard")
	rootCmd.Flags().BoolVar(&useCamera, "camera", false,
		"Recognize a snapshot from the camera instead of a file")
	rootCmd.Flags().StringVar(&ocrStrategy, "ocr", "",
		"OCR engine (auto, tesseract, tesseract-cli, surya_ocr, llm-caller)")
	rootCmd.Flags().StringVar(&llmTemplate, "llm_template", "",
		"LLM template for the llm-caller engine")
	rootCmd.Flags().StringVar(&language, "lang", "",
		"Recognition language (default "+constants.DefaultLanguage+")")
	rootCmd.Flags().StringVar(&renderers, "renderers", "",
		"PDF renderer fallback order, comma separated (fitz, pdftoppm, ghostscript)")
	rootCmd.Flags().IntVar(&timeoutSeconds, "timeout", 0,
		"Abort a recognition after this many seconds (0 = no timeout)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output to show progress information")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false,
		"Show version information")
}
