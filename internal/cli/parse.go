package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/receipt-savings-parser/internal/models"
	"github.com/insightdelivered/receipt-savings-parser/internal/parser"
	"github.com/insightdelivered/receipt-savings-parser/internal/worker"
	"github.com/insightdelivered/receipt-savings-parser/internal/writer"
)

var (
	parseFormat string
	parseOutput string
	parseList   string
	parseHeader bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file ...]",
	Short: "Parse receipt text, PDF or image files",
	Long: `Parse one or more receipts and print the proposed line items.

Text files (.txt) are parsed as is, PDFs through their text layer and images
through Tesseract (build with -tags ocr). Use "-" to read text from stdin.

Examples:
  receipt-savings parse receipt.txt
  receipt-savings parse --discounts --format csv -o savings.csv *.jpg
  receipt-savings parse --list receipts.txt --format xlsx -o receipts.xlsx
  pbpaste | receipt-savings parse -`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	f := parseCmd.Flags()
	f.StringVarP(&parseFormat, "format", "f", "json", "output format: json, csv, xlsx")
	f.StringVarP(&parseOutput, "output", "o", "", "output file (default: stdout; required for xlsx)")
	f.StringVar(&parseList, "list", "", "file listing receipt paths, one per line")
	f.BoolVar(&parseHeader, "header", true, "include summary rows in CSV output")
	f.Bool("discounts", false, "look for discounts first (otoku mode)")
	f.Bool("trace", false, "record every parsing decision in JSON output")
	f.Int("workers", 4, "receipts parsed concurrently")

	_ = viper.BindPFlag("parser.prioritize_discounts", f.Lookup("discounts"))
	_ = viper.BindPFlag("parser.trace", f.Lookup("trace"))
	_ = viper.BindPFlag("batch.workers", f.Lookup("workers"))
}

// parsedReceipt is one element of the JSON output.
type parsedReceipt struct {
	Source string              `json:"source"`
	Error  string              `json:"error,omitempty"`
	Result *models.ParseResult `json:"result,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	paths := append([]string(nil), args...)
	if parseList != "" {
		listed, err := worker.ReadPathsFromFile(parseList)
		if err != nil {
			return err
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return errors.New(`no receipts given: pass files, "-" for stdin, or --list`)
	}

	format := strings.ToLower(parseFormat)
	switch format {
	case "json", "csv":
	case "xlsx":
		if parseOutput == "" {
			return errors.New("xlsx output needs --output")
		}
	default:
		return fmt.Errorf("unsupported output format: %q", parseFormat)
	}

	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}
	p := parser.NewWithCatalog(cat, parser.Options{
		PrioritizeDiscounts: cfg.Parser.PrioritizeDiscounts,
		Trace:               cfg.Parser.Trace,
		Logger:              logger,
	})
	loader := &stdinLoader{
		in:   cmd.InOrStdin(),
		next: &worker.FileLoader{Recognizer: newRecognizer(cfg, false), Timeout: cfg.OCR.Timeout},
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results := worker.NewBatchProcessor(loader, p, cfg.Batch.Workers, logger).ProcessFiles(ctx, paths)

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "Error processing %s: %v\n", r.Path, r.Error)
		}
	}

	if err := writeResults(cmd.OutOrStdout(), format, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d receipts failed", failed, len(results))
	}
	return nil
}

func writeResults(stdout io.Writer, format string, results []*worker.ReceiptResult) error {
	if format == "json" {
		out := make([]parsedReceipt, len(results))
		for i, r := range results {
			out[i] = parsedReceipt{Source: r.Path, Result: r.Result}
			if r.Error != nil {
				out[i].Error = r.Error.Error()
			}
		}
		return withOutput(stdout, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		})
	}

	var entries []writer.Entry
	for _, r := range results {
		if r.Error == nil {
			entries = append(entries, writer.Entry{Source: r.Path, Result: r.Result})
		}
	}
	w, err := writer.New(format, parseHeader)
	if err != nil {
		return err
	}
	if parseOutput != "" {
		return writer.WriteToFile(w, parseOutput, entries)
	}
	return w.Write(stdout, entries)
}

// withOutput runs write against --output when set, else stdout.
func withOutput(stdout io.Writer, write func(io.Writer) error) (err error) {
	if parseOutput == "" {
		return write(stdout)
	}
	f, err := os.Create(parseOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", parseOutput, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
	}()
	return write(f)
}

// stdinLoader reads the path "-" from in and everything else through next.
type stdinLoader struct {
	in   io.Reader
	next worker.Loader
}

func (l *stdinLoader) Load(ctx context.Context, path string) (string, error) {
	if path != "-" {
		return l.next.Load(ctx, path)
	}
	data, err := io.ReadAll(l.in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
