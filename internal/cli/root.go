// Package cli implements the receipt-savings command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/receipt-savings-parser/internal/api"
	"github.com/insightdelivered/receipt-savings-parser/internal/catalog"
	"github.com/insightdelivered/receipt-savings-parser/internal/config"
	"github.com/insightdelivered/receipt-savings-parser/internal/extractor"
)

var (
	cfgFile string
	verbose bool

	// set by initConfig before any subcommand runs
	cfg     *config.Config
	cfgUsed string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "receipt-savings",
	Short: "Extract discount and spending line items from Japanese receipts",
	Long: `receipt-savings reads receipt photos, digital receipt PDFs or already
recognized text, and proposes line items with a name, a yen amount and a
confidence score for a person to confirm.

Discounts (値引, 割引, ▲) are paired with the product they apply to, so the
savings on a receipt can be recorded as well as what was spent.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "receipt-savings v%s\n", api.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.receipt-savings/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	used, err := config.Init(v, cfgFile)
	if err != nil {
		return err
	}
	c, err := config.Load(v)
	if err != nil {
		return err
	}
	if verbose {
		c.Log.Level = "debug"
	}

	cfg, cfgUsed = c, used
	logger = c.Log.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(logger)
	if used != "" {
		logger.Debug("config.loaded", "file", used)
	}
	return nil
}

func newCatalog(c *config.Config) (*catalog.Catalog, error) {
	if c.Parser.VocabularyFile == "" {
		return catalog.Default(), nil
	}
	vocab, err := catalog.LoadVocabulary(c.Parser.VocabularyFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog.vocabulary", "file", c.Parser.VocabularyFile)
	return catalog.Compile(vocab), nil
}

// newRecognizer builds the OCR chain: cache, then rate limit, then Tesseract.
// Cache hits never wait on the limiter.
func newRecognizer(c *config.Config, tokens bool) extractor.Recognizer {
	tess := extractor.NewTesseract(c.OCR.Language, logger)
	tess.Tokens = tokens

	rec := extractor.NewRateLimitedRecognizer(tess, c.OCR.RateLimit, c.OCR.RateBurst)
	return extractor.NewCachedRecognizer(rec, c.OCR.CacheTTL)
}
