package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/insightdelivered/receipt-savings-parser/internal/models"
	"github.com/insightdelivered/receipt-savings-parser/internal/parser"
)

// Loader turns a receipt file into text.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// ReceiptJob loads and parses one receipt file.
type ReceiptJob struct {
	index  int
	Path   string
	Loader Loader
	Parser *parser.Parser
}

func (j *ReceiptJob) Index() int { return j.index }

// Execute loads the file and parses its text. A load failure is reported on
// the result; parsing itself cannot fail.
func (j *ReceiptJob) Execute(ctx context.Context) Result {
	text, err := j.Loader.Load(ctx, j.Path)
	if err != nil {
		return &ReceiptResult{index: j.index, Path: j.Path, Error: err}
	}
	return &ReceiptResult{
		index:  j.index,
		Path:   j.Path,
		Text:   text,
		Result: j.Parser.Parse(text),
	}
}

// ReceiptResult is the outcome of a ReceiptJob.
type ReceiptResult struct {
	index  int
	Path   string
	Text   string
	Result *models.ParseResult
	Error  error
}

func (r *ReceiptResult) Index() int      { return r.index }
func (r *ReceiptResult) GetError() error { return r.Error }

// BatchProcessor parses many receipt files concurrently.
type BatchProcessor struct {
	loader      Loader
	parser      *parser.Parser
	concurrency int
	logger      *slog.Logger
}

// NewBatchProcessor creates a batch processor. A nil logger uses slog.Default.
func NewBatchProcessor(loader Loader, p *parser.Parser, concurrency int, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		loader:      loader,
		parser:      p,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessFiles parses paths and returns one result per path, in input order.
// Paths not reached before ctx is cancelled carry ctx's error.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*ReceiptResult {
	if len(paths) == 0 {
		return []*ReceiptResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, path := range paths {
			job := &ReceiptJob{index: i, Path: path, Loader: b.loader, Parser: b.parser}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	out := make([]*ReceiptResult, len(paths))
	for _, r := range pool.Collect() {
		rr := r.(*ReceiptResult)
		out[rr.index] = rr
	}
	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &ReceiptResult{index: i, Path: paths[i], Error: err}
			continue
		}
		if r.Error != nil {
			b.logger.Warn("batch.file.failed", "path", r.Path, "error", r.Error)
			continue
		}
		b.logger.Debug("batch.file.done",
			"path", r.Path,
			"method", string(r.Result.Method),
			"items", len(r.Result.Items),
		)
	}
	return out
}

// ReadPathsFromFile reads receipt paths from a list file, one per line.
// Blank lines and # comments are skipped and duplicates dropped.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
