package parser

import (
	"log/slog"

	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

// tracer collects per-line decisions for one Parse call. It never affects results.
type tracer struct {
	enabled bool
	logger  *slog.Logger
	events  []models.TraceEvent
}

func (t *tracer) add(stage string, lineNum int, text, result, detail string) {
	if t == nil || !t.enabled {
		return
	}
	ev := models.TraceEvent{Stage: stage, LineNum: lineNum, Text: text, Result: result, Detail: detail}
	t.events = append(t.events, ev)
	if t.logger != nil {
		t.logger.Debug("parse.trace",
			"stage", stage,
			"line", lineNum,
			"text", text,
			"result", result,
			"detail", detail,
		)
	}
}
