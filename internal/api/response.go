package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/receipt-savings-parser/internal/extractor"
	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

// User-facing messages, in the language of the receipts.
const (
	msgParsed         = "正常に解析されました"
	msgReviewManually = "一部の情報が抽出できませんでした。手動で確認してください。"
	msgTestMode       = "テストモード: 認識結果のみを返しました"
	msgNoImage        = "画像ファイルが提供されていません"
	msgNoText         = "テキストが検出されませんでした"
	msgBadFormat      = "対応していないファイル形式です。JPEG、PNG、PDFなどを使用してください。"
	msgTimeout        = "OCR処理がタイムアウトしました。しばらく待ってから再試行してください。"
	msgOCRDisabled    = "このサーバーではOCRが有効になっていません。"
	msgBadRequest     = "リクエストの形式が正しくありません。"
	msgOCRFailed      = "OCR処理中にエラーが発生しました。再試行してください。"
	msgRateLimited    = "APIの利用制限に達しました。しばらく待ってから再試行してください。"
)

// ExtractedData is the whole-text field summary. Missing fields are null.
type ExtractedData struct {
	TotalAmount    *int    `json:"totalAmount"`
	DiscountAmount *int    `json:"discountAmount"`
	ProductName    *string `json:"productName"`
	StoreName      *string `json:"storeName"`
	Date           *string `json:"date"`
	Confidence     float64 `json:"confidence"`
}

// Enhanced carries the line items.
type Enhanced struct {
	Items             []models.LineItem `json:"items"`
	OverallConfidence float64           `json:"overallConfidence"`
	Method            models.Strategy   `json:"method"`
}

// OCRResponse is the JSON response of /api/ocr and /api/parse.
type OCRResponse struct {
	Success       bool                `json:"success"`
	Error         string              `json:"error,omitempty"`
	Details       string              `json:"details,omitempty"`
	Message       string              `json:"message,omitempty"`
	RequestID     string              `json:"requestId,omitempty"`
	RawText       string              `json:"rawText,omitempty"`
	ExtractedData ExtractedData       `json:"extractedData"`
	Enhanced      *Enhanced           `json:"enhanced,omitempty"`
	Tokens        []extractor.Token   `json:"tokens,omitempty"`
	Trace         []models.TraceEvent `json:"trace,omitempty"`
}

func extractedData(res *models.ParseResult) ExtractedData {
	m := res.Metadata
	d := ExtractedData{Confidence: res.FieldConfidence}
	if m.TotalAmount > 0 {
		d.TotalAmount = &m.TotalAmount
	}
	if m.DiscountAmount > 0 {
		d.DiscountAmount = &m.DiscountAmount
	}
	if m.ProductName != "" {
		d.ProductName = &m.ProductName
	}
	if m.StoreName != "" {
		d.StoreName = &m.StoreName
	}
	if m.Date != "" {
		d.Date = &m.Date
	}
	return d
}

// resultMessage tells the user whether to double-check the proposal.
func resultMessage(confidence float64) string {
	if confidence > 0.5 {
		return msgParsed
	}
	return msgReviewManually
}

// ErrorMessage maps a boundary failure to a localized message and status.
func ErrorMessage(err error) (int, string) {
	switch {
	case errors.Is(err, extractor.ErrNoText):
		return fiber.StatusOK, msgNoText
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return fiber.StatusUnsupportedMediaType, msgBadFormat
	case errors.Is(err, extractor.ErrRateLimited):
		return fiber.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, msgTimeout
	case errors.Is(err, extractor.ErrOCRNotEnabled):
		return fiber.StatusServiceUnavailable, msgOCRDisabled
	default:
		return fiber.StatusInternalServerError, msgOCRFailed
	}
}

func writeError(c *fiber.Ctx, status int, msg string, err error) error {
	resp := OCRResponse{
		Success:   false,
		Error:     msg,
		RequestID: requestID(c),
	}
	if err != nil {
		resp.Details = err.Error()
	}
	return c.Status(status).JSON(resp)
}
