package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/scrimbot/internal/model"
)

// TestWriteErrorResponse_WritesUnifiedFormat は統一エラーフォーマットでレスポンスが書き込まれることを検証する。
func TestWriteErrorResponse_WritesUnifiedFormat(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, http.StatusServiceUnavailable, &model.AppError{
		Code:     "DB_UNAVAILABLE",
		Message:  "Database is unreachable.",
		Category: model.CategorySystem,
		Action:   "Check DATABASE_URL.",
	})

	resp := w.Result()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Code != "DB_UNAVAILABLE" {
		t.Errorf("code = %q, want %q", body.Code, "DB_UNAVAILABLE")
	}
	if body.Category != model.CategorySystem {
		t.Errorf("category = %q, want %q", body.Category, model.CategorySystem)
	}
	if body.Action != "Check DATABASE_URL." {
		t.Errorf("action = %q", body.Action)
	}
}

// TestWriteInternalServerError_HidesDetails は内部エラーで詳細を返さないことを検証する。
func TestWriteInternalServerError_HidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
}
