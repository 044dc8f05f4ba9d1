package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/docvault/internal/domain/document"
	"github.com/geocoder89/docvault/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details struct {
		JSON   string                `json:"json"`
		Field  string                `json:"field"`
		Fields []handlers.FieldError `json:"fields"`
	} `json:"details"`
}

func bindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/documents", func(ctx *gin.Context) {
		var req document.CreateDocumentRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func postBind(t *testing.T, body string) bindErrorResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Code)
	}

	return resp
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	resp := postBind(t, `{"title":"go"}`)

	if resp.Error != "Missing required fields: filePath, userId" {
		t.Fatalf("unexpected message: %q", resp.Error)
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for _, field := range []string{"filePath", "userId"} {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Details.Fields)
		}
		if fieldErr.Rule != "required" {
			t.Fatalf("field %q rule mismatch: got %q want required", field, fieldErr.Rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}

	if _, ok := found["description"]; ok {
		t.Fatalf("description is optional")
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	resp := postBind(t, `{"title":"Lease","filePath":"/f","userId":"one"}`)

	if resp.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Details.JSON)
	}
	if resp.Details.Field != "userId" {
		t.Fatalf("expected detail field to be userId, got %q", resp.Details.Field)
	}
	if len(resp.Details.Fields) == 0 {
		t.Fatalf("expected at least one field error in details.fields")
	}

	fieldErr := resp.Details.Fields[0]
	if fieldErr.Rule != "type" || fieldErr.Message == "" {
		t.Fatalf("unexpected field error %+v", fieldErr)
	}
}

func TestBindJSON_MalformedBody(t *testing.T) {
	if resp := postBind(t, `{"title" "Lease"}`); resp.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("expected invalid_json_syntax, got %q", resp.Details.JSON)
	}

	if resp := postBind(t, ``); resp.Details.JSON != "empty_body" {
		t.Fatalf("expected empty_body, got %q", resp.Details.JSON)
	}
}
