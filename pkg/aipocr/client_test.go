package aipocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testService is a fake recognition service. Handlers are keyed by URL path;
// tokenCalls counts hits on the token endpoint.
type testService struct {
	t          *testing.T
	tokenCalls int
	handlers   map[string]http.HandlerFunc
}

func newTestService(t *testing.T) (*testService, *httptest.Server) {
	svc := &testService{t: t, handlers: map[string]http.HandlerFunc{}}
	svc.handlers["/oauth/2.0/token"] = func(w http.ResponseWriter, r *http.Request) {
		svc.tokenCalls++
		writeJSON(w, map[string]interface{}{"access_token": "tok-123", "expires_in": 2592000})
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := svc.handlers[r.URL.Path]
		if !ok {
			svc.t.Errorf("unexpected request path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(server.Close)
	return svc, server
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestAuthenticateFailure(t *testing.T) {
	svc, server := newTestService(t)
	svc.handlers["/oauth/2.0/token"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"error":             "invalid_client",
			"error_description": "unknown client id",
		})
	}

	c := New("bad", "creds", WithBaseURL(server.URL))
	err := c.Authenticate(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Authenticate error = %v, want *AuthError", err)
	}
	if authErr.Description != "unknown client id" {
		t.Errorf("Description = %q, want service description", authErr.Description)
	}
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	svc, server := newTestService(t)
	svc.handlers["/rest/2.0/ocr/v1/accurate_basic"] = func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("access_token"); got != "tok-123" {
			t.Errorf("access_token = %q, want tok-123", got)
		}
		writeJSON(w, map[string]interface{}{
			"words_result": []map[string]interface{}{{"words": "hello"}},
		})
	}

	c := New("key", "secret", WithBaseURL(server.URL))
	for i := 0; i < 3; i++ {
		lines, err := c.RecognizeText(context.Background(), []byte("img"))
		if err != nil {
			t.Fatalf("RecognizeText call %d: %v", i+1, err)
		}
		if len(lines) != 1 || lines[0] != "hello" {
			t.Fatalf("lines = %v, want [hello]", lines)
		}
	}
	if svc.tokenCalls != 1 {
		t.Errorf("token endpoint hit %d times, want 1", svc.tokenCalls)
	}
}

func TestServiceErrorCode(t *testing.T) {
	svc, server := newTestService(t)
	svc.handlers["/rest/2.0/ocr/v1/accurate_basic"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"error_code": 17, "error_msg": "daily limit reached"})
	}

	c := New("key", "secret", WithBaseURL(server.URL))
	_, err := c.RecognizeText(context.Background(), []byte("img"))
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	if svcErr.Code != 17 || svcErr.Message != "daily limit reached" {
		t.Errorf("got [%d] %q, want [17] daily limit reached", svcErr.Code, svcErr.Message)
	}
}

func TestTransportErrorOnHTTPStatus(t *testing.T) {
	svc, server := newTestService(t)
	svc.handlers["/rest/2.0/ocr/v1/accurate_basic"] = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusBadGateway)
	}

	c := New("key", "secret", WithBaseURL(server.URL))
	_, err := c.RecognizeText(context.Background(), []byte("img"))
	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if trErr.Op != "text" {
		t.Errorf("Op = %q, want text", trErr.Op)
	}
}

func TestRecognizeTextWithLocationMapsToPoints(t *testing.T) {
	svc, server := newTestService(t)
	svc.handlers["/rest/2.0/ocr/v1/accurate"] = func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostFormValue("recognize_granularity"); got != "small" {
			t.Errorf("recognize_granularity = %q, want small", got)
		}
		if got := r.PostFormValue("paragraph"); got != "false" {
			t.Errorf("paragraph = %q, want false", got)
		}
		writeJSON(w, map[string]interface{}{
			"words_result": []map[string]interface{}{
				{
					"words":    "Chapter",
					"location": map[string]float64{"left": 300, "top": 600, "width": 300, "height": 75},
				},
				{"words": "no-box"},
				{
					"words":    "",
					"location": map[string]float64{"left": 1, "top": 1, "width": 1, "height": 1},
				},
			},
		})
	}

	c := New("key", "secret", WithBaseURL(server.URL))
	words, err := c.RecognizeTextWithLocation(context.Background(), []byte("img"), 300)
	if err != nil {
		t.Fatalf("RecognizeTextWithLocation: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("got %d words, want 1 (items without text or box dropped)", len(words))
	}
	w := words[0]
	// 300 px at 300 dpi is one inch.
	close := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	if w.Text != "Chapter" || !close(w.X, 72) || !close(w.Y, 144) || !close(w.W, 72) || !close(w.H, 18) {
		t.Errorf("word = %+v, want Chapter at (72,144) 72x18", w)
	}
}

func TestRecognizeFormulaAcceptsBothResultKeys(t *testing.T) {
	for _, key := range []string{"formulas_result", "words_result"} {
		key := key
		t.Run(key, func(t *testing.T) {
			svc, server := newTestService(t)
			svc.handlers["/rest/2.0/ocr/v1/formula"] = func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]interface{}{
					key: []map[string]interface{}{{"words": `E = mc^2`}},
				})
			}

			c := New("key", "secret", WithBaseURL(server.URL))
			formulas, err := c.RecognizeFormula(context.Background(), []byte("img"))
			if err != nil {
				t.Fatalf("RecognizeFormula: %v", err)
			}
			if len(formulas) != 1 || formulas[0] != `E = mc^2` {
				t.Errorf("formulas = %v, want [E = mc^2]", formulas)
			}
		})
	}
}

func TestRecognizeTableFlattensCells(t *testing.T) {
	svc, server := newTestService(t)
	svc.handlers["/rest/2.0/ocr/v1/table"] = func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostFormValue("cell_contents"); got != "true" {
			t.Errorf("cell_contents = %q, want true", got)
		}
		writeJSON(w, map[string]interface{}{
			"tables_result": []map[string]interface{}{
				{"body": []map[string]interface{}{
					{"row_start": 1, "row_end": 2, "col_start": 1, "col_end": 2, "words": "姓名"},
					{"row_start": 1, "row_end": 2, "col_start": 2, "col_end": 3, "words": "成绩"},
				}},
			},
		})
	}

	c := New("key", "secret", WithBaseURL(server.URL))
	cells, err := c.RecognizeTable(context.Background(), []byte("img"), TableOptions{CellContents: true})
	if err != nil {
		t.Fatalf("RecognizeTable: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	want := TableCell{RowStart: 1, RowEnd: 2, ColStart: 2, ColEnd: 3, Text: "成绩"}
	if cells[1] != want {
		t.Errorf("cell = %+v, want %+v", cells[1], want)
	}
}

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&AuthError{Description: "bad key"}, "authentication failed: bad key"},
		{&ServiceError{Code: 17, Message: "limit"}, "service error [17]: limit"},
		{&SizeLimitError{Size: 5000000, Limit: 3145728}, "image payload 5000000 exceeds limit 3145728 after compression"},
		{&TransportError{Op: "locate", Err: fmt.Errorf("boom")}, "locate: transport failure: boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
