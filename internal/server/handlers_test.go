package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tale-server/internal/config"
	"tale-server/internal/story"
	"tale-server/internal/tale"
)

// mockEngine implements TurnEngine for testing.
type mockEngine struct {
	runFunc func(ctx context.Context, req story.TurnRequest) (*story.TurnResponse, error)
}

func (m *mockEngine) Run(ctx context.Context, req story.TurnRequest) (*story.TurnResponse, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, req)
	}
	return nil, story.ErrGenerationFailed
}

func newTestServer(engine TurnEngine, tales *tale.Table) *Server {
	cfg := &config.Config{Port: "8000", AllowedOrigins: []string{"*"}}
	return New(cfg, engine, tales, nil)
}

func testTable() *tale.Table {
	return tale.NewTable(map[string]tale.Metadata{
		"Rotkäppchen":  {Title: "Rotkäppchen", ChunkCount: 12, OriginalSummary: "Ein Mädchen trifft einen Wolf."},
		"Aschenputtel": {Title: "Aschenputtel", ChunkCount: 9, OriginalSummary: "Ein Mädchen verliert einen Schuh."},
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&mockEngine{}, testTable())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestListTales(t *testing.T) {
	srv := newTestServer(&mockEngine{}, testTable())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tales", nil)
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var titles []string
	if err := json.Unmarshal(w.Body.Bytes(), &titles); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(titles) != 2 || titles[0] != "Aschenputtel" || titles[1] != "Rotkäppchen" {
		t.Errorf("titles = %v, want sorted pair", titles)
	}
}

func TestListTales_Empty(t *testing.T) {
	srv := newTestServer(&mockEngine{}, tale.NewTable(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tales", nil)
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetTale(t *testing.T) {
	srv := newTestServer(&mockEngine{}, testTable())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tales/Rotkäppchen", nil)
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var meta tale.Metadata
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if meta.ChunkCount != 12 {
		t.Errorf("chunk count = %d", meta.ChunkCount)
	}
}

func TestGetTale_NotFound(t *testing.T) {
	srv := newTestServer(&mockEngine{}, testTable())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tales/Unbekannt", nil)
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func postTurn(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-tale", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestGenerateTale_Success(t *testing.T) {
	engine := &mockEngine{
		runFunc: func(ctx context.Context, req story.TurnRequest) (*story.TurnResponse, error) {
			if req.TaleID != "Rotkäppchen" {
				t.Errorf("tale id = %q", req.TaleID)
			}
			return &story.TurnResponse{
				StorySegment:   "Der Wald wurde dunkler.",
				Choices:        []string{"Geh links", "Geh rechts"},
				UpdatedSummary: "Neue Zusammenfassung.",
				NextTurnNumber: 4,
			}, nil
		},
	}
	srv := newTestServer(engine, testTable())

	w := postTurn(t, srv, story.TurnRequest{
		TaleID:            "Rotkäppchen",
		CurrentTurnNumber: 3,
		Action:            story.Action{Choice: "Folge dem Pfad"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp story.TurnResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.NextTurnNumber != 4 {
		t.Errorf("next turn = %d", resp.NextTurnNumber)
	}
	if resp.RawResponse != "" {
		t.Error("raw response leaked into non-debug reply")
	}
}

func TestGenerateTale_NoAction(t *testing.T) {
	engine := &mockEngine{
		runFunc: func(ctx context.Context, req story.TurnRequest) (*story.TurnResponse, error) {
			return nil, story.ErrNoAction
		},
	}
	srv := newTestServer(engine, testTable())

	w := postTurn(t, srv, story.TurnRequest{TaleID: "Rotkäppchen"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGenerateTale_ServiceFailure(t *testing.T) {
	for _, err := range []error{story.ErrGenerationFailed, story.ErrInvalidResponse} {
		engine := &mockEngine{
			runFunc: func(ctx context.Context, req story.TurnRequest) (*story.TurnResponse, error) {
				return nil, err
			},
		}
		srv := newTestServer(engine, testTable())

		w := postTurn(t, srv, story.TurnRequest{
			TaleID: "Rotkäppchen",
			Action: story.Action{Choice: "weiter"},
		})
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%v: status = %d, want 503", err, w.Code)
		}
	}
}

func TestGenerateTale_MalformedBody(t *testing.T) {
	srv := newTestServer(&mockEngine{}, testTable())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-tale", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
