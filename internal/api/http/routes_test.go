package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/stormstream/storm-assistant/internal/chat"
	"github.com/stormstream/storm-assistant/internal/store"
	"github.com/stormstream/storm-assistant/internal/weather"
)

type stubFetcher struct {
	snap *weather.Snapshot
	err  error
}

func (s *stubFetcher) SnapshotFor(_ context.Context, _ string, _ int) (*weather.Snapshot, error) {
	return s.snap, s.err
}

func testSnapshot() *weather.Snapshot {
	return &weather.Snapshot{
		Location: weather.Location{Name: "Paris", Country: "France"},
		Current:  weather.CurrentConditions{TempC: 18.3, TempF: 65},
		Forecast: weather.Forecast{ForecastDay: []weather.ForecastDay{{Date: "2026-08-27"}}},
	}
}

func newTestApp(t *testing.T, fetcher chat.WeatherFetcher, llmText string) *fiber.App {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": llmText}, "finish_reason": "stop"},
			},
		})
	}))
	t.Cleanup(ts.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = ts.URL + "/v1"

	chatSvc := chat.NewService(
		openai.NewClientWithConfig(cfg),
		fetcher,
		store.NewSessionStore(200, 0),
		chat.Options{Model: openai.GPT3Dot5Turbo, HistoryLimit: 20, ForecastDays: 7},
		zap.NewNop(),
	)

	app := fiber.New()
	RegisterRoutes(app, chatSvc, fetcher)
	return app
}

func TestWeatherEndpointValidation(t *testing.T) {
	app := newTestApp(t, &stubFetcher{snap: testSnapshot()}, "ok")

	// Missing q parameter should return 400.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Out-of-range days value should also return 400.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/weather?q=Paris&days=11", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestWeatherEndpoint(t *testing.T) {
	app := newTestApp(t, &stubFetcher{snap: testSnapshot()}, "ok")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?q=what%27s+the+weather+in+Paris%3F&days=3", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var snap weather.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.Location.Name != "Paris" {
		t.Fatalf("expected location Paris, got %q", snap.Location.Name)
	}
}

func TestWeatherEndpointUnknownLocation(t *testing.T) {
	app := newTestApp(t, &stubFetcher{err: weather.ErrLocationNotFound}, "ok")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?q=Xyzzyland", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestChatEndpointValidation(t *testing.T) {
	app := newTestApp(t, &stubFetcher{snap: testSnapshot()}, "ok")

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing message", `{}`},
		{"empty message", `{"message":""}`},
		{"bad session id", `{"session_id":"not-a-uuid","message":"hi"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
			}
		})
	}
}

func TestChatEndpoint(t *testing.T) {
	app := newTestApp(t, &stubFetcher{snap: testSnapshot()}, "It's mild in Paris today.")

	body := strings.NewReader(`{"message":"What's the weather in Paris?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, raw)
	}

	var reply chat.Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if reply.SessionID == "" {
		t.Fatal("expected a session id to be assigned")
	}
	if reply.Text != "It's mild in Paris today." {
		t.Fatalf("unexpected reply text: %q", reply.Text)
	}
	if reply.Location != "Paris" {
		t.Fatalf("expected location Paris, got %q", reply.Location)
	}
}
