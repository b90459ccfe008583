package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ziggurat-io/ziggurat/pkg/history"
	"github.com/ziggurat-io/ziggurat/pkg/pipeline"
	"github.com/ziggurat-io/ziggurat/pkg/pyramid"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := NewServer(pipeline.NewRunner(nil, nil, logger), history.NewMemoryStore(), logger)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postRender(t *testing.T, ts *httptest.Server, body string) RenderResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/renders", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, data)
	}
	var out RenderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestCreateRender(t *testing.T) {
	_, ts := testServer(t)

	out := postRender(t, ts, `{"params":{"levels":4,"base_size":7,"tile_color":"#3b82f6","pattern":"neon"},"dark":true}`)
	if out.ID == "" {
		t.Fatal("response missing id")
	}
	if !out.Dark {
		t.Error("dark flag not echoed")
	}
	if out.Params.Levels != 4 || out.Params.Pattern != pyramid.PatternNeon {
		t.Errorf("params not echoed: %+v", out.Params)
	}
	if out.PNGSize == 0 {
		t.Error("png_size should be set")
	}
	if out.TileCount == 0 {
		t.Error("tile_count should be set")
	}
	if out.ImageURL == "" || out.ThumbURL == "" {
		t.Error("artifact URLs missing")
	}
}

func TestCreateRenderDefaults(t *testing.T) {
	_, ts := testServer(t)

	// An empty parameter set renders with defaults.
	out := postRender(t, ts, `{"params":{}}`)
	if out.Params.Levels != pyramid.DefaultLevels {
		t.Errorf("Levels = %d, want default %d", out.Params.Levels, pyramid.DefaultLevels)
	}
}

func TestCreateRenderValidation(t *testing.T) {
	_, ts := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"levels out of range", `{"params":{"levels":99}}`},
		{"bad color", `{"params":{"tile_color":"blue"}}`},
		{"bad pattern", `{"params":{"pattern":"plaid"}}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/v1/renders", "application/json", bytes.NewBufferString(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error.Code == "" {
				t.Error("error code missing from response")
			}
		})
	}
}

func TestGetImageAndThumbnail(t *testing.T) {
	_, ts := testServer(t)
	out := postRender(t, ts, `{"params":{}}`)

	for path, wantWidth := range map[string]int{
		out.ImageURL: pyramid.CanvasSize,
		out.ThumbURL: pipeline.ThumbSize,
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q", ct)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("GET %s returned invalid png: %v", path, err)
		}
		if cfg.Width != wantWidth {
			t.Errorf("GET %s width = %d, want %d", path, cfg.Width, wantWidth)
		}
	}
}

func TestListRenders(t *testing.T) {
	_, ts := testServer(t)
	for i := 0; i < 3; i++ {
		postRender(t, ts, fmt.Sprintf(`{"params":{"levels":%d}}`, i+2))
	}

	resp, err := http.Get(ts.URL + "/api/v1/renders?limit=2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Renders []RenderResponse `json:"renders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Renders) != 2 {
		t.Fatalf("len = %d, want 2", len(body.Renders))
	}
	// Newest first.
	if body.Renders[0].Params.Levels != 4 {
		t.Errorf("first summary Levels = %d, want newest (4)", body.Renders[0].Params.Levels)
	}
}

func TestListRendersBadLimit(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/renders?limit=banana")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetAndDeleteRender(t *testing.T) {
	_, ts := testServer(t)
	out := postRender(t, ts, `{"params":{}}`)

	resp, err := http.Get(ts.URL + "/api/v1/renders/" + out.ID)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/renders/"+out.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/v1/renders/" + out.ID)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestUnknownRecordIs404(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/renders/no-such-id/image")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != "RECORD_NOT_FOUND" {
		t.Errorf("error code = %q", body.Error.Code)
	}
}

func TestDefaultDarkApplied(t *testing.T) {
	srv, _ := testServer(t)
	srv.DefaultDark = true
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	out := postRender(t, ts, `{"params":{}}`)
	if !out.Dark {
		t.Error("server default theme should apply when the request omits dark")
	}

	out = postRender(t, ts, `{"params":{},"dark":false}`)
	if out.Dark {
		t.Error("explicit dark=false must override the server default")
	}
}
