package main

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kwv/gridloc/localize"
)

func testTracker(t *testing.T, withBelief bool) *localize.StateTracker {
	t.Helper()

	grid, err := localize.NewGridMap(2, 2, []int8{0, 0, 0, 100})
	if err != nil {
		t.Fatalf("Failed to build map: %v", err)
	}

	tracker := localize.NewStateTracker()
	tracker.SetMap(grid)

	if withBelief {
		tracker.UpdateBelief(&localize.BeliefSnapshot{
			Width:      2,
			Height:     2,
			Cells:      []float64{1.0 / 73, 8.0 / 73, 64.0 / 73, 0},
			Pose:       localize.Pose{Row: 1, Col: 0},
			Generation: 1,
			Timestamp:  1700000000,
		})
	}
	return tracker
}

func TestHealthEndpoint(t *testing.T) {
	server := newHTTPServer(testTracker(t, false))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var status struct {
		Status    string `json:"status"`
		HasMap    bool   `json:"hasMap"`
		HasBelief bool   `json:"hasBelief"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("Status = %q, want ok", status.Status)
	}
	if !status.HasMap || status.HasBelief {
		t.Errorf("HasMap=%v HasBelief=%v, want true/false", status.HasMap, status.HasBelief)
	}
}

func TestPoseEndpoint(t *testing.T) {
	server := newHTTPServer(testTracker(t, true))

	req := httptest.NewRequest(http.MethodGet, "/pose", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var pose struct {
		X          int    `json:"x"`
		Y          int    `json:"y"`
		Generation uint64 `json:"generation"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&pose); err != nil {
		t.Fatalf("Failed to decode pose response: %v", err)
	}
	if pose.X != 0 || pose.Y != 1 {
		t.Errorf("Pose = (%d, %d), want (0, 1)", pose.X, pose.Y)
	}
	if pose.Generation != 1 {
		t.Errorf("Generation = %d, want 1", pose.Generation)
	}
}

func TestPoseEndpointWithoutEstimate(t *testing.T) {
	server := newHTTPServer(testTracker(t, false))

	req := httptest.NewRequest(http.MethodGet, "/pose", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", rec.Code)
	}
}

func TestImageEndpointsWithoutMap(t *testing.T) {
	server := newHTTPServer(localize.NewStateTracker())

	for _, path := range []string{"/belief.png", "/belief.svg", "/track.geojson"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, rec.Code)
		}
	}
}

func TestBeliefPNGEndpoint(t *testing.T) {
	server := newHTTPServer(testTracker(t, true))

	req := httptest.NewRequest(http.MethodGet, "/belief.png", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Errorf("Response is not a valid PNG: %v", err)
	}
}

func TestBeliefSVGEndpoint(t *testing.T) {
	server := newHTTPServer(testTracker(t, true))

	req := httptest.NewRequest(http.MethodGet, "/belief.svg", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("Response does not contain an <svg element")
	}
}

func TestTrackGeoJSONEndpoint(t *testing.T) {
	server := newHTTPServer(testTracker(t, true))

	req := httptest.NewRequest(http.MethodGet, "/track.geojson", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"FeatureCollection"`) {
		t.Error("Response is not a GeoJSON FeatureCollection")
	}
}
