package main

import (
	"encoding/json"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/kwv/gridloc/localize"
)

// newHTTPServer creates an HTTP server exposing the tracker's state.
func newHTTPServer(tracker *localize.StateTracker) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			HasMap    bool      `json:"hasMap"`
			HasBelief bool      `json:"hasBelief"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			HasMap:    tracker.HasMap(),
			HasBelief: tracker.HasBelief(),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	mux.HandleFunc("/pose", func(w http.ResponseWriter, r *http.Request) {
		snapshot := tracker.Snapshot()
		if snapshot == nil {
			http.Error(w, "No estimate available", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		response := struct {
			X          int    `json:"x"`
			Y          int    `json:"y"`
			Generation uint64 `json:"generation"`
			Timestamp  int64  `json:"timestamp"`
		}{
			X:          snapshot.Pose.Col,
			Y:          snapshot.Pose.Row,
			Generation: snapshot.Generation,
			Timestamp:  snapshot.Timestamp,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Error encoding pose: %v", err)
		}
	})

	mux.HandleFunc("/belief.png", func(w http.ResponseWriter, r *http.Request) {
		grid := tracker.Map()
		if grid == nil {
			http.Error(w, "No map available", http.StatusServiceUnavailable)
			return
		}

		renderer := localize.NewHeatmapRenderer(grid)
		img := renderer.Render(tracker.Snapshot())

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := png.Encode(w, img); err != nil {
			log.Printf("Error encoding belief PNG: %v", err)
		}
	})

	mux.HandleFunc("/belief.svg", func(w http.ResponseWriter, r *http.Request) {
		grid := tracker.Map()
		if grid == nil {
			http.Error(w, "No map available", http.StatusServiceUnavailable)
			return
		}

		renderer := localize.NewBeliefVectorRenderer(grid)

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToSVG(w, tracker.Snapshot()); err != nil {
			log.Printf("Error encoding belief SVG: %v", err)
		}
	})

	mux.HandleFunc("/track.geojson", func(w http.ResponseWriter, r *http.Request) {
		grid := tracker.Map()
		if grid == nil {
			http.Error(w, "No map available", http.StatusServiceUnavailable)
			return
		}

		fc := localize.MapFeatureCollection(grid, tracker.Track())

		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(fc); err != nil {
			log.Printf("Error encoding track GeoJSON: %v", err)
		}
	})

	return mux
}
