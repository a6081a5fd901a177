package localize

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// ReplayEvent is one line of a JSONL event log: a map, a movement
// command, or a range scan.
type ReplayEvent struct {
	Type      string    `json:"type"` // "map", "command", or "scan"
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Data      []int8    `json:"data,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Ranges    []float64 `json:"ranges,omitempty"`
}

// Replay feeds a recorded event log to the estimator in order.
// onEstimate is invoked after every applied scan. Events the estimator
// rejects as part of normal operation (pre-map commands and scans,
// gated scans) are logged and skipped; malformed lines abort the replay.
func Replay(r io.Reader, est *Estimator, onEstimate func(Pose, *BeliefSnapshot)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var ev ReplayEvent
		if err := json.Unmarshal(text, &ev); err != nil {
			return fmt.Errorf("line %d: parsing event: %w", line, err)
		}

		switch ev.Type {
		case "map":
			if err := est.LoadMap(ev.Width, ev.Height, ev.Data); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}

		case "command":
			if err := est.ApplyCommand(ev.Direction); err != nil {
				if errors.Is(err, ErrNoMap) {
					log.Printf("line %d: command before map, skipped", line)
					continue
				}
				return fmt.Errorf("line %d: %w", line, err)
			}

		case "scan":
			if len(ev.Ranges) != len(Scan{}) {
				return fmt.Errorf("line %d: scan must contain exactly %d ranges, got %d", line, len(Scan{}), len(ev.Ranges))
			}
			var scan Scan
			copy(scan[:], ev.Ranges)

			pose, snapshot, err := est.ApplyScan(scan)
			if err != nil {
				if errors.Is(err, ErrNoMap) || errors.Is(err, ErrScanDiscarded) {
					log.Printf("line %d: %v", line, err)
					continue
				}
				return fmt.Errorf("line %d: %w", line, err)
			}
			if onEstimate != nil {
				onEstimate(pose, snapshot)
			}

		default:
			return fmt.Errorf("line %d: unknown event type %q", line, ev.Type)
		}
	}

	return scanner.Err()
}

// ReplayFile replays a JSONL event log from disk.
func ReplayFile(path string, est *Estimator, onEstimate func(Pose, *BeliefSnapshot)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()

	return Replay(f, est, onEstimate)
}
