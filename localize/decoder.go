package localize

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// DecodeOccupancy decodes a map payload. Payloads are either raw JSON
// or zlib-compressed JSON; the format is sniffed from the first byte.
func DecodeOccupancy(data []byte) (*OccupancyPayload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty map payload")
	}

	jsonBytes := data
	if data[0] != '{' {
		inflated, err := inflateZlib(data)
		if err != nil {
			return nil, fmt.Errorf("unknown map payload format: not JSON or zlib-compressed")
		}
		jsonBytes = inflated
	}

	var p OccupancyPayload
	if err := json.Unmarshal(jsonBytes, &p); err != nil {
		return nil, fmt.Errorf("parsing map JSON: %w", err)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("invalid map dimensions %dx%d", p.Width, p.Height)
	}
	if len(p.Data) != p.Width*p.Height {
		return nil, fmt.Errorf("map data length %d does not match %dx%d", len(p.Data), p.Width, p.Height)
	}
	return &p, nil
}

// inflateZlib decompresses zlib-compressed data.
func inflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating zlib reader: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing zlib data: %w", err)
	}
	return out, nil
}

// DecodeScan decodes a scan payload: either a bare JSON array of four
// ranges or an object {"ranges": [...]}. Ranges must be non-negative.
func DecodeScan(data []byte) (Scan, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Scan{}, fmt.Errorf("empty scan payload")
	}

	var ranges []float64
	if trimmed[0] == '{' {
		var envelope struct {
			Ranges []float64 `json:"ranges"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return Scan{}, fmt.Errorf("parsing scan JSON: %w", err)
		}
		ranges = envelope.Ranges
	} else {
		if err := json.Unmarshal(trimmed, &ranges); err != nil {
			return Scan{}, fmt.Errorf("parsing scan JSON: %w", err)
		}
	}

	if len(ranges) != len(Scan{}) {
		return Scan{}, fmt.Errorf("scan must contain exactly %d ranges, got %d", len(Scan{}), len(ranges))
	}

	var scan Scan
	for i, r := range ranges {
		if math.IsNaN(r) || r < 0 {
			return Scan{}, fmt.Errorf("scan range %d must be non-negative, got %v", i, r)
		}
		scan[i] = r
	}
	return scan, nil
}

// DecodeCommand extracts the movement symbol from a command payload:
// a bare symbol, a JSON string, or an object {"direction": "N"}. The
// symbol itself is validated by the estimator, not here.
func DecodeCommand(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("empty command payload")
	}

	if trimmed[0] == '{' {
		var envelope struct {
			Direction string `json:"direction"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return "", fmt.Errorf("parsing command JSON: %w", err)
		}
		if envelope.Direction == "" {
			return "", fmt.Errorf("command object missing direction")
		}
		return envelope.Direction, nil
	}

	var quoted string
	if err := json.Unmarshal(trimmed, &quoted); err == nil {
		return quoted, nil
	}
	return string(trimmed), nil
}
