package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cardiosense-ai/platform/pkg/ml/features"
)

// Sample is one labeled training row. Features are keyed by canonical
// feature name; Label is 0 (no disease) or 1 (disease present).
type Sample struct {
	Features map[string]float64
	Label    float64
}

// Source supplies the reference training data. It is an injected
// dependency so tests and offline environments can substitute a fixture.
type Source interface {
	Fetch(ctx context.Context) ([]Sample, error)
}

// ClevelandSource downloads the UCI processed Cleveland heart disease
// dataset: 13 clinical columns plus a 0-4 severity target, with '?'
// marking missing values.
type ClevelandSource struct {
	URL    string
	Client *http.Client
}

func (s *ClevelandSource) Fetch(ctx context.Context) ([]Sample, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset: unexpected status %d", resp.StatusCode)
	}

	return Parse(resp.Body)
}

// Parse reads the CSV body. Rows containing missing values are dropped,
// and the severity target collapses to presence/absence.
func Parse(r io.Reader) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != features.Count+1 {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, features.Count+1, len(fields))
		}

		if hasMissing(fields) {
			continue
		}

		record := make(map[string]float64, features.Count)
		valid := true
		for i, name := range features.CanonicalOrder {
			value, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
			if err != nil {
				valid = false
				break
			}
			record[name] = value
		}
		if !valid {
			continue
		}

		target, err := strconv.ParseFloat(strings.TrimSpace(fields[features.Count]), 64)
		if err != nil {
			continue
		}
		label := 0.0
		if target > 0 {
			label = 1.0
		}

		samples = append(samples, Sample{Features: record, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("dataset contained no usable rows")
	}
	return samples, nil
}

func hasMissing(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "?" {
			return true
		}
	}
	return false
}
