// Package face wraps the external face-embedding service. A Client is an
// explicit handle returned by New; there is no package-global "models
// loaded" state, so test setup passes a fake Detector instead.
package face

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Descriptor is the fixed-length embedding vector for one detected face.
type Descriptor []float64

var ErrNoFace = errors.New("no face detected")

// MatchThreshold is the maximum descriptor distance still treated as the
// same person. A fixed comparison, not a tunable subsystem.
const MatchThreshold = 0.6

// Detector is the capability the user service needs from this package.
type Detector interface {
	Detect(ctx context.Context, image []byte) (Descriptor, error)
}

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Detect sends a captured frame to the embedding service and returns the
// descriptor of the single detected face, or ErrNoFace.
func (c *Client) Detect(ctx context.Context, image []byte) (Descriptor, error) {
	reqBody, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/detect", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoFace
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("face service error: status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Descriptor []float64 `json:"descriptor"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode detect response: %w", err)
	}
	if len(result.Descriptor) == 0 {
		return nil, ErrNoFace
	}
	return result.Descriptor, nil
}

// Distance is the Euclidean distance between two descriptors.
func Distance(a, b Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("descriptor length mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
