package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Remote delegates the decision to an HTTP check service. The service takes
// POST {"url": ...} and answers {"status": ..., "confidence": 0-100}.
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote creates a Remote strategy posting to endpoint.
func NewRemote(endpoint string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Name() string { return "remote" }

// Check never fails: any transport or decoding problem yields an error
// Result with confidence 0.
func (r *Remote) Check(ctx context.Context, rawURL string) *Result {
	start := time.Now()

	body, err := json.Marshal(map[string]string{"url": rawURL})
	if err != nil {
		return ErrorResult("remote", fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return ErrorResult("remote", fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		res := ErrorResult("remote", fmt.Sprintf("check service connection error: %v", err))
		res.ResponseTimeMs = elapsed
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res := ErrorResult("remote", fmt.Sprintf("check service error: %d", resp.StatusCode))
		res.ResponseTimeMs = elapsed
		return res
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		res := ErrorResult("remote", "failed to read check service response")
		res.ResponseTimeMs = elapsed
		return res
	}

	res := parseWireResult(data)
	res.Strategy = "remote"
	res.ResponseTimeMs = elapsed
	return res
}

// parseWireResult decodes a {status, confidence} document. Anything that
// does not carry a status or whose confidence is outside 0-100 becomes an
// error result.
func parseWireResult(data []byte) *Result {
	var wire struct {
		Status     string   `json:"status"`
		Confidence *float64 `json:"confidence"`
		Reason     string   `json:"reason"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		// Model output may wrap the JSON in prose.
		s := string(data)
		start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
		if start < 0 || end <= start || json.Unmarshal([]byte(s[start:end+1]), &wire) != nil {
			return ErrorResult("", "failed to parse check response")
		}
	}

	status := strings.ToLower(strings.TrimSpace(wire.Status))
	if status == "" || wire.Confidence == nil || *wire.Confidence < 0 || *wire.Confidence > 100 {
		return ErrorResult("", "malformed check response")
	}
	return &Result{
		Status:     status,
		Confidence: *wire.Confidence,
		Reason:     wire.Reason,
	}
}
