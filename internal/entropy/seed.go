// Package entropy provides the session seed for the single shared
// pseudorandom source. With an API key it fetches true randomness from
// random.org; otherwise (or on any failure) it falls back to crypto/rand.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client fetches seed material from random.org.
type Client struct {
	apiKey string
	client *http.Client
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// SessionSeed returns a seed for the simulation's rand source. Uses
// random.org when the client is configured, crypto/rand otherwise.
func (c *Client) SessionSeed() int64 {
	if c == nil {
		return cryptoSeed()
	}
	if seed, ok := c.fetch(); ok {
		return seed
	}
	return cryptoSeed()
}

func (c *Client) fetch() (int64, bool) {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateIntegers",
		"params": map[string]any{
			"apiKey": c.apiKey,
			"n":      1,
			"min":    0,
			"max":    1000000000,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("random.org marshal failed", "error", err)
		return 0, false
	}

	resp, err := c.client.Post("https://api.random.org/json-rpc/4/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("random.org fetch failed", "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("random.org read failed", "error", err)
		return 0, false
	}

	var result struct {
		Result struct {
			Random struct {
				Data []int64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Debug("random.org parse failed", "error", err)
		return 0, false
	}
	if result.Error != nil {
		slog.Debug("random.org API error", "error", result.Error.Message)
		return 0, false
	}
	if len(result.Result.Random.Data) == 0 {
		return 0, false
	}
	return result.Result.Random.Data[0], true
}

// cryptoSeed derives a seed from crypto/rand.
func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; a fixed seed still runs the simulation.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
