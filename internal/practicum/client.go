// Package practicum calls the homework status API.
package practicum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"hwbot/internal/homework"
	logx "hwbot/pkg/logx"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 1 << 20

type Config struct {
	Endpoint   string
	Token      string
	AuthScheme string // default "OAuth"
	Timeout    time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("practicum: endpoint is empty")
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("practicum: endpoint: %w", err)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("practicum: token is empty")
	}
	if strings.TrimSpace(cfg.AuthScheme) == "" {
		cfg.AuthScheme = "OAuth"
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: log}, nil
}

// Fetch requests statuses updated since from and returns the decoded JSON
// body as a generic value for homework.Decode. Numbers are json.Number.
//
// Errors are *homework.Error: KindTransport when the request could not be
// completed, KindProtocol for a non-200 status, KindMalformedResponse for a
// body that is not JSON.
func (c *Client) Fetch(ctx context.Context, from homework.Cursor) (any, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, homework.Transport("invalid status API endpoint", err)
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(int64(from), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, homework.Transport("cannot build status API request", err)
	}
	req.Header.Set("Authorization", c.cfg.AuthScheme+" "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, homework.Transport("status API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, homework.Transport("status API response read failed", err)
	}
	c.log.Debug("status API responded",
		logx.Int("status", resp.StatusCode),
		logx.Int("bytes", len(body)),
		logx.Duration("took", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, homework.Protocol(
			fmt.Sprintf("status API returned HTTP %d", resp.StatusCode),
			fmt.Errorf("body: %s", truncate(body, 200)),
		)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &homework.Error{Kind: homework.KindMalformedResponse, Text: "response body is not valid JSON", Err: err}
	}
	return v, nil
}

// truncate cuts at most n bytes without splitting a UTF-8 sequence.
func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
