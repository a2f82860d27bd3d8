// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is the HTTP client for the literature backend. It covers
// the advanced search, bulk-export, immediate-export, record-detail, and
// disciplinary-analysis endpoints, classifies every failure (errors.go),
// and paces outbound requests with a rate limiter.
// Implements: prd002-session (R2), prd003-export (R1, R5);
//
//	docs/ARCHITECTURE § Backend Client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/wos-client/internal/httputil"
	"github.com/pdiddy/wos-client/pkg/types"
)

// Endpoint paths on the backend. Relative to BaseURL.
const (
	pathSearch        = "/main2022/advancedSearch"
	pathSearchByYear  = "/main2022/advancedSearchByYear"
	pathYearRange     = "/main2022/supportedYearRange"
	pathRecord        = "/main2022/record/"
	pathAnalysis      = "/main2022/disciplinaryAnalysis"
	pathExportCSV     = "/download/csv"
	pathExportStart   = "/download/csv/all/start"
	pathExportStatus  = "/download/progress/%s/status"
	pathExportCancel  = "/download/cancel/%s"
)

// Client talks to one backend instance. Safe for concurrent use.
type Client struct {
	base       string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	token      string
	maxRetries int
}

// New builds a Client from config. An empty token disables the
// Authorization header (the reference backend is open).
func New(cfg types.BackendConfig, token string) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "wos-client/0.1"
	}
	return &Client{
		base:       strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		userAgent:  ua,
		token:      token,
		maxRetries: cfg.MaxRetries,
	}
}

// do paces, sends, and retries one request. The caller owns the response
// body on success.
func (c *Client) do(ctx context.Context, op string, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return nil, transportError(op, err)
	}
	return resp, nil
}

// postJSON sends body as JSON and decodes a JSON response into out.
// A nil out discards the response body.
func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, readErrorMessage(resp.Body))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindServer, Op: op, Msg: "malformed response", Err: err}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	resp, err := c.do(ctx, op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, readErrorMessage(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindServer, Op: op, Msg: "malformed response", Err: err}
	}
	return nil
}

// readErrorMessage extracts {"error": "..."} or {"message": "..."} from
// an error response body, if present.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		return body.Message
	}
	return ""
}

// Search posts the serialized filter set and returns the server-bounded
// item list plus the total match count. The backend sends either a bare
// record array (count equals the item count) or an envelope
// {"data": [...], "count": n} when the set was truncated.
func (c *Client) Search(ctx context.Context, clauses []types.FilterClause) ([]types.PaperRecord, int, error) {
	var raw json.RawMessage
	if err := c.postJSON(ctx, "search", pathSearch, clauses, &raw); err != nil {
		return nil, 0, err
	}
	return decodeSearchResponse("search", raw)
}

// SearchByYear runs the year-partitioned variant of the advanced search.
// Zero years select the backend's default range.
func (c *Client) SearchByYear(ctx context.Context, clauses []types.FilterClause, startYear, endYear int) ([]types.PaperRecord, int, error) {
	body := map[string]any{"filters": clauses}
	if startYear != 0 {
		body["startYear"] = startYear
	}
	if endYear != 0 {
		body["endYear"] = endYear
	}
	var raw json.RawMessage
	if err := c.postJSON(ctx, "search-by-year", pathSearchByYear, body, &raw); err != nil {
		return nil, 0, err
	}
	return decodeSearchResponse("search-by-year", raw)
}

func decodeSearchResponse(op string, raw json.RawMessage) ([]types.PaperRecord, int, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []types.PaperRecord
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, 0, &Error{Kind: KindServer, Op: op, Msg: "malformed result list", Err: err}
		}
		return items, len(items), nil
	}

	var envelope struct {
		Data  []types.PaperRecord `json:"data"`
		Count int                 `json:"count"`
		Error string              `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, 0, &Error{Kind: KindServer, Op: op, Msg: "malformed result envelope", Err: err}
	}
	if envelope.Error != "" {
		return nil, 0, &Error{Kind: KindClient, Op: op, Msg: envelope.Error}
	}
	count := envelope.Count
	if count < len(envelope.Data) {
		count = len(envelope.Data)
	}
	return envelope.Data, count, nil
}

// SupportedYearRange reports the year span the backend has loaded.
func (c *Client) SupportedYearRange(ctx context.Context) (minYear, maxYear int, err error) {
	var out struct {
		MinYear int `json:"minYear"`
		MaxYear int `json:"maxYear"`
	}
	if err := c.getJSON(ctx, "year-range", pathYearRange, &out); err != nil {
		return 0, 0, err
	}
	return out.MinYear, out.MaxYear, nil
}

// RecordByID resolves a single record by identifier. The second return
// is the server-reported lookup time in seconds, kept alongside the
// record when it is cached.
func (c *Client) RecordByID(ctx context.Context, id string) (*types.PaperRecord, float64, error) {
	var out struct {
		Success   bool               `json:"success"`
		Data      *types.PaperRecord `json:"data"`
		QueryTime float64            `json:"queryTime"`
		Message   string             `json:"message"`
	}
	if err := c.getJSON(ctx, "record", pathRecord+id, &out); err != nil {
		return nil, 0, err
	}
	if !out.Success || out.Data == nil {
		msg := out.Message
		if msg == "" {
			msg = "record " + id + " not found"
		}
		return nil, 0, &Error{Kind: KindNotFound, Op: "record", Msg: msg}
	}
	return out.Data, out.QueryTime, nil
}

// ImmediateExport posts the loaded items and streams the returned CSV
// into w. This is the one-shot export path: no task, no polling.
func (c *Client) ImmediateExport(ctx context.Context, items []types.PaperRecord, w io.Writer) (int64, error) {
	const op = "export-csv"
	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("%s: encoding request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+pathExportCSV, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, op, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, statusError(op, resp.StatusCode, readErrorMessage(resp.Body))
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Kind: KindNetwork, Op: op, Msg: "stream interrupted", Err: err}
	}
	return n, nil
}

// StartBulkExport asks the server to materialize all records matching
// the filters. It returns the opaque task identifier and the server's
// record cap for one export.
func (c *Client) StartBulkExport(ctx context.Context, clauses []types.FilterClause) (taskID string, maxLimit int, err error) {
	const op = "export-start"
	var out struct {
		TaskID   string `json:"taskId"`
		MaxLimit int    `json:"maxLimit"`
		Error    string `json:"error"`
	}
	if err := c.postJSON(ctx, op, pathExportStart, clauses, &out); err != nil {
		return "", 0, err
	}
	if out.Error != "" {
		return "", 0, &Error{Kind: KindClient, Op: op, Msg: out.Error}
	}
	if out.TaskID == "" {
		return "", 0, &Error{Kind: KindServer, Op: op, Msg: "no task identifier in response"}
	}
	return out.TaskID, out.MaxLimit, nil
}

// JobStatus polls one bulk-export task. An unknown task maps to a
// not-found error.
func (c *Client) JobStatus(ctx context.Context, taskID string) (types.JobProgress, error) {
	const op = "export-status"
	var out types.JobProgress
	if err := c.getJSON(ctx, op, fmt.Sprintf(pathExportStatus, taskID), &out); err != nil {
		return types.JobProgress{}, err
	}
	// The reference backend answers 200 with status "not_found" for
	// unknown or expired tasks.
	if out.Status == "not_found" {
		msg := out.Error
		if msg == "" {
			msg = "task " + taskID + " not found"
		}
		return types.JobProgress{}, &Error{Kind: KindNotFound, Op: op, Msg: msg}
	}
	return out, nil
}

// CancelJob notifies the server that the task should stop. Best effort:
// the caller treats local cancellation as authoritative whether or not
// this call succeeds.
func (c *Client) CancelJob(ctx context.Context, taskID string) error {
	const op = "export-cancel"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+fmt.Sprintf(pathExportCancel, taskID), nil)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	resp, err := c.do(ctx, op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, "")
	}
	return nil
}

// DownloadFile streams a completed export file (the downloadUrl from a
// completed job status) into w.
func (c *Client) DownloadFile(ctx context.Context, downloadURL string, w io.Writer) (int64, error) {
	const op = "export-download"
	url := downloadURL
	if strings.HasPrefix(url, "/") {
		url = c.base + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: building request: %w", op, err)
	}
	resp, err := c.do(ctx, op, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, statusError(op, resp.StatusCode, "")
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Kind: KindNetwork, Op: op, Msg: "stream interrupted", Err: err}
	}
	return n, nil
}

// Analyze posts a disciplinary-analysis request and decodes the response
// into out (an analysis.Result or compatible structure).
func (c *Client) Analyze(ctx context.Context, keyword string, startYear, endYear int, out any) error {
	body := map[string]any{
		"keyword":   keyword,
		"startDate": fmt.Sprintf("%d", startYear),
		"endDate":   fmt.Sprintf("%d", endYear),
	}
	return c.postJSON(ctx, "analysis", pathAnalysis, body, out)
}
