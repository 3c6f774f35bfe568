// Package httpstore implements store.Store against a json-server compatible
// HTTP API.
//
// Wire format:
//
//	GET  /users?_page=<n>&_limit=<size>[&_sort=<column>&_order=<asc|desc>]
//	POST /users
//
// The total collection size is read from the X-Total-Count header. Servers
// that wrap the page in a body envelope ({"data": [...], "totalCount": n} or
// the json-server v1 {"data": [...], "items": n}) are accepted too.
package httpstore

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
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
	"github.com/rshade/recordlist/pkg/version"
)

// Defaults used when the configuration leaves them unset.
const (
	DefaultBaseURL = "http://localhost:3001"
	DefaultTimeout = 10 * time.Second
)

// HeaderTotalCount carries the collection size on list responses.
const HeaderTotalCount = "X-Total-Count"

const (
	usersPath       = "/users"
	maxResponseSize = 10 << 20
	maxErrorBody    = 512
)

// ErrInvalidBaseURL is returned by New for URLs that are not absolute http(s) URLs.
var ErrInvalidBaseURL = errors.New("base URL must be an absolute http or https URL")

// StatusError is a non-success HTTP answer. It travels inside a
// store.TransportError so the caller can offer a retry.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Client talks to the remote collection.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	logger zerolog.Logger
	now    func() time.Time

	versionCheck sync.Once
}

// New creates a client for baseURL. The timeout bounds every request,
// including reading the body.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logging.ComponentLogger(logger, "httpstore"),
		now:        time.Now,
	}, nil
}

// ListRecords implements store.Store.
func (c *Client) ListRecords(ctx context.Context, params store.ListParams) (*store.ListResult, error) {
	const op = "list"
	if err := params.Validate(); err != nil {
		return nil, err
	}

	endpoint := c.BaseURL + usersPath + "?" + listQuery(params).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	body, header, err := c.do(req, op, http.StatusOK)
	if err != nil {
		return nil, err
	}

	records, bodyCount, err := decodeList(body)
	if err != nil {
		return nil, err
	}

	total, err := totalCount(header, bodyCount, records)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Ctx(ctx).
		Str("operation", op).
		Str("url", endpoint).
		Int("records", len(records)).
		Int("total", total).
		Dur("elapsed", time.Since(start)).
		Msg("page received")

	return &store.ListResult{Records: records, TotalCount: total}, nil
}

// CreateRecord implements store.Store. The id and, when absent, the joined
// date are stamped client side before the record is posted.
func (c *Client) CreateRecord(ctx context.Context, payload record.NewRecord) (*record.Record, error) {
	const op = "create"

	now := c.now()
	outgoing := payload.WithID(ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(), now)
	encoded, err := json.Marshal(outgoing)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+usersPath, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, _, err := c.do(req, op, http.StatusCreated, http.StatusOK)
	if err != nil {
		return nil, err
	}

	created := outgoing
	if len(bytes.TrimSpace(body)) > 0 {
		var wr wireRecord
		if err := json.Unmarshal(body, &wr); err != nil {
			return nil, &store.ProtocolError{Op: op, Field: "body", Reason: err.Error()}
		}
		// Servers that answer with an empty object keep the posted record.
		if wr.ID != "" {
			created = wr.record()
		}
	}

	c.logger.Info().
		Ctx(ctx).
		Str("operation", op).
		Str("record_id", created.ID).
		Msg("record created")

	return &created, nil
}

// do sends req and returns the body when the status is one of accepted.
func (c *Client) do(req *http.Request, op string, accepted ...int) ([]byte, http.Header, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, &store.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.checkServerVersion(req.Context(), resp.Header)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, &store.TransportError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	for _, code := range accepted {
		if resp.StatusCode == code {
			return body, resp.Header, nil
		}
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}
	c.logger.Warn().
		Ctx(req.Context()).
		Str("operation", op).
		Int("status", resp.StatusCode).
		Msg("unexpected HTTP status")
	return nil, nil, &store.TransportError{Op: op, Err: &StatusError{Code: resp.StatusCode, Body: snippet}}
}

// checkServerVersion warns once when the server reports an incompatible build.
func (c *Client) checkServerVersion(ctx context.Context, header http.Header) {
	remote := header.Get(version.HeaderServerVersion)
	if remote == "" {
		return
	}
	c.versionCheck.Do(func() {
		ok, err := version.Compatible(version.GetVersion(), remote)
		if err != nil || !ok {
			c.logger.Warn().
				Ctx(ctx).
				Str("operation", "version_check").
				Str("client_version", version.GetVersion()).
				Str("server_version", remote).
				Err(err).
				Msg("server version may be incompatible")
		}
	})
}

func listQuery(params store.ListParams) url.Values {
	q := url.Values{}
	q.Set("_page", strconv.Itoa(params.Page))
	q.Set("_limit", strconv.Itoa(params.PageSize))
	if params.SortColumn != "" {
		q.Set("_sort", params.SortColumn)
		q.Set("_order", string(params.SortOrder))
	}
	return q
}

type envelope struct {
	Data       *[]wireRecord   `json:"data"`
	TotalCount json.RawMessage `json:"totalCount"`
	Items      json.RawMessage `json:"items"`
}

// bodyTotal is the total count carried in a body envelope.
type bodyTotal struct {
	field string
	raw   json.RawMessage
}

// present reports whether the envelope carried a non-null total.
func (b bodyTotal) present() bool {
	return len(b.raw) > 0 && !bytes.Equal(b.raw, []byte("null"))
}

// value parses the total. Integers and quoted integers are accepted.
func (b bodyTotal) value() (int, bool) {
	raw := b.raw
	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		raw = []byte(strings.TrimSpace(quoted))
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// decodeList accepts a bare array or an envelope. The total is only checked
// later so that a bad count never discards the decoded records.
func decodeList(body []byte) ([]record.Record, bodyTotal, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, bodyTotal{}, &store.ProtocolError{Op: "list", Field: "body", Reason: "empty response"}
	}

	var (
		wire  []wireRecord
		total bodyTotal
	)

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, bodyTotal{}, &store.ProtocolError{Op: "list", Field: "body", Reason: err.Error()}
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, bodyTotal{}, &store.ProtocolError{Op: "list", Field: "body", Reason: err.Error()}
		}
		if env.Data == nil {
			return nil, bodyTotal{}, &store.ProtocolError{Op: "list", Field: "data", Reason: "missing from envelope"}
		}
		wire = *env.Data
		switch {
		case (bodyTotal{raw: env.TotalCount}).present():
			total = bodyTotal{field: "totalCount", raw: env.TotalCount}
		case (bodyTotal{raw: env.Items}).present():
			total = bodyTotal{field: "items", raw: env.Items}
		}
	default:
		return nil, bodyTotal{}, &store.ProtocolError{Op: "list", Field: "body", Reason: "expected a JSON array or object"}
	}

	records := make([]record.Record, len(wire))
	for i, w := range wire {
		records[i] = w.record()
	}
	return records, total, nil
}

// totalCount prefers the header over the envelope. When neither yields a
// usable number the decoded records travel with the ProtocolError.
func totalCount(header http.Header, body bodyTotal, records []record.Record) (int, error) {
	partial := &store.ListResult{Records: records}

	if raw := header.Get(HeaderTotalCount); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return 0, &store.ProtocolError{
				Op:      "list",
				Field:   HeaderTotalCount,
				Reason:  fmt.Sprintf("not a non-negative integer: %q", raw),
				Partial: partial,
			}
		}
		return n, nil
	}
	if body.present() {
		n, ok := body.value()
		if !ok {
			return 0, &store.ProtocolError{
				Op:      "list",
				Field:   body.field,
				Reason:  fmt.Sprintf("not a non-negative integer: %s", body.raw),
				Partial: partial,
			}
		}
		return n, nil
	}
	return 0, &store.ProtocolError{
		Op:      "list",
		Field:   HeaderTotalCount,
		Reason:  "missing",
		Partial: partial,
	}
}
