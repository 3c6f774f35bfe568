package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
	"github.com/rshade/recordlist/pkg/version"
)

const twoUsers = `[
  {"id":"1","firstName":"Test","lastName":"User","email":"test@example.com","age":30,"city":"City","occupation":"Dev","status":"Активен","joinedDate":"2023-01-01"},
  {"id":2,"firstName":"Another","lastName":"One","email":"another@example.com","age":"25","city":"Town","occupation":"QA","status":"Неактивен","joinedDate":"2023-01-02"}
]`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, time.Second, zerolog.Nop())
	require.NoError(t, err)
	c.HTTPClient = srv.Client()
	c.HTTPClient.Timeout = time.Second
	return c
}

func TestNew_Validation(t *testing.T) {
	for _, bad := range []string{"", "localhost:3001", "ftp://example.com", "http://"} {
		_, err := New(bad, time.Second, zerolog.Nop())
		require.ErrorIs(t, err, ErrInvalidBaseURL, bad)
	}

	c, err := New("http://localhost:3001/", 0, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", c.BaseURL)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)
}

func TestListRecords_HeaderTotal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("_page"))
		assert.Equal(t, "10", r.URL.Query().Get("_limit"))
		assert.Empty(t, r.URL.Query().Get("_sort"))

		w.Header().Set(HeaderTotalCount, "50")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, twoUsers)
	})

	res, err := c.ListRecords(context.Background(), store.ListParams{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 50, res.TotalCount)
	require.Len(t, res.Records, 2)

	assert.Equal(t, "1", res.Records[0].ID)
	assert.Equal(t, record.StatusActive, res.Records[0].Status)
	assert.Equal(t, "2", res.Records[1].ID, "numeric ids are kept as strings")
	assert.Equal(t, 25, res.Records[1].Age, "numeric strings are accepted for age")
}

func TestListRecords_SortParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "age", r.URL.Query().Get("_sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("_order"))
		w.Header().Set(HeaderTotalCount, "0")
		_, _ = io.WriteString(w, `[]`)
	})

	res, err := c.ListRecords(context.Background(), store.ListParams{
		Page: 1, PageSize: 10, SortColumn: "age", SortOrder: store.OrderDesc,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.TotalCount)
}

func TestListRecords_Envelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "totalCount", body: `{"data":[{"id":"a"}],"totalCount":7}`, want: 7},
		{name: "json-server v1 items", body: `{"first":1,"pages":1,"items":3,"data":[{"id":"a"}]}`, want: 3},
		{name: "quoted totalCount", body: `{"data":[{"id":"a"}],"totalCount":"25"}`, want: 25},
		{name: "null totalCount falls back to items", body: `{"data":[{"id":"a"}],"totalCount":null,"items":4}`, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			res, err := c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.TotalCount)
			assert.Len(t, res.Records, 1)
		})
	}
}

func TestListRecords_DegradedEnvelopeTotal(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "string totalCount", body: `{"data":[{"id":"a"},{"id":"b"}],"totalCount":"abc"}`, field: "totalCount"},
		{name: "negative totalCount", body: `{"data":[{"id":"a"},{"id":"b"}],"totalCount":-1}`, field: "totalCount"},
		{name: "fractional items", body: `{"data":[{"id":"a"},{"id":"b"}],"items":2.5}`, field: "items"},
		{name: "object totalCount", body: `{"data":[{"id":"a"},{"id":"b"}],"totalCount":{"n":2}}`, field: "totalCount"},
		{name: "null totalCount", body: `{"data":[{"id":"a"},{"id":"b"}],"totalCount":null}`, field: HeaderTotalCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})

			res, err := c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
			assert.Nil(t, res)

			var pe *store.ProtocolError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
			require.NotNil(t, pe.Partial, "decoded records must survive a bad total")
			require.Len(t, pe.Partial.Records, 2)
			assert.Equal(t, "a", pe.Partial.Records[0].ID)
		})
	}
}

func TestListRecords_HeaderWinsOverEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderTotalCount, "12")
		_, _ = io.WriteString(w, `{"data":[],"totalCount":99}`)
	})
	res, err := c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 12, res.TotalCount)

	c = newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderTotalCount, "12")
		_, _ = io.WriteString(w, `{"data":[],"totalCount":"junk"}`)
	})
	res, err = c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err, "a valid header makes the envelope total irrelevant")
	assert.Equal(t, 12, res.TotalCount)
}

func TestListRecords_DegradedTotal(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "non-numeric header", header: "lots"},
		{name: "negative header", header: "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				if tt.header != "" {
					w.Header().Set(HeaderTotalCount, tt.header)
				}
				_, _ = io.WriteString(w, twoUsers)
			})

			res, err := c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
			assert.Nil(t, res)
			require.True(t, store.IsProtocol(err))

			var pe *store.ProtocolError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, HeaderTotalCount, pe.Field)
			require.NotNil(t, pe.Partial)
			assert.Len(t, pe.Partial.Records, 2)
		})
	}
}

func TestListRecords_MalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":           `<html>oops</html>`,
		"empty":              ``,
		"envelope sans data": `{"totalCount":3}`,
		"bad age":            `[{"id":"1","age":"thirty"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set(HeaderTotalCount, "1")
				_, _ = io.WriteString(w, body)
			})
			_, err := c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
			require.True(t, store.IsProtocol(err), "got %v", err)

			var pe *store.ProtocolError
			require.ErrorAs(t, err, &pe)
			assert.Nil(t, pe.Partial, "no fallback when records cannot be decoded")
		})
	}
}

func TestListRecords_TransportFailures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		_, err := c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
		require.True(t, store.IsTransport(err))

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.Code)
		assert.Equal(t, "boom", se.Body)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)
		c.HTTPClient.Timeout = 50 * time.Millisecond

		_, err := c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
		require.True(t, store.IsTransport(err), "got %v", err)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := New(srv.URL, time.Second, zerolog.Nop())
		require.NoError(t, err)

		_, err = c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
		require.True(t, store.IsTransport(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `[]`)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.ListRecords(ctx, store.ListParams{Page: 1, PageSize: 10})
		require.True(t, store.IsTransport(err))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestListRecords_InvalidParams(t *testing.T) {
	called := false
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	_, err := c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10, SortColumn: "age"})
	require.ErrorIs(t, err, store.ErrSortWithoutOrder)
	assert.False(t, called)
}

func TestCreateRecord(t *testing.T) {
	var posted map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(posted)
	})
	c.now = func() time.Time { return time.Date(2023, 11, 20, 9, 0, 0, 0, time.UTC) }

	created, err := c.CreateRecord(context.Background(), record.NewRecord{
		FirstName:  "New",
		LastName:   "Person",
		Email:      "new.person@example.com",
		Age:        28,
		City:       "Village",
		Occupation: "Artist",
		Status:     record.StatusActive,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, posted["id"])
	assert.Equal(t, "2023-11-20", posted["joinedDate"])
	assert.Equal(t, posted["id"], created.ID)
	assert.Equal(t, "New", created.FirstName)
	assert.Equal(t, 28, created.Age)
	assert.Equal(t, "2023-11-20", created.JoinedDate)
}

func TestCreateRecord_KeepsJoinedDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	})

	created, err := c.CreateRecord(context.Background(), record.NewRecord{FirstName: "A", JoinedDate: "2020-02-02"})
	require.NoError(t, err)
	assert.Equal(t, "2020-02-02", created.JoinedDate)
}

func TestCreateRecord_EmptyObjectFallsBackToPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	})

	created, err := c.CreateRecord(context.Background(), record.NewRecord{FirstName: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "A", created.FirstName)
}

func TestCreateRecord_Failures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		_, err := c.CreateRecord(context.Background(), record.NewRecord{FirstName: "A"})
		require.True(t, store.IsTransport(err))
	})

	t.Run("bad body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `not json`)
		})
		_, err := c.CreateRecord(context.Background(), record.NewRecord{FirstName: "A"})
		require.True(t, store.IsProtocol(err))
	})
}

func TestServerVersionMismatchWarnsOnce(t *testing.T) {
	orig := version.Version
	t.Cleanup(func() { version.Version = orig })
	version.Version = "1.4.0"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(version.HeaderServerVersion, "2.0.0")
		w.Header().Set(HeaderTotalCount, "2")
		_, _ = io.WriteString(w, twoUsers)
	}))
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	c, err := New(srv.URL, time.Second, zerolog.New(&logs))
	require.NoError(t, err)

	for range 3 {
		_, err = c.ListRecords(context.Background(), store.ListParams{Page: 1, PageSize: 10})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "server version may be incompatible"))
	assert.Contains(t, logs.String(), `"server_version":"2.0.0"`)
}
