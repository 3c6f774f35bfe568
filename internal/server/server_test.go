package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recordlist/internal/loader"
	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
	"github.com/rshade/recordlist/internal/store/httpstore"
	"github.com/rshade/recordlist/pkg/version"
)

func newTestServer(t *testing.T, seed ...record.Record) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(store.NewMemoryStore(seed...), "", zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, target string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(target) //nolint:noctx // test helper
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestListUsers(t *testing.T) {
	_, ts := newTestServer(t, record.Sample(25)...)

	var page []record.Record
	resp := getJSON(t, ts.URL+"/users?_page=3&_limit=10", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "25", resp.Header.Get(HeaderTotalCount))
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), HeaderTotalCount)
	assert.Equal(t, version.GetVersion(), resp.Header.Get(version.HeaderServerVersion))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	require.Len(t, page, 5)
	assert.Equal(t, "21", page[0].ID)
}

func TestListUsers_Sorting(t *testing.T) {
	_, ts := newTestServer(t, record.Sample(12)...)

	for _, query := range []string{"_sort=age&_order=desc", "_sort=-age"} {
		t.Run(query, func(t *testing.T) {
			var page []record.Record
			resp := getJSON(t, ts.URL+"/users?_page=1&_limit=12&"+query, &page)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			for i := 1; i < len(page); i++ {
				assert.GreaterOrEqual(t, page[i-1].Age, page[i].Age)
			}
		})
	}
}

func TestListUsers_Defaults(t *testing.T) {
	_, ts := newTestServer(t, record.Sample(15)...)

	var page []record.Record
	resp := getJSON(t, ts.URL+"/users", &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, page, store.DefaultPageSize)

	resp = getJSON(t, ts.URL+"/users?_page=2&_per_page=4", &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, page, 4)
	assert.Equal(t, "5", page[0].ID)
}

func TestListUsers_BadRequests(t *testing.T) {
	_, ts := newTestServer(t)

	for _, query := range []string{
		"_page=zero",
		"_page=0",
		"_limit=1000",
		"_limit=x",
		"_sort=salary",
		"_sort=age&_order=sideways",
	} {
		t.Run(query, func(t *testing.T) {
			var body errorBody
			resp := getJSON(t, ts.URL+"/users?"+query, &body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestCreateUser(t *testing.T) {
	srv, ts := newTestServer(t)

	payload := `{"firstName":"Анна","lastName":"Ли","email":"anna@example.com","age":30,` +
		`"city":"Казань","occupation":"Designer","status":"Активен","id":"client-side"}`
	resp, err := http.Post(ts.URL+"/users", "application/json", strings.NewReader(payload)) //nolint:noctx // test
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created record.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "client-side", created.ID, "the store assigns ids")
	assert.NotEmpty(t, created.JoinedDate)
	assert.Equal(t, "/users/"+created.ID, resp.Header.Get("Location"))

	var page []record.Record
	listResp := getJSON(t, ts.URL+"/users", &page)
	assert.Equal(t, "1", listResp.Header.Get(HeaderTotalCount))

	assert.InDelta(t, 1, testCounter(t, srv, "recordlist_records_created_total"), 0)
}

func TestCreateUser_Rejected(t *testing.T) {
	_, ts := newTestServer(t)

	t.Run("invalid json", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/users", "application/json", strings.NewReader("{")) //nolint:noctx // test
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("validation", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/users", "application/json", strings.NewReader(`{"firstName":"A"}`)) //nolint:noctx // test
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body.Fields, "firstName")
		assert.Contains(t, body.Fields, "email")
	})
}

func TestPreflightAndHealth(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, ts.URL+"/users", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")

	var health map[string]string
	resp = getJSON(t, ts.URL+"/healthz", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, record.Sample(3)...)
	getJSON(t, ts.URL+"/users", nil)

	resp, err := http.Get(ts.URL + "/metrics") //nolint:noctx // test
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `recordlist_http_requests_total{code="200",method="get",route="/users"} 1`)
	assert.Contains(t, text, "recordlist_http_request_duration_seconds")
	assert.Contains(t, text, "recordlist_page_records")
	assert.Contains(t, text, "go_goroutines")
}

func TestServeAndShutdown(t *testing.T) {
	srv := New(store.NewMemoryStore(), "127.0.0.1:0", zerolog.Nop())
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/healthz") //nolint:noctx // test
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-done, "a clean shutdown is not an error")
}

// The HTTP store and the loader work end to end against the local server.
func TestLoaderOverHTTP(t *testing.T) {
	_, ts := newTestServer(t, record.Sample(25)...)
	ctx := context.Background()

	client, err := httpstore.New(ts.URL, time.Second, zerolog.Nop())
	require.NoError(t, err)
	fetcher, err := loader.NewFetcher(client, 10, zerolog.Nop())
	require.NoError(t, err)
	l := loader.New(fetcher, 10, zerolog.Nop())

	var sizes []int
	req := l.Start()
	for req != nil {
		before := len(l.Records())
		out, _ := l.Apply(l.Fetch(ctx, *req))
		require.Equal(t, loader.OutcomeApplied, out)
		sizes = append(sizes, len(l.Records())-before)
		req = l.OnIntersect(l.Target())
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Equal(t, 25, l.Snapshot().TotalCount)

	created, err := client.CreateRecord(ctx, record.NewRecord{
		FirstName: "Новый", LastName: "Пользователь", Email: "new@example.com", Age: 40,
		City: "Москва", Occupation: "Тестировщик", Status: record.StatusActive,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	refetch := l.OnRecordCreated()
	require.NotNil(t, refetch)
	out, _ := l.Apply(l.Fetch(ctx, *refetch))
	require.Equal(t, loader.OutcomeApplied, out)
	assert.Equal(t, 26, l.Snapshot().TotalCount)
	assert.Len(t, l.Records(), 10)
}

func testCounter(t *testing.T, srv *Server, name string) float64 {
	t.Helper()
	families, err := srv.Metrics().Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestParseListParams(t *testing.T) {
	tests := []struct {
		query string
		want  store.ListParams
	}{
		{"", store.ListParams{Page: 1, PageSize: 10}},
		{"_page=2&_limit=5", store.ListParams{Page: 2, PageSize: 5}},
		{"_sort=city", store.ListParams{Page: 1, PageSize: 10, SortColumn: "city", SortOrder: store.OrderAsc}},
		{"_sort=-city", store.ListParams{Page: 1, PageSize: 10, SortColumn: "city", SortOrder: store.OrderDesc}},
		{"_sort=city&_order=DESC", store.ListParams{Page: 1, PageSize: 10, SortColumn: "city", SortOrder: store.OrderDesc}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := parseListParams(q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
