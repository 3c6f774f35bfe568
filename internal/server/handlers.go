package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/record"
	"github.com/rshade/recordlist/internal/store"
)

// HeaderTotalCount carries the collection size on list responses.
const HeaderTotalCount = "X-Total-Count"

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	res, err := s.store.ListRecords(ctx, params)
	if err != nil {
		status := http.StatusInternalServerError
		if isBadRequest(err) {
			status = http.StatusBadRequest
		}
		logging.FromContext(ctx).Warn().
			Ctx(ctx).
			Str("operation", "list").
			Err(err).
			Msg("listing records failed")
		writeJSON(w, status, errorBody{Error: err.Error()})
		return
	}

	s.metrics.pageSize.Observe(float64(len(res.Records)))
	w.Header().Set(HeaderTotalCount, strconv.Itoa(res.TotalCount))
	writeJSON(w, http.StatusOK, res.Records)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload record.NewRecord
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return
	}

	if err := payload.Validate(); err != nil {
		body := errorBody{Error: err.Error()}
		var ve *record.ValidationError
		if errors.As(err, &ve) {
			body.Fields = make(map[string]string, len(ve.Fields))
			for _, f := range ve.Fields {
				body.Fields[f.Field] = f.Message
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}

	created, err := s.store.CreateRecord(ctx, payload)
	if err != nil {
		logging.FromContext(ctx).Error().
			Ctx(ctx).
			Str("operation", "create").
			Err(err).
			Msg("creating record failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	s.metrics.created.Inc()
	w.Header().Set("Location", "/users/"+url.PathEscape(created.ID))
	writeJSON(w, http.StatusCreated, created)
}

// parseListParams reads json-server query parameters. _per_page is accepted
// as an alias of _limit, and a "-" prefix on _sort means descending, as in
// json-server v1.
func parseListParams(q url.Values) (store.ListParams, error) {
	params := store.ListParams{Page: 1, PageSize: store.DefaultPageSize}

	if v := q.Get("_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("_page: %w", store.ErrInvalidPage)
		}
		params.Page = n
	}

	limit := q.Get("_limit")
	if limit == "" {
		limit = q.Get("_per_page")
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return params, fmt.Errorf("_limit: %w", store.ErrInvalidPageSize)
		}
		params.PageSize = n
	}

	if sortKey := q.Get("_sort"); sortKey != "" {
		order := store.OrderAsc
		if strings.HasPrefix(sortKey, "-") {
			sortKey = strings.TrimPrefix(sortKey, "-")
			order = store.OrderDesc
		}
		if v := q.Get("_order"); v != "" {
			parsed, err := store.ParseSortOrder(v)
			if err != nil {
				return params, err
			}
			order = parsed
		}
		params.SortColumn = sortKey
		params.SortOrder = order
	}

	return params, params.Validate()
}

func isBadRequest(err error) bool {
	return errors.Is(err, store.ErrInvalidPage) ||
		errors.Is(err, store.ErrInvalidPageSize) ||
		errors.Is(err, store.ErrInvalidSortOrder) ||
		errors.Is(err, store.ErrSortWithoutOrder) ||
		errors.Is(err, record.ErrUnknownColumn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
