// Package backendtest runs an in-memory stand-in for the hosted backend's REST
// interface so repositories can be exercised through the real client library.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const restPrefix = "/rest/v1/"

type Row map[string]interface{}

type RecordedRequest struct {
	Method        string
	Table         string
	Query         string
	APIKey        string
	Authorization string
}

type cannedResponse struct {
	status int
	body   string
}

// Server speaks enough of the PostgREST protocol for select, insert, upsert,
// update and delete with eq filters, order and limit.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	tables      map[string][]Row
	primaryKeys map[string]string
	canned      map[string]cannedResponse
	readOnly    map[string]bool
	requests    []RecordedRequest
}

// NewServer starts a server; primaryKeys maps table name to its key column.
func NewServer(primaryKeys map[string]string) *Server {
	s := &Server{
		tables:      make(map[string][]Row),
		primaryKeys: primaryKeys,
		canned:      make(map[string]cannedResponse),
		readOnly:    make(map[string]bool),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Seed replaces the rows of table.
func (s *Server) Seed(table string, rows ...Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append([]Row(nil), rows...)
}

// Rows returns a copy of the current rows of table.
func (s *Server) Rows(table string) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.tables[table]...)
}

// RespondWith makes every request to table return status and body verbatim.
func (s *Server) RespondWith(table string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[table] = cannedResponse{status: status, body: body}
}

// DenyWrites makes table behave like one whose only row-level security policy is
// SELECT: inserts fail, updates and deletes match no rows.
func (s *Server) DenyWrites(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly[table] = true
}

func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, restPrefix) {
		writeError(w, http.StatusNotFound, "PGRST000", "unknown path "+r.URL.Path)
		return
	}
	table := strings.TrimPrefix(r.URL.Path, restPrefix)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Table:         table,
		Query:         r.URL.RawQuery,
		APIKey:        r.Header.Get("apikey"),
		Authorization: r.Header.Get("Authorization"),
	})

	if canned, ok := s.canned[table]; ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(canned.status)
		_, _ = io.WriteString(w, canned.body)
		return
	}

	if _, ok := s.primaryKeys[table]; !ok {
		writeError(w, http.StatusNotFound, "42P01", fmt.Sprintf("relation \"public.%s\" does not exist", table))
		return
	}

	if s.readOnly[table] && r.Method != http.MethodGet && r.Method != http.MethodHead {
		if r.Method == http.MethodPost {
			writeError(w, http.StatusForbidden, "42501", fmt.Sprintf("new row violates row-level security policy for table \"%s\"", table))
			return
		}
		respond(w, r, http.StatusOK, nil)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleSelect(w, r, table)
	case http.MethodPost:
		s.handleInsert(w, r, table)
	case http.MethodPatch:
		s.handleUpdate(w, r, table)
	case http.MethodDelete:
		s.handleDelete(w, r, table)
	default:
		writeError(w, http.StatusMethodNotAllowed, "PGRST105", "method not allowed")
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, table string) {
	rows := filterRows(s.tables[table], r)

	if order := r.URL.Query().Get("order"); order != "" {
		parts := strings.Split(order, ".")
		column := parts[0]
		desc := len(parts) > 1 && parts[1] == "desc"
		sort.SliceStable(rows, func(i, j int) bool {
			less := lessValue(rows[i][column], rows[j][column])
			if desc {
				return lessValue(rows[j][column], rows[i][column])
			}
			return less
		})
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n >= 0 && n < len(rows) {
			rows = rows[:n]
		}
	}

	writeRows(w, http.StatusOK, rows)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request, table string) {
	incoming, err := readRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
		return
	}

	pk := r.URL.Query().Get("on_conflict")
	if pk == "" {
		pk = s.primaryKeys[table]
	}
	merge := strings.Contains(r.Header.Get("Prefer"), "resolution=merge-duplicates")

	existing := s.tables[table]
	for _, row := range incoming {
		idx := indexOf(existing, pk, row[pk])
		switch {
		case idx >= 0 && merge:
			for k, v := range row {
				existing[idx][k] = v
			}
		case idx >= 0:
			writeError(w, http.StatusConflict, "23505", fmt.Sprintf("duplicate key value violates unique constraint \"%s_pkey\"", table))
			return
		default:
			existing = append(existing, row)
		}
	}
	s.tables[table] = existing

	respond(w, r, http.StatusCreated, incoming)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, table string) {
	patch, err := readRows(r)
	if err != nil || len(patch) != 1 {
		writeError(w, http.StatusBadRequest, "PGRST102", "expected a single object")
		return
	}

	var updated []Row
	for _, row := range s.tables[table] {
		if matches(row, r) {
			for k, v := range patch[0] {
				row[k] = v
			}
			updated = append(updated, row)
		}
	}

	respond(w, r, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, table string) {
	var kept, deleted []Row
	for _, row := range s.tables[table] {
		if matches(row, r) {
			deleted = append(deleted, row)
		} else {
			kept = append(kept, row)
		}
	}
	s.tables[table] = kept

	respond(w, r, http.StatusOK, deleted)
}

func respond(w http.ResponseWriter, r *http.Request, status int, rows []Row) {
	if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
		writeRows(w, status, rows)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readRows(r *http.Request) ([]Row, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) > 0 && body[0] == '[' {
		var rows []Row
		err := json.Unmarshal(body, &rows)
		return rows, err
	}
	var row Row
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, err
	}
	return []Row{row}, nil
}

func filterRows(rows []Row, r *http.Request) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matches(row, r) {
			cp := make(Row, len(row))
			for k, v := range row {
				cp[k] = v
			}
			out = append(out, cp)
		}
	}
	return out
}

func matches(row Row, r *http.Request) bool {
	for column, values := range r.URL.Query() {
		switch column {
		case "select", "order", "limit", "offset", "on_conflict", "columns":
			continue
		}
		for _, v := range values {
			expected, ok := strings.CutPrefix(v, "eq.")
			if !ok {
				continue
			}
			if fmt.Sprint(row[column]) != expected {
				return false
			}
		}
	}
	return true
}

func indexOf(rows []Row, column string, value interface{}) int {
	for i, row := range rows {
		if fmt.Sprint(row[column]) == fmt.Sprint(value) {
			return i
		}
	}
	return -1
}

func lessValue(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func writeRows(w http.ResponseWriter, status int, rows []Row) {
	if rows == nil {
		rows = []Row{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rows)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
		"details": nil,
		"hint":    nil,
	})
}
