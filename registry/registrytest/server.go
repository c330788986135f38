// Package registrytest provides an in-memory node registry served over HTTP
// for tests. It behaves like the mock collection endpoint: POST assigns
// numeric ids, PATCH merges fields, DELETE removes by id.
package registrytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

const Path = "/eaisUsers"

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int
	records  []map[string]any
	requests []string
	fail     int
}

func NewServer() *Server {
	s := &Server{}
	s.Server = httptest.NewServer(s)
	return s
}

// BaseURL is the collection URL to hand to a registry client.
func (s *Server) BaseURL() string {
	return s.URL + Path
}

// SetRecords replaces the stored collection.
func (s *Server) SetRecords(records ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
}

func (s *Server) Records() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.records...)
}

// Fail makes every following request answer with code; 0 restores normal service.
func (s *Server) Fail(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = code
}

// Calls lists "METHOD /path" for every request served so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count reports how many times call was served.
func (s *Server) Count(call string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)

	if s.fail != 0 {
		w.WriteHeader(s.fail)
		w.Write([]byte(`{"message":"boom"}`))
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, Path), "/")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && id == "":
		records := s.records
		if records == nil {
			records = []map[string]any{}
		}
		json.NewEncoder(w).Encode(records)
	case r.Method == http.MethodPost && id == "":
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.nextID++
		rec["id"] = s.nextID
		s.records = append(s.records, rec)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	case r.Method == http.MethodPatch:
		var patch map[string]any
		json.NewDecoder(r.Body).Decode(&patch)
		for _, rec := range s.records {
			if IDString(rec["id"]) == id {
				for k, v := range patch {
					if k != "id" {
						rec[k] = v
					}
				}
				json.NewEncoder(w).Encode(rec)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodDelete:
		for i, rec := range s.records {
			if IDString(rec["id"]) == id {
				s.records = append(s.records[:i], s.records[i+1:]...)
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// IDString renders a decoded JSON id the way the registry path carries it.
func IDString(v any) string {
	switch id := v.(type) {
	case float64:
		return strconv.Itoa(int(id))
	case int:
		return strconv.Itoa(id)
	case string:
		return id
	}
	return ""
}
