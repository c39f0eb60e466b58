package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

func newTestClient(baseURL string) *Client {
	return New(baseURL, "Cameroun", "hemoboard-test", time.Millisecond, 5*time.Second, nil)
}

func TestLocateParsesCoordinates(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"4.0511","lon":"9.7679"}]`))
	}))
	defer srv.Close()

	coords, err := newTestClient(srv.URL).Locate(context.Background(), "Douala 3")
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if coords.Latitude != 4.0511 || coords.Longitude != 9.7679 {
		t.Fatalf("coordinates = %+v", coords)
	}
	if gotQuery != "Douala 3, Cameroun" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotAgent != "hemoboard-test" {
		t.Fatalf("user agent = %q", gotAgent)
	}
}

func TestLocateNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Locate(context.Background(), "Quartier Inconnu")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLocateServerErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Locate(context.Background(), "Douala 3")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestLocateBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Locate(context.Background(), "Douala 3")
	if err == nil {
		t.Fatal("expected decode error")
	}
}
