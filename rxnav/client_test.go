package rxnav

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFindRxCUI_ExactMatch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("name") != "aspirin" {
			t.Errorf("Query name = %q, expected aspirin", r.URL.Query().Get("name"))
		}
		w.Write([]byte(`{"idGroup":{"rxnormId":["1191"]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	rxcui, err := client.FindRxCUI(context.Background(), "aspirin")
	if err != nil {
		t.Fatalf("FindRxCUI returned error: %v", err)
	}
	if rxcui != "1191" {
		t.Errorf("FindRxCUI = %q, expected 1191", rxcui)
	}
	if gotPath != "/rxcui.json" {
		t.Errorf("Request path %q, expected /rxcui.json", gotPath)
	}
}

func TestFindRxCUI_ApproximateFallback(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/rxcui.json":
			w.Write([]byte(`{"idGroup":{}}`))
		case "/approximateTerm.json":
			if r.URL.Query().Get("maxEntries") != "1" {
				t.Errorf("maxEntries = %q, expected 1", r.URL.Query().Get("maxEntries"))
			}
			w.Write([]byte(`{"approximateGroup":{"candidate":[{"rxcui":"11289"}]}}`))
		default:
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	rxcui, err := client.FindRxCUI(context.Background(), "warfarn")
	if err != nil {
		t.Fatalf("FindRxCUI returned error: %v", err)
	}
	if rxcui != "11289" {
		t.Errorf("FindRxCUI = %q, expected 11289", rxcui)
	}
	if len(paths) != 2 {
		t.Errorf("Expected exact then approximate call, got %v", paths)
	}
}

func TestFindRxCUI_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rxcui.json":
			w.Write([]byte(`{"idGroup":{}}`))
		case "/approximateTerm.json":
			w.Write([]byte(`{"approximateGroup":{"candidate":[]}}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FindRxCUI(context.Background(), "notadrug")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestFindRxCUI_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FindRxCUI(context.Background(), "aspirin")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Expected ErrUpstream, got %v", err)
	}
}

func TestFindRxCUI_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(server.URL)
	server.Close()

	_, err := client.FindRxCUI(context.Background(), "aspirin")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Expected ErrUpstream on transport failure, got %v", err)
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client := NewClient("")
	if client.baseURL != "https://rxnav.nlm.nih.gov/REST" {
		t.Errorf("Default base URL %q", client.baseURL)
	}

	client = NewClient("http://example.com/REST/")
	if client.baseURL != "http://example.com/REST" {
		t.Errorf("Trailing slash should be trimmed, got %q", client.baseURL)
	}
}
