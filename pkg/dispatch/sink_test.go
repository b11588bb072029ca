package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stacks-network/chainhook-engine/pkg/action"
)

func TestDispatchHTTPPostsBody(t *testing.T) {
	var gotBody string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewSink()
	occ := action.Occurrence{
		Kind: action.OccurrenceHttp,
		Http: &action.HttpOccurrence{URL: server.URL, ContentType: "application/json", AuthorizationHeader: "Bearer abc", Body: []byte(`{"ok":true}`)},
	}
	if err := sink.Dispatch(context.Background(), occ); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if gotBody != `{"ok":true}` {
		t.Fatalf("unexpected body delivered: %s", gotBody)
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("expected Authorization header to be forwarded, got %q", gotAuth)
	}
}

func TestDispatchHTTPReturnsErrorOnNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := NewSink()
	occ := action.Occurrence{Kind: action.OccurrenceHttp, Http: &action.HttpOccurrence{URL: server.URL, Body: []byte("{}")}}
	if err := sink.Dispatch(context.Background(), occ); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestDispatchFileAppendsWithNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occurrences.jsonl")
	sink := NewSink()

	first := action.Occurrence{Kind: action.OccurrenceFile, File: &action.FileOccurrence{Path: path, Bytes: []byte(`{"n":1}`)}}
	second := action.Occurrence{Kind: action.OccurrenceFile, File: &action.FileOccurrence{Path: path, Bytes: []byte(`{"n":2}`)}}
	if err := sink.Dispatch(context.Background(), first); err != nil {
		t.Fatalf("dispatch first: %v", err)
	}
	if err := sink.Dispatch(context.Background(), second); err != nil {
		t.Fatalf("dispatch second: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read appended file: %v", err)
	}
	want := "{\"n\":1}\n{\"n\":2}\n"
	if string(data) != want {
		t.Fatalf("expected %q, got %q", want, string(data))
	}
}

func TestDispatchDataNeverErrors(t *testing.T) {
	sink := NewSink()
	occ := action.Occurrence{Kind: action.OccurrenceData, Data: &action.DataOccurrence{Payload: []byte(`{"hello":"world"}`)}}
	if err := sink.Dispatch(context.Background(), occ); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}
