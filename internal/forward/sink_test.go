package forward_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ferrygo/wcfhttp/internal/forward"
)

func samplePayload() forward.Payload {
	return forward.Payload{
		Id: 1, Ts: 1700000000, Type: 1,
		Sender: "bob", Roomid: "room1", Content: "hello",
		IsGroup: true,
	}
}

func TestHTTPSinkDeliversJSON(t *testing.T) {
	var got forward.Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := forward.NewHTTPSink(srv.URL)
	if err := sink.Deliver(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if got.Sender != "bob" || got.Roomid != "room1" || !got.IsGroup || got.IsSelf {
		t.Errorf("delivered payload = %+v", got)
	}
}

func TestHTTPSinkReportsStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := forward.NewHTTPSink(srv.URL)
	err := sink.Deliver(context.Background(), samplePayload())
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not name the status code", err)
	}
}

func TestHTTPSinkReportsTransportFailure(t *testing.T) {
	// A closed server guarantees connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	sink := forward.NewHTTPSink(url)
	if err := sink.Deliver(context.Background(), samplePayload()); err == nil {
		t.Fatal("expected transport error against closed server")
	}
}

func TestHTTPSinkWireFormat(t *testing.T) {
	body, err := json.Marshal(samplePayload())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		`"id":1`, `"ts":1700000000`, `"sender":"bob"`, `"roomid":"room1"`,
		`"is_at":false`, `"is_self":false`, `"is_group":true`,
	} {
		if !strings.Contains(string(body), key) {
			t.Errorf("wire body missing %s: %s", key, body)
		}
	}
}
