package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendWireShape(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send-email/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		fmt.Fprint(w, `{"message_id": "m-1", "status": "sent"}`)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, nil)
	messageID, err := svc.Send(context.Background(), "Recruiter", "recruiter@company.com", "a@b.com", "S", "C")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if messageID != "m-1" {
		t.Fatalf("messageID = %q", messageID)
	}

	want := map[string]string{
		"to":      "a@b.com",
		"subject": "S",
		"message": "C",
		"sender":  "recruiter@company.com",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("payload[%q] = %q, want %q", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("payload = %v, want exactly %v", got, want)
	}
}

func TestSendSurfacesRelayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "smtp unavailable"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, nil)
	if _, err := svc.Send(context.Background(), "Recruiter", "recruiter@company.com", "a@b.com", "S", "C"); err == nil {
		t.Fatal("expected relay error")
	}
}

func TestFetchRepliesWithoutFetcher(t *testing.T) {
	svc := NewService("http://localhost:8001", nil)
	msgs, err := svc.FetchReplies(context.Background(), "a@b.com", time.Time{})
	if err != nil {
		t.Fatalf("FetchReplies: %v", err)
	}
	if msgs != nil {
		t.Fatalf("msgs = %v, want nil", msgs)
	}
}
