package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookSender_PostsMessage(t *testing.T) {
	var got Message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, "gw-token")
	msg := Message{
		To:            "+15550101",
		Body:          "Your appointment is confirmed.",
		Client:        "acme",
		AppointmentID: "appt-1",
	}
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got != msg {
		t.Fatalf("gateway received %+v, want %+v", got, msg)
	}
	if auth != "Bearer gw-token" {
		t.Fatalf("unexpected auth header %q", auth)
	}
}

func TestWebhookSender_FailsOnGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, "")
	err := s.Send(context.Background(), Message{To: "+15550101", Body: "hi"})
	if err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestWebhookSender_RequiresConfiguration(t *testing.T) {
	s := NewWebhookSender("", "")
	if err := s.Send(context.Background(), Message{To: "+15550101", Body: "hi"}); err == nil {
		t.Fatal("expected error with no webhook url")
	}
	if err := NewWebhookSender("http://example.invalid", "").Send(context.Background(), Message{Body: "hi"}); err == nil {
		t.Fatal("expected error with no recipient")
	}
}
