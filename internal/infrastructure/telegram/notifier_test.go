package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNotifyRunPostsMessage(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChat = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("token-123", "chat-42")
	n.apiBase = server.URL
	n.client = server.Client()

	if err := n.NotifyRun(context.Background(), 7); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if gotPath != "/bottoken-123/sendMessage" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotChat != "chat-42" {
		t.Fatalf("unexpected chat id: %q", gotChat)
	}
	if !strings.Contains(gotText, "7 article(s) saved") {
		t.Fatalf("unexpected message: %q", gotText)
	}
}

func TestNotifyRunAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	n := NewNotifier("token", "chat")
	n.apiBase = server.URL
	n.client = server.Client()

	if err := n.NotifyRun(context.Background(), 1); err == nil {
		t.Fatalf("expected error for 403")
	}
}

func TestNotifyRunMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "")
	if err := n.NotifyRun(context.Background(), 1); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}
