package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kvejborg/regatta-server/cmd/utils"
)

func broadcastRequest(body string, authenticated bool) *http.Request {
	req := httptest.NewRequest("POST", "/notifications/broadcast", strings.NewReader(body))
	if authenticated {
		ctx := context.WithValue(req.Context(), utils.UserIDKey, uint(1))
		req = req.WithContext(ctx)
	}
	return req
}

func TestBroadcastRequiresAuthentication(t *testing.T) {
	h := NewNotificationHandler(nil, nil)
	rec := httptest.NewRecorder()

	h.BroadcastNotification(rec, broadcastRequest(`{"title":"t","body":"b"}`, false))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestBroadcastValidation(t *testing.T) {
	h := NewNotificationHandler(nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing body", `{"title":"t"}`},
		{"missing title", `{"body":"b"}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.BroadcastNotification(rec, broadcastRequest(tt.body, true))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestBroadcastTargetedUsers(t *testing.T) {
	// A nil notifier drops pushes; explicit user IDs skip the device scan, so
	// the handler completes without a store.
	h := NewNotificationHandler(nil, nil)
	rec := httptest.NewRecorder()

	h.BroadcastNotification(rec, broadcastRequest(`{"title":"t","body":"b","user_ids":[4,9]}`, true))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["message"] != "Broadcast sent to 2 users" {
		t.Fatalf("message = %v", resp["message"])
	}
}
