package entities

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNotificationKeyRoundTrip(t *testing.T) {
	t.Parallel()

	for _, window := range []Window{Window24h, Window1h} {
		key := NotificationKey{TaskID: uuid.New(), Window: window}

		parsed, err := ParseNotificationID(key.String())
		if err != nil {
			t.Fatalf("ParseNotificationID(%q): %v", key.String(), err)
		}
		if parsed != key {
			t.Errorf("round trip: got %+v, want %+v", parsed, key)
		}
	}
}

func TestParseNotificationIDRejectsMalformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"no-window-tag",
		uuid.New().String(),               // no window suffix
		uuid.New().String() + "-7d",       // unknown window
		"not-a-uuid-24h",                  // bad task id
		strings.Repeat("-", 3) + "1h",     // hyphens only
	}

	for _, id := range cases {
		if _, err := ParseNotificationID(id); err == nil {
			t.Errorf("ParseNotificationID(%q): expected error", id)
		}
	}
}

func TestNotificationMarshalJSON(t *testing.T) {
	t.Parallel()

	taskID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	n := Notification{
		Key:       NotificationKey{TaskID: taskID, Window: Window1h},
		Message:   `Task "demo" will end in 1 hour`,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got struct {
		ID        string    `json:"id"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if want := taskID.String() + "-1h"; got.ID != want {
		t.Errorf("id = %q, want %q", got.ID, want)
	}
	if got.Message != n.Message {
		t.Errorf("message = %q, want %q", got.Message, n.Message)
	}
	if !got.Timestamp.Equal(n.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, n.Timestamp)
	}
}

func TestUserIdentifier(t *testing.T) {
	t.Parallel()

	wallet := "0xabc123"
	empty := ""

	cases := []struct {
		name string
		user User
		want string
	}{
		{"wallet preferred", User{Email: "a@b.c", WalletAddress: &wallet}, wallet},
		{"empty wallet falls back", User{Email: "a@b.c", WalletAddress: &empty}, "a@b.c"},
		{"no wallet", User{Email: "a@b.c"}, "a@b.c"},
	}

	for _, tc := range cases {
		if got := tc.user.Identifier(); got != tc.want {
			t.Errorf("%s: Identifier() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestWindowDuration(t *testing.T) {
	t.Parallel()

	if got := Window24h.Duration(); got != 24*time.Hour {
		t.Errorf("Window24h.Duration() = %v", got)
	}
	if got := Window1h.Duration(); got != time.Hour {
		t.Errorf("Window1h.Duration() = %v", got)
	}
}

func TestTaskIsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if (Task{DueDate: now.Add(-time.Minute)}).IsOverdue(now) != true {
		t.Error("past due date should be overdue")
	}
	if (Task{DueDate: now.Add(time.Minute)}).IsOverdue(now) != false {
		t.Error("future due date should not be overdue")
	}
	if (Task{}).IsOverdue(now) != false {
		t.Error("zero due date should never be overdue")
	}
}
