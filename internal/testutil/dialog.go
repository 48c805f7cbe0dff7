package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
)

// ConversationStart is the original start time of every fixture dialog.
const ConversationStart = "2019-03-01T10:00:00.000Z"

// DialogDocument builds a dialog file with n dialogs. Each dialog has three
// volleys, sent 5s, 35s and 95s after ConversationStart, by a client, an
// agent and a bot:
//
//	"Hi my name is Alice"
//	"hello Alice, see acct42"
//	"call me at 5551234"
func DialogDocument(n int) map[string]any {
	dialogs := make([]any, 0, n)
	for i := 0; i < n; i++ {
		dialogs = append(dialogs, map[string]any{
			"dialogHeader": map[string]any{
				"sessionID":            fmt.Sprintf("session-%d", i),
				"conversationDateTime": ConversationStart,
				"agentEmails":          []string{"agent@example.com"},
				"clientEmail":          "alice@example.com",
			},
			"dialogContent": map[string]any{
				"dialog": []any{
					map[string]any{"client": "alice@example.com", "datetime": "2019-03-01T10:00:05.000Z", "message": "Hi my name is Alice", "turn": 1},
					map[string]any{"agent": "a1", "datetime": "2019-03-01T10:00:35.000Z", "message": "hello Alice, see acct42", "turn": 2, "skill": "billing"},
					map[string]any{"bot": "helper", "datetime": "2019-03-01T10:01:35.000Z", "message": "call me at 5551234", "turn": 3},
				},
			},
		})
	}
	return map[string]any{
		"header":  map[string]any{"source": "fixture"},
		"dialogs": dialogs,
	}
}

// WriteDialogFile writes DialogDocument(n) to dir/name and returns its path.
func WriteDialogFile(t *testing.T, dir, name string, n int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	writeJSON(t, path, DialogDocument(n))
	return path
}
