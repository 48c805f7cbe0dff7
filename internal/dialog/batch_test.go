package dialog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativo-io/masker/internal/service"
	"github.com/dativo-io/masker/internal/tenant"
	"github.com/dativo-io/masker/internal/testutil"
)

type outFile struct {
	Header  map[string]any `json:"header"`
	Dialogs []struct {
		DialogHeader  map[string]any `json:"dialogHeader"`
		DialogContent struct {
			Dialog []map[string]any `json:"dialog"`
		} `json:"dialogContent"`
	} `json:"dialogs"`
}

func newProcessor(t *testing.T, minDialogs int) (*Processor, string, string) {
	t.Helper()
	props := testutil.NewPropertiesDir(t)
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "masked")
	svc := service.New(tenant.NewRegistry(props), nil)
	p := NewProcessor(svc, Config{
		TenantID:   testutil.DefaultTenant,
		InputDir:   in,
		OutputDir:  out,
		Ext:        "json",
		MinDialogs: minDialogs,
	}, WithClock(func() time.Time { return time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC) }))
	return p, in, out
}

func TestProcessorRun(t *testing.T) {
	p, in, out := newProcessor(t, 2)
	testutil.WriteDialogFile(t, in, "chats-2021-06-30.json", 3)
	testutil.WriteDialogFile(t, in, "small-2021-07-01.json", 1)
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0o600))

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 3, sum.Files)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 1, sum.Dropped)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 4, sum.Dialogs)
	assert.Equal(t, int64(4*13), sum.Counts.Words)
	assert.Equal(t, int64(4*3), sum.Counts.Masked())

	assert.FileExists(t, filepath.Join(out, "chats-2021-06-30.json"))
	assert.NoFileExists(t, filepath.Join(out, "small-2021-07-01.json"))
	assert.NoFileExists(t, filepath.Join(out, "broken.json"))

	report, err := os.ReadFile(filepath.Join(out, BlacklistFile))
	require.NoError(t, err)
	assert.Equal(t, "\"alice\", 8\n\"5551234\", 4\n", string(report))
}

func TestProcessorRewritesDialogs(t *testing.T) {
	p, in, out := newProcessor(t, 1)
	testutil.WriteDialogFile(t, in, "chats-2021-06-30.json", 1)

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "chats-2021-06-30.json"))
	require.NoError(t, err)
	var doc outFile
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "fixture", doc.Header["source"])
	assert.EqualValues(t, 13, doc.Header["fileWords"])
	assert.EqualValues(t, 3, doc.Header["fileMasked"])
	assert.EqualValues(t, 2, doc.Header["fileMaskedNam"])
	assert.EqualValues(t, 1, doc.Header["fileMaskedNum"])
	assert.Equal(t, "23.08%", doc.Header["filePctMasked"])

	require.Len(t, doc.Dialogs, 1)
	h := doc.Dialogs[0].DialogHeader
	assert.Equal(t, "June 30 2021 12:00:00", h["conversationDateTime"])
	assert.Equal(t, "session-0", h["sessionID"])
	assert.NotContains(t, h, "agentEmails")
	assert.NotContains(t, h, "clientEmail")
	assert.EqualValues(t, 13, h["words"])
	assert.EqualValues(t, 2, h["maskedName"])
	assert.Equal(t, "23.08%", h["pctMasked"])

	volleys := doc.Dialogs[0].DialogContent.Dialog
	require.Len(t, volleys, 3)

	assert.Equal(t, "~name~", volleys[0]["client"])
	assert.Equal(t, "2021-06-30T12:00:05.000Z", volleys[0]["datetime"])
	assert.Equal(t, "Hi my name is ~name~", volleys[0]["message"])
	assert.EqualValues(t, 1, volleys[0]["turn"])

	assert.Equal(t, "a1", volleys[1]["agent"])
	assert.Equal(t, "2021-06-30T12:00:35.000Z", volleys[1]["datetime"])
	assert.Equal(t, "hello ~name~, see ~acct~", volleys[1]["message"])
	assert.Equal(t, "billing", volleys[1]["skill"])

	assert.Equal(t, "~name~", volleys[2]["bot"])
	assert.Equal(t, "2021-06-30T12:01:35.000Z", volleys[2]["datetime"])
	assert.Equal(t, "call me at ~num~", volleys[2]["message"])
}

func TestProcessorAnchorsUndatedFilesToday(t *testing.T) {
	p, in, out := newProcessor(t, 1)
	testutil.WriteDialogFile(t, in, "chats.json", 1)

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "chats.json"))
	require.NoError(t, err)
	var doc outFile
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Dialogs, 1)
	assert.Equal(t, "February 03 2024 12:00:00", doc.Dialogs[0].DialogHeader["conversationDateTime"])
}

func TestProcessorSkipsFileWithMissingSessionID(t *testing.T) {
	p, in, out := newProcessor(t, 1)
	doc := testutil.DialogDocument(2)
	dialogs := doc["dialogs"].([]any)
	delete(dialogs[1].(map[string]any)["dialogHeader"].(map[string]any), "sessionID")
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(in, "chats-2021-06-30.json"), data, 0o600))

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.NoFileExists(t, filepath.Join(out, "chats-2021-06-30.json"))
	assert.FileExists(t, filepath.Join(out, BlacklistFile))
}

func TestProcessorUnknownTenant(t *testing.T) {
	props := testutil.NewPropertiesDir(t)
	svc := service.New(tenant.NewRegistry(props), nil)
	p := NewProcessor(svc, Config{TenantID: "nobody", InputDir: t.TempDir(), OutputDir: t.TempDir()})

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestProcessorMissingInputDir(t *testing.T) {
	props := testutil.NewPropertiesDir(t)
	svc := service.New(tenant.NewRegistry(props), nil)
	p := NewProcessor(svc, Config{
		TenantID:  testutil.DefaultTenant,
		InputDir:  filepath.Join(t.TempDir(), "absent"),
		OutputDir: t.TempDir(),
	})

	_, err := p.Run(context.Background())
	require.Error(t, err)
}

func TestValidateFile(t *testing.T) {
	good, err := json.Marshal(testutil.DialogDocument(1))
	require.NoError(t, err)
	assert.NoError(t, ValidateFile(good))

	tests := []struct {
		name string
		doc  string
	}{
		{"no dialogs", `{"header": {}}`},
		{"dialogs not an array", `{"dialogs": {}}`},
		{"content without header", `{"dialogs": [{"dialogContent": {"dialog": []}}]}`},
		{"header without session", `{"dialogs": [{"dialogHeader": {}, "dialogContent": {"dialog": []}}]}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFile)
		})
	}
	assert.NoError(t, ValidateFile([]byte(`{"dialogs": [{"note": "no content"}]}`)))
}
