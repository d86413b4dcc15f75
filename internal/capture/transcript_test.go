package capture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestLastAssistantResponse_Missing(t *testing.T) {
	got, err := LastAssistantResponse(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLastAssistantResponse_PicksNewestLongEnough(t *testing.T) {
	long1 := strings.Repeat("a", 60)
	long2 := strings.Repeat("b", 30)
	path := writeTranscript(t,
		`{"type":"assistant","message":{"content":"`+long1+`"}}`,
		`{"type":"user","message":{"content":"`+strings.Repeat("u", 80)+`"}}`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"`+long2+`"},{"type":"text","text":"`+long2+`"}]}}`,
		`not json`,
		`{"type":"assistant","message":{"content":"ok"}}`,
	)

	got, err := LastAssistantResponse(path)
	require.NoError(t, err)
	require.Equal(t, long2+"\n"+long2, got)
}

func TestLastAssistantResponse_NoneQualifies(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"assistant","message":{"content":"short"}}`,
		`{"type":"assistant"}`,
	)
	got, err := LastAssistantResponse(path)
	require.NoError(t, err)
	require.Empty(t, got)
}
