package actions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/pai/internal/capture"
	"github.com/dotcommander/pai/internal/models"
)

const learningResponse = `🎯 COMPLETED: Fixed the hook config path

The problem was: the hook config pointed at a stale settings directory.
After debugging I discovered the install step never refreshed it.`

func TestCaptureResponse_Learning(t *testing.T) {
	s := newTestStore(t)
	c := capture.NewClassifier(capture.DefaultVocabulary())

	out := CaptureResponse(s, c, ResponseInput{SessionID: "s1", Response: learningResponse})
	require.Equal(t, StatusCaptured, out.Status)
	require.Equal(t, string(models.CaptureLearning), out.Reason)
	require.Contains(t, out.Path, filepath.Join("LEARNING", "SYSTEM", "2026-10"))
	require.Equal(t, "20261014T093000_LEARNING_fixed-the-hook-config-path.md", filepath.Base(out.Path))
	require.Equal(t, []string{"📚 Learning captured to LEARNING/SYSTEM/2026-10/20261014T093000_LEARNING_fixed-the-hook-config-path.md"}, out.Feedback)

	learnings, err := s.LoadLearnings(7)
	require.NoError(t, err)
	require.Len(t, learnings, 1)
	require.Equal(t, "Fixed the hook config path", learnings[0].Title)
	require.Equal(t, "the hook config pointed at a stale settings directory.", learnings[0].Insight)
}

func TestCaptureResponse_UncategorizedFallsBackToAlgorithm(t *testing.T) {
	s := newTestStore(t)
	c := capture.NewClassifier(capture.Vocabulary{LearningIndicators: []string{"solved", "insight"}})

	out := CaptureResponse(s, c, ResponseInput{Response: "We solved it. Key insight: patience."})
	require.Equal(t, StatusCaptured, out.Status)
	require.Contains(t, out.Path, filepath.Join("LEARNING", "ALGORITHM"))
}

func TestCaptureResponse_SessionSummary(t *testing.T) {
	s := newTestStore(t)
	c := capture.NewClassifier(capture.DefaultVocabulary())

	out := CaptureResponse(s, c, ResponseInput{SessionID: "s1", Response: "Here is the summary of the meeting notes you asked for."})
	require.Equal(t, StatusCaptured, out.Status)
	require.Equal(t, string(models.CaptureSession), out.Reason)
	require.True(t, strings.HasPrefix(out.Feedback[0], "📝 Session captured to history/sessions/2026-10/"))

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# SESSION: Here is the summary of the meeting notes you asked for.")
}

func TestCaptureResponse_FromTranscript(t *testing.T) {
	s := newTestStore(t)
	c := capture.NewClassifier(capture.DefaultVocabulary())
	transcript := filepath.Join(t.TempDir(), "t.jsonl")
	writeFile(t, transcript, `{"type":"assistant","message":{"content":[{"type":"text","text":"Plain answer that is comfortably longer than fifty characters."}]}}`+"\n")

	out := CaptureResponse(s, c, ResponseInput{TranscriptPath: transcript})
	require.Equal(t, StatusCaptured, out.Status)
	require.Equal(t, string(models.CaptureSession), out.Reason)
}

func TestCaptureResponse_Skips(t *testing.T) {
	s := newTestStore(t)
	c := capture.NewClassifier(capture.DefaultVocabulary())

	kiro := CaptureResponse(s, c, ResponseInput{HookEventName: "stop"})
	require.Equal(t, StatusSkipped, kiro.Status)
	require.Equal(t, []string{"📋 Session ended (Kiro mode - learning capture via ratings only)"}, kiro.Feedback)

	require.Equal(t, StatusSkipped, CaptureResponse(s, c, ResponseInput{HookEventName: "Stop"}).Status)
	require.Equal(t, StatusSkipped, CaptureResponse(s, c, ResponseInput{TranscriptPath: filepath.Join(t.TempDir(), "missing.jsonl")}).Status)
	require.Empty(t, listFiles(t, s.Root()))
}

func TestCaptureResponse_CollisionFails(t *testing.T) {
	s := newTestStore(t)
	c := capture.NewClassifier(capture.DefaultVocabulary())

	require.Equal(t, StatusCaptured, CaptureResponse(s, c, ResponseInput{Response: learningResponse}).Status)
	out := CaptureResponse(s, c, ResponseInput{Response: learningResponse})
	require.Equal(t, StatusFailed, out.Status)
	require.Error(t, out.Err)
}
