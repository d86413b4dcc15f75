package actions

import (
	"fmt"
	"path/filepath"

	"github.com/dotcommander/pai/internal/capture"
	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/store"
)

// ResponseInput is the Stop hook payload relevant to capture.
type ResponseInput struct {
	SessionID      string
	HookEventName  string
	Response       string
	TranscriptPath string
}

// kiroStopEvent is the lowercase stop event name sent by Kiro, which carries no response text.
const kiroStopEvent = "stop"

// CaptureResponse files the final assistant response as a learning or a
// session summary.
func CaptureResponse(s *store.Store, c *capture.Classifier, in ResponseInput) Outcome {
	if in.HookEventName == kiroStopEvent && in.Response == "" && in.TranscriptPath == "" {
		return skipped("no response content",
			"📋 Session ended (Kiro mode - learning capture via ratings only)")
	}

	response := in.Response
	if response == "" && in.TranscriptPath != "" {
		text, err := capture.LastAssistantResponse(in.TranscriptPath)
		if err != nil {
			return failed("read transcript", err)
		}
		response = text
	}
	if response == "" {
		return skipped("no response")
	}

	summary := capture.Summary(response)

	if !c.IsLearning(response) {
		path, err := s.WriteSessionSummary(in.SessionID, summary, response)
		if err != nil {
			return failed("write session summary", err)
		}
		return Outcome{
			Status:   StatusCaptured,
			Reason:   string(models.CaptureSession),
			Path:     path,
			Feedback: []string{"📝 Session captured to history/sessions/" + partitionRel(path)},
		}
	}

	category, ok := c.Categorize(response)
	if !ok {
		category = models.CategoryAlgorithm
	}
	path, err := s.WriteLearning(store.NewLearning{
		Category:  category,
		SessionID: in.SessionID,
		Summary:   summary,
		Insight:   capture.Insight(response),
		Response:  response,
	})
	if err != nil {
		return failed("write learning", err)
	}
	return Outcome{
		Status:   StatusCaptured,
		Reason:   string(models.CaptureLearning),
		Path:     path,
		Feedback: []string{fmt.Sprintf("📚 Learning captured to LEARNING/%s/%s", category, partitionRel(path))},
	}
}

// partitionRel returns "<YYYY-MM>/<file>" for a document path.
func partitionRel(path string) string {
	return filepath.Base(filepath.Dir(path)) + "/" + filepath.Base(path)
}
