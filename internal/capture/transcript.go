package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// minResponseLen filters out short acknowledgements in transcripts.
const minResponseLen = 50

type transcriptEntry struct {
	Type    string `json:"type"`
	Message *struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// LastAssistantResponse returns the newest assistant message in a transcript JSONL
// file whose joined text is longer than 50 characters. A missing file or no such
// message yields "" and a nil error.
func LastAssistantResponse(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read transcript: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var entry transcriptEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Type != "assistant" || entry.Message == nil || len(entry.Message.Content) == 0 {
			continue
		}
		text := strings.TrimSpace(joinContent(entry.Message.Content))
		if len(text) > minResponseLen {
			return text, nil
		}
	}
	return "", nil
}

// joinContent flattens a message content value (string or array of blocks).
func joinContent(raw json.RawMessage) string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, blockText(b))
	}
	return strings.Join(parts, "\n")
}

func blockText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var block struct {
		Text    string          `json:"text"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &block); err != nil {
		return ""
	}
	if block.Text != "" {
		return block.Text
	}
	if len(block.Content) > 0 {
		var inner string
		if err := json.Unmarshal(block.Content, &inner); err == nil {
			return inner
		}
		return string(block.Content)
	}
	return ""
}
