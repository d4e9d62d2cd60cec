package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"verifact/pkg/logger"
	"verifact/pkg/verify"
)

// AnalyzeMessage is the payload published to the analyze queue. Exactly one
// of URL or Text is set, mirroring the synchronous API.
type AnalyzeMessage struct {
	URL       string `json:"url,omitempty"`
	Text      string `json:"text,omitempty"`
	Title     string `json:"title,omitempty"`
	CheapMode bool   `json:"cheap_mode,omitempty"`
}

// ProcessAnalyzeMessage runs the full fact-check pipeline for one queued
// request. A returned error sends the message to the retry queue.
func ProcessAnalyzeMessage(ctx context.Context, svc *verify.Service, body string) error {
	var msg AnalyzeMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("invalid analyze message: %w", err)
	}

	result, err := svc.Analyze(ctx, verify.AnalyzeInput{
		URL:       msg.URL,
		Text:      msg.Text,
		Title:     msg.Title,
		CheapMode: msg.CheapMode,
	})
	if err != nil {
		return err
	}

	logger.Info(
		"Analyze finished",
		"report_id", result.Report.ID,
		"score", result.Report.OverallScore,
		"merged", result.WasMerged,
		"attempts", result.TotalAttempts,
	)
	return nil
}
