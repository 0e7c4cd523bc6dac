// Package alert notifies a chat webhook when a comparison crosses the
// plagiarism threshold.
package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/recorder"
)

// maxListedWords bounds the common-word sample in a message.
const maxListedWords = 10

// slackMessage is the payload format for Slack incoming webhooks.
type slackMessage struct {
	Text string `json:"text"`
}

// Notifier posts flagged comparisons to a webhook.
type Notifier struct {
	URL    string
	Client *http.Client
}

// New returns a notifier for webhookURL, or nil when the URL is empty.
func New(webhookURL string) *Notifier {
	if webhookURL == "" {
		return nil
	}
	return &Notifier{URL: webhookURL, Client: &http.Client{Timeout: 10 * time.Second}}
}

// Flagged posts an alert for rec in its own goroutine so it never blocks
// the request path. done, when non-nil, is closed after the attempt.
func (n *Notifier) Flagged(rec recorder.Record, done chan<- struct{}) {
	if n == nil || !rec.Flagged {
		if done != nil {
			close(done)
		}
		return
	}

	go func() {
		if done != nil {
			defer close(done)
		}
		if err := n.send(buildNarrative(rec)); err != nil {
			log.Printf("[%s] alert: %v", rec.RunID, err)
		}
	}()
}

func (n *Notifier) send(msg string) error {
	payload, err := json.Marshal(slackMessage{Text: msg})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := n.Client.Post(n.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// buildNarrative creates a human-readable summary of a flagged comparison.
func buildNarrative(rec recorder.Record) string {
	var b strings.Builder

	b.WriteString("*PLAGIARISM DETECTED*\n\n")
	fmt.Fprintf(&b, "*Run:* %s\n", rec.RunID)
	fmt.Fprintf(&b, "*Documents:* %s ↔ %s\n", rec.DocumentA.Name, rec.DocumentB.Name)
	fmt.Fprintf(&b, "*Similarity:* %.2f%% (threshold %.2f%%)\n", rec.Percentage, rec.Threshold)
	fmt.Fprintf(&b, "*Shared vocabulary:* %d of %d distinct words\n", rec.Intersection, rec.Union)

	if len(rec.CommonWords) > 0 {
		words := make([]string, 0, maxListedWords)
		for i, cw := range rec.CommonWords {
			if i == maxListedWords {
				break
			}
			words = append(words, cw.Word)
		}
		more := ""
		if len(rec.CommonWords) > maxListedWords {
			more = fmt.Sprintf(" (+%d more)", len(rec.CommonWords)-maxListedWords)
		}
		fmt.Fprintf(&b, "*Common words:* %s%s\n", strings.Join(words, ", "), more)
	}

	return b.String()
}
