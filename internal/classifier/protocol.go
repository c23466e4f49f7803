package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"favsort/internal/logging"
)

// BatchItem is one video submitted for classification.
type BatchItem struct {
	Title       string
	Description string
}

const batchSystemPrompt = "You are a video curation assistant. You assign each video to exactly one category " +
	"from an allowed list, based only on its title and description, and you reply with JSON only."

// ClassifyBatch maps items onto the allowed category list. The returned slice
// always has len(items) entries; an empty string marks an absent answer. Any
// transport failure or unrecoverable response marks the entire batch absent:
// silent misalignment between items and answers is worse than an explicit
// failure. The error return is reserved for precondition violations and
// context cancellation, which should abort the run.
func (c *Client) ClassifyBatch(ctx context.Context, items []BatchItem, targets []string) ([]string, error) {
	if len(targets) == 0 {
		return nil, errors.New("classifier: target category list is empty")
	}
	if len(items) == 0 {
		return nil, nil
	}

	content, err := c.completeJSON(ctx, batchSystemPrompt, buildBatchPrompt(items, targets))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.logger.Warn("batch classification failed", logging.Int("batch_size", len(items)), logging.Error(err))
		return make([]string, len(items)), nil
	}

	answers, ok := extractAnswers(content, len(items))
	if !ok {
		c.logger.Warn("unrecoverable model response", logging.Int("batch_size", len(items)))
		return make([]string, len(items)), nil
	}
	return answers, nil
}

func buildBatchPrompt(items []BatchItem, targets []string) string {
	var sb strings.Builder
	sb.WriteString("Allowed categories:\n")
	for _, target := range targets {
		sb.WriteString("- ")
		sb.WriteString(target)
		sb.WriteByte('\n')
	}
	sb.WriteString("\nVideos:\n")
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. Title: %s\n", i+1, item.Title)
		if desc := strings.TrimSpace(item.Description); desc != "" {
			fmt.Fprintf(&sb, "   Description: %s\n", desc)
		}
	}
	fmt.Fprintf(&sb, "\nReply with a JSON array of exactly %d strings. ", len(items))
	sb.WriteString("The i-th element must be the allowed category that best fits the i-th video. ")
	sb.WriteString("Use category names verbatim from the allowed list and add no other text.")
	return sb.String()
}
