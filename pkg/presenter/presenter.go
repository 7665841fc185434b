// Package presenter derives render-ready view data from a message log.
// Everything here is a pure function of its input.
package presenter

import (
	"fmt"
	"time"

	"github.com/parleyhq/parley/pkg/chat"
)

// DateGroup is one date bucket of messages, labeled for display.
type DateGroup struct {
	Label    string
	Messages []chat.Message
}

// Group buckets messages by calendar day relative to now. Input is
// assumed ordered by creation time ascending; every message lands in
// exactly one bucket and buckets appear in first-occurrence order.
func Group(messages []chat.Message, now time.Time) []DateGroup {
	var groups []DateGroup
	index := make(map[string]int)

	for _, msg := range messages {
		label := DateLabel(msg.CreatedAt, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DateGroup{Label: label})
		}
		groups[i].Messages = append(groups[i].Messages, msg)
	}
	return groups
}

// DateLabel returns "Today", "Yesterday", or a formatted calendar date
// for the conversation-local day of t.
func DateLabel(t, now time.Time) string {
	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return "Today"
	}
	yy, ym, yd := now.AddDate(0, 0, -1).Date()
	if ty == yy && tm == ym && td == yd {
		return "Yesterday"
	}
	return t.Format("1/2/2006")
}

// FormatTime renders a message timestamp as HH:MM.
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatTimeAgo renders a relative age for the conversation list.
func FormatTimeAgo(t, now time.Time) string {
	minutes := int(now.Sub(t).Minutes())
	switch {
	case minutes < 1:
		return "now"
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dd", minutes/(24*60))
	}
}
