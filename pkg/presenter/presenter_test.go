package presenter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/presenter"
)

var now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func msgAt(id string, at time.Time) chat.Message {
	return chat.Message{ID: id, Sender: chat.SenderUser, Content: "x", CreatedAt: at}
}

func TestGroupBucketsByDay(t *testing.T) {
	messages := []chat.Message{
		msgAt("a", now.AddDate(0, 0, -10)),
		msgAt("b", now.AddDate(0, 0, -10).Add(time.Hour)),
		msgAt("c", now.AddDate(0, 0, -1)),
		msgAt("d", now.Add(-time.Hour)),
		msgAt("e", now.Add(-time.Minute)),
	}

	groups := presenter.Group(messages, now)
	require.Len(t, groups, 3)

	assert.Equal(t, "8/21/2026", groups[0].Label)
	assert.Len(t, groups[0].Messages, 2)
	assert.Equal(t, "Yesterday", groups[1].Label)
	assert.Len(t, groups[1].Messages, 1)
	assert.Equal(t, "Today", groups[2].Label)
	assert.Len(t, groups[2].Messages, 2)
	assert.Equal(t, "d", groups[2].Messages[0].ID)
}

func TestGroupEmptyInput(t *testing.T) {
	assert.Empty(t, presenter.Group(nil, now))
}

func TestGroupIsDeterministic(t *testing.T) {
	messages := []chat.Message{
		msgAt("a", now.AddDate(0, 0, -2)),
		msgAt("b", now.AddDate(0, 0, -1)),
		msgAt("c", now),
	}
	first := presenter.Group(messages, now)
	second := presenter.Group(messages, now)
	assert.Equal(t, first, second)
}

func TestDateLabel(t *testing.T) {
	assert.Equal(t, "Today", presenter.DateLabel(now.Add(-5*time.Minute), now))
	assert.Equal(t, "Yesterday", presenter.DateLabel(now.AddDate(0, 0, -1), now))
	assert.Equal(t, "8/29/2026", presenter.DateLabel(now.AddDate(0, 0, -2), now))
	assert.Equal(t, "12/25/2025", presenter.DateLabel(time.Date(2025, 12, 25, 8, 0, 0, 0, time.UTC), now))
}

func TestDateLabelUsesLocalDay(t *testing.T) {
	// 23:30 UTC yesterday is already today in UTC+1
	local := time.FixedZone("UTC+1", 3600)
	localNow := time.Date(2026, 8, 31, 10, 0, 0, 0, local)
	stamp := time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "Today", presenter.DateLabel(stamp, localNow))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "09:05", presenter.FormatTime(time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC)))
	assert.Equal(t, "23:59", presenter.FormatTime(time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)))
}

func TestFormatTimeAgo(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "now"},
		{time.Minute, "1m"},
		{5 * time.Minute, "5m"},
		{59 * time.Minute, "59m"},
		{time.Hour, "1h"},
		{3*time.Hour + 20*time.Minute, "3h"},
		{23 * time.Hour, "23h"},
		{24 * time.Hour, "1d"},
		{49 * time.Hour, "2d"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, presenter.FormatTimeAgo(now.Add(-tc.age), now), "age %s", tc.age)
	}
}
