package telegram

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMarkdownV2 fails when text holds a reserved character that is neither escaped
// nor part of a balanced bold or italic entity on its line.
func assertMarkdownV2(t *testing.T, text string) {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		entities := map[rune]int{}
		escaped := false
		for _, r := range line {
			if escaped {
				escaped = false
				continue
			}
			switch {
			case r == '\\':
				escaped = true
			case r == '*' || r == '_':
				entities[r]++
			case strings.ContainsRune("[]()~`>#+-=|{}.!", r):
				t.Errorf("unescaped %q in line %q", r, line)
			}
		}
		for r, n := range entities {
			assert.Zero(t, n%2, "unbalanced %q in line %q", r, line)
		}
	}
}

func TestFormatPostReportForTelegram(t *testing.T) {
	payload := dto.NotificationPayload{
		Title:   "Price check update: 1/2 posts changed",
		Comment: "buy_the_dip (again)!",
		Lines: []dto.NotificationLine{
			{PostID: 1, Symbol: "BBCA", CompanyName: "A*B Corp.", StatusLabel: dto.StatusLabelTargetReached, CurrentPrice: 9250, TargetPrice: utils.ToPointer(9200.0), Selected: true},
			{PostID: 2, Symbol: "TLKM", StatusLabel: dto.StatusLabelOpen, CurrentPrice: 3100, Selected: false},
		},
	}

	messages := FormatPostReportForTelegram(payload)
	require.Len(t, messages, 1)

	msg := messages[0]
	assert.True(t, strings.HasPrefix(msg, "📊 *Price check update: 1/2 posts changed*"))
	assert.Contains(t, msg, `💬 _buy\_the\_dip \(again\)\!_`)
	assert.Contains(t, msg, `🎯 *BBCA \(A\*B Corp\.\)*`)
	assert.Contains(t, msg, `• 💰 Current: 9250\.00`)
	assert.Contains(t, msg, `• 🎯 Target: 9200\.00 \| 🛡 Stop Loss: \-`)
	assert.NotContains(t, msg, "TLKM")
	assertMarkdownV2(t, msg)
}

func TestFormatPostReportForTelegram_NothingSelected(t *testing.T) {
	payload := dto.NotificationPayload{
		Title: "Price check update: 0/1 posts changed",
		Lines: []dto.NotificationLine{{PostID: 1, Symbol: "BBCA"}},
	}

	assert.Nil(t, FormatPostReportForTelegram(payload))
}

func TestFormatPostReportForTelegram_SplitsLongReports(t *testing.T) {
	payload := dto.NotificationPayload{Title: "Price check update"}
	for i := 0; i < 200; i++ {
		payload.Lines = append(payload.Lines, dto.NotificationLine{
			PostID:       uint(i + 1),
			Symbol:       fmt.Sprintf("SYM%03d", i),
			StatusLabel:  dto.StatusLabelStopLoss,
			CurrentPrice: float64(1000 + i),
			Selected:     true,
		})
	}

	messages := FormatPostReportForTelegram(payload)
	require.Greater(t, len(messages), 1)

	for i, msg := range messages {
		assert.LessOrEqual(t, len(msg), maxMessageLen)
		assertMarkdownV2(t, msg)
		if i > 0 {
			assert.Contains(t, msg, fmt.Sprintf("Part %d", i+1))
		}
	}
	joined := strings.Join(messages, "")
	assert.Contains(t, joined, "SYM000")
	assert.Contains(t, joined, "SYM199")
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `a\_b\*c\[d\]\-e\.f\!`, EscapeMarkdown("a_b*c[d]-e.f!"))
}

func TestFormatErrorAlertMessage(t *testing.T) {
	msg := FormatErrorAlertMessage(time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC), "price_check.max_retry", "lock held (owner=7)", `{"owner_id":7}`)

	assert.Contains(t, msg, `lock held \(owner\=7\)`)
	assert.Contains(t, msg, `price\_check\.max\_retry`)
	assertMarkdownV2(t, msg)
}
