package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxMessageLen = 4090

// FormatPostReportForTelegram formats the selected lines of a payload into MarkdownV2 messages,
// ensuring each message does not exceed the Telegram length limit.
func FormatPostReportForTelegram(payload dto.NotificationPayload) []string {
	lines := payload.SelectedLines()
	if len(lines) == 0 {
		return nil
	}

	var messages []string
	var currentMessage strings.Builder
	part := 1

	startNewPart := func() {
		currentMessage.Reset()
		if part == 1 {
			currentMessage.WriteString(fmt.Sprintf("📊 *%s*\n", EscapeMarkdown(payload.Title)))
			if payload.Comment != "" {
				currentMessage.WriteString(fmt.Sprintf("💬 _%s_\n", EscapeMarkdown(payload.Comment)))
			}
			currentMessage.WriteString("\n")
			return
		}
		currentMessage.WriteString(fmt.Sprintf("\\-\\-\\-*%s Part %d*\\-\\-\\-\n\n", EscapeMarkdown(payload.Title), part))
	}

	startNewPart()

	for _, line := range lines {
		entry := formatPostLine(line)
		if currentMessage.Len()+len(entry) > maxMessageLen {
			messages = append(messages, currentMessage.String())
			part++
			startNewPart()
		}
		currentMessage.WriteString(entry)
	}

	messages = append(messages, currentMessage.String())
	return messages
}

func formatPostLine(line dto.NotificationLine) string {
	var sb strings.Builder

	name := EscapeMarkdown(line.Symbol)
	if line.CompanyName != "" {
		name = fmt.Sprintf("%s \\(%s\\)", name, EscapeMarkdown(line.CompanyName))
	}
	sb.WriteString(fmt.Sprintf("%s *%s*\n", statusIcon(line.StatusLabel), name))
	sb.WriteString(fmt.Sprintf("• Status: %s\n", EscapeMarkdown(line.StatusLabel)))
	sb.WriteString(fmt.Sprintf("• 💰 Current: %s\n", formatPrice(&line.CurrentPrice)))
	sb.WriteString(fmt.Sprintf("• 🎯 Target: %s \\| 🛡 Stop Loss: %s\n\n", formatPrice(line.TargetPrice), formatPrice(line.StopLossPrice)))

	return sb.String()
}

func statusIcon(label string) string {
	switch label {
	case dto.StatusLabelTargetReached:
		return "🎯"
	case dto.StatusLabelStopLoss:
		return "⚠️"
	case dto.StatusLabelClosed:
		return "🔒"
	case dto.StatusLabelPriceUnavailable:
		return "❔"
	default:
		return "📈"
	}
}

func formatPrice(p *float64) string {
	if p == nil {
		return EscapeMarkdown("-")
	}
	return EscapeMarkdown(fmt.Sprintf("%.2f", *p))
}

// EscapeMarkdown escapes every MarkdownV2 reserved character so s renders as plain text,
// including inside bold and italic entities.
func EscapeMarkdown(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

// FormatErrorAlertMessage renders an operational alert. Every value is escaped for MarkdownV2.
func FormatErrorAlertMessage(time time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 \[ERROR ALERT\]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, EscapeMarkdown(utils.PrettyDate(time)), EscapeMarkdown(errType), EscapeMarkdown(errMsg), EscapeMarkdown(data))
}
