package dto

// Status labels shown in notification reports.
const (
	StatusLabelTargetReached    = "target reached"
	StatusLabelStopLoss         = "stop loss triggered"
	StatusLabelClosed           = "closed"
	StatusLabelOpen             = "open"
	StatusLabelPriceUnavailable = "price unavailable"
)

// NotificationOverrides is the caller's edit of the default selection.
type NotificationOverrides struct {
	Include        []uint `json:"include"`
	Exclude        []uint `json:"exclude"`
	Comment        string `json:"comment"`
	RecipientScope string `json:"recipient_scope"`
}

// NotificationLine is one post rendered in a report.
type NotificationLine struct {
	PostID        uint     `json:"post_id"`
	Symbol        string   `json:"symbol"`
	CompanyName   string   `json:"company_name"`
	StatusLabel   string   `json:"status_label"`
	CurrentPrice  float64  `json:"current_price"`
	TargetPrice   *float64 `json:"target_price,omitempty"`
	StopLossPrice *float64 `json:"stop_loss_price,omitempty"`
	Changed       bool     `json:"changed"`
	Selected      bool     `json:"selected"`
}

// NotificationPayload is the reviewable broadcast built from a batch result.
type NotificationPayload struct {
	BatchID         string             `json:"batch_id"`
	OwnerID         uint               `json:"owner_id"`
	Title           string             `json:"title"`
	Comment         string             `json:"comment"`
	ChangedCount    int                `json:"changed_count"`
	TotalCount      int                `json:"total_count"`
	Lines           []NotificationLine `json:"lines"`
	SelectedPostIDs []uint             `json:"selected_post_ids"`
	RecipientScope  string             `json:"recipient_scope"`
}

// SelectedLines returns the lines included in the broadcast, in report order.
func (p *NotificationPayload) SelectedLines() []NotificationLine {
	var lines []NotificationLine
	for _, l := range p.Lines {
		if l.Selected {
			lines = append(lines, l)
		}
	}
	return lines
}
