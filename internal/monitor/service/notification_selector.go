package service

import (
	"fmt"
	"strings"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/common"
)

// SelectForNotification projects a batch result into a reviewable broadcast.
// Posts whose flags changed in the run are selected by default; overrides add or remove posts.
// Exclude wins over include, and ids not present in the result are ignored.
func SelectForNotification(result *dto.BatchResult, overrides dto.NotificationOverrides) dto.NotificationPayload {
	payload := dto.NotificationPayload{
		Comment:        strings.TrimSpace(overrides.Comment),
		RecipientScope: overrides.RecipientScope,
	}
	if payload.RecipientScope == "" {
		payload.RecipientScope = common.RecipientScopeOwner
	}
	if result == nil {
		payload.Title = notificationTitle(0, 0)
		return payload
	}

	include := toSet(overrides.Include)
	exclude := toSet(overrides.Exclude)

	payload.BatchID = result.BatchID
	payload.OwnerID = result.OwnerID
	payload.TotalCount = len(result.Results)
	payload.Lines = make([]dto.NotificationLine, 0, len(result.Results))

	for _, res := range result.Results {
		changed := res.Changes.Any()
		if changed {
			payload.ChangedCount++
		}

		selected := changed || include[res.PostID]
		if exclude[res.PostID] {
			selected = false
		}

		payload.Lines = append(payload.Lines, dto.NotificationLine{
			PostID:        res.PostID,
			Symbol:        res.Symbol,
			CompanyName:   res.CompanyName,
			StatusLabel:   statusLabel(res),
			CurrentPrice:  res.CurrentPrice,
			TargetPrice:   res.TargetPrice,
			StopLossPrice: res.StopLossPrice,
			Changed:       changed,
			Selected:      selected,
		})
		if selected {
			payload.SelectedPostIDs = append(payload.SelectedPostIDs, res.PostID)
		}
	}

	payload.Title = notificationTitle(payload.ChangedCount, payload.TotalCount)
	return payload
}

func notificationTitle(changed, total int) string {
	return fmt.Sprintf("Price check update: %d/%d posts changed", changed, total)
}

func statusLabel(res dto.PostResult) string {
	switch {
	case res.Code == dto.PostResultPriceUnavailable:
		return dto.StatusLabelPriceUnavailable
	case res.Status == entity.PostStatusSuccess:
		return dto.StatusLabelTargetReached
	case res.Status == entity.PostStatusLoss:
		return dto.StatusLabelStopLoss
	case res.Changes.Closed || res.Code == dto.PostResultClosedSkipped:
		return dto.StatusLabelClosed
	default:
		return dto.StatusLabelOpen
	}
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
