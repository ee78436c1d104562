package service

import (
	"testing"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatchResult() *dto.BatchResult {
	return &dto.BatchResult{
		BatchID: "batch-1",
		OwnerID: testOwner,
		Status:  dto.BatchStatusCompleted,
		Results: []dto.PostResult{
			{PostID: 1, Symbol: "AAPL", CompanyName: "Apple", Code: dto.PostResultUpdated, Status: entity.PostStatusSuccess,
				CurrentPrice: 121, TargetPrice: utils.ToPointer(120.0), Changes: dto.PostChanges{TargetReached: true, Closed: true}},
			{PostID: 2, Symbol: "MSFT", Code: dto.PostResultUpdated, Status: entity.PostStatusOpen, CurrentPrice: 101},
			{PostID: 3, Symbol: "TSLA", Code: dto.PostResultUpdated, Status: entity.PostStatusLoss,
				CurrentPrice: 88, StopLossPrice: utils.ToPointer(90.0), Changes: dto.PostChanges{StopLossTriggered: true}},
			{PostID: 4, Symbol: "NVDA", Code: dto.PostResultPriceUnavailable, Status: entity.PostStatusOpen, CurrentPrice: 100},
		},
	}
}

func TestSelectForNotification_DefaultSelectsFlagChanges(t *testing.T) {
	payload := SelectForNotification(sampleBatchResult(), dto.NotificationOverrides{})

	assert.Equal(t, "Price check update: 2/4 posts changed", payload.Title)
	assert.Equal(t, 2, payload.ChangedCount)
	assert.Equal(t, 4, payload.TotalCount)
	assert.Equal(t, []uint{1, 3}, payload.SelectedPostIDs)
	assert.Equal(t, common.RecipientScopeOwner, payload.RecipientScope)

	require.Len(t, payload.Lines, 4)
	assert.Equal(t, dto.StatusLabelTargetReached, payload.Lines[0].StatusLabel)
	assert.Equal(t, dto.StatusLabelOpen, payload.Lines[1].StatusLabel)
	assert.False(t, payload.Lines[1].Selected)
	assert.Equal(t, dto.StatusLabelStopLoss, payload.Lines[2].StatusLabel)
	assert.Equal(t, dto.StatusLabelPriceUnavailable, payload.Lines[3].StatusLabel)
}

func TestSelectForNotification_Overrides(t *testing.T) {
	payload := SelectForNotification(sampleBatchResult(), dto.NotificationOverrides{
		Include:        []uint{2, 99},
		Exclude:        []uint{3},
		Comment:        "  weekly recap ",
		RecipientScope: common.RecipientScopeChannel,
	})

	assert.Equal(t, []uint{1, 2}, payload.SelectedPostIDs)
	assert.Equal(t, "weekly recap", payload.Comment)
	assert.Equal(t, common.RecipientScopeChannel, payload.RecipientScope)
	// counts describe the run, not the selection
	assert.Equal(t, 2, payload.ChangedCount)
	assert.Len(t, payload.SelectedLines(), 2)
}

func TestSelectForNotification_NothingChanged(t *testing.T) {
	result := &dto.BatchResult{BatchID: "b", Results: []dto.PostResult{{PostID: 2, Code: dto.PostResultUnchanged}}}

	payload := SelectForNotification(result, dto.NotificationOverrides{})

	assert.Empty(t, payload.SelectedPostIDs)
	assert.Equal(t, "Price check update: 0/1 posts changed", payload.Title)
}
