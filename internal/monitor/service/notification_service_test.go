package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendMessage(text string) error {
	return m.Called(text).Error(0)
}

func (m *mockNotifier) SendMessageUser(text string, chatID int64) error {
	return m.Called(text, chatID).Error(0)
}

type fakeUserRepo struct {
	users map[uint]entity.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &u, nil
}

type fakeNotificationLogRepo struct {
	logs []entity.NotificationLog
}

func (r *fakeNotificationLogRepo) Create(_ context.Context, log *entity.NotificationLog) error {
	r.logs = append(r.logs, *log)
	return nil
}

type notificationFixture struct {
	svc      NotificationService
	notifier *mockNotifier
	logs     *fakeNotificationLogRepo
	results  *fakeResultRepo
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		notifier: &mockNotifier{},
		logs:     &fakeNotificationLogRepo{},
		results:  newFakeResultRepo(),
	}
	runner := NewBatchRunner(defaultMonitorConfig(), logger.NewNop(), NewPriceEvaluator(EvaluatorOptions{}),
		newFakePostRepo(), newFakePriceSource(nil), &fakeUsageLedger{}, newFakeLockRepo(), f.results, &fakePublisher{})
	users := &fakeUserRepo{users: map[uint]entity.User{testOwner: {ID: testOwner, TelegramID: 5550001}}}
	f.svc = NewNotificationService(logger.NewNop(), runner, users, f.logs, f.notifier, -100200300)
	return f
}

func TestDispatchPayload_EmptySelectionRejectedWithoutNetwork(t *testing.T) {
	f := newNotificationFixture()

	err := f.svc.DispatchPayload(context.Background(), dto.NotificationPayload{BatchID: "b", OwnerID: testOwner})

	assert.ErrorIs(t, err, dto.ErrEmptySelection)
	f.notifier.AssertNotCalled(t, "SendMessageUser", mock.Anything, mock.Anything)
	assert.Empty(t, f.logs.logs)
}

func TestDispatch_SendsToOwnerAndLogs(t *testing.T) {
	f := newNotificationFixture()
	require.NoError(t, f.results.Save(context.Background(), sampleBatchResult(), time.Hour))
	f.notifier.On("SendMessageUser", mock.AnythingOfType("string"), int64(5550001)).Return(nil).Once()

	payload, err := f.svc.Dispatch(context.Background(), testOwner, "batch-1", dto.NotificationOverrides{Comment: "nice"})
	require.NoError(t, err)

	f.notifier.AssertExpectations(t)
	assert.Equal(t, []uint{1, 3}, payload.SelectedPostIDs)
	require.Len(t, f.logs.logs, 1)
	assert.Equal(t, "batch-1", f.logs.logs[0].BatchID)
	assert.Equal(t, []int64{1, 3}, []int64(f.logs.logs[0].PostIDs))
	assert.Equal(t, common.RecipientScopeOwner, f.logs.logs[0].RecipientScope)
}

func TestDispatch_ChannelScope(t *testing.T) {
	f := newNotificationFixture()
	require.NoError(t, f.results.Save(context.Background(), sampleBatchResult(), time.Hour))
	f.notifier.On("SendMessageUser", mock.AnythingOfType("string"), int64(-100200300)).Return(nil).Once()

	_, err := f.svc.Dispatch(context.Background(), testOwner, "batch-1", dto.NotificationOverrides{RecipientScope: common.RecipientScopeChannel})
	require.NoError(t, err)
	f.notifier.AssertExpectations(t)
}

func TestDispatch_InvalidScope(t *testing.T) {
	f := newNotificationFixture()
	require.NoError(t, f.results.Save(context.Background(), sampleBatchResult(), time.Hour))

	_, err := f.svc.Dispatch(context.Background(), testOwner, "batch-1", dto.NotificationOverrides{RecipientScope: "everyone"})
	assert.ErrorIs(t, err, dto.ErrInvalidScope)
	f.notifier.AssertNotCalled(t, "SendMessageUser", mock.Anything, mock.Anything)
}

func TestDispatch_SendFailureIsReturned(t *testing.T) {
	f := newNotificationFixture()
	require.NoError(t, f.results.Save(context.Background(), sampleBatchResult(), time.Hour))
	f.notifier.On("SendMessageUser", mock.Anything, mock.Anything).Return(errors.New("bot blocked"))

	_, err := f.svc.Dispatch(context.Background(), testOwner, "batch-1", dto.NotificationOverrides{})
	assert.Error(t, err)
	assert.Empty(t, f.logs.logs)
}

func TestPreview_UnknownBatch(t *testing.T) {
	f := newNotificationFixture()

	_, err := f.svc.Preview(context.Background(), testOwner, "nope", dto.NotificationOverrides{})
	assert.ErrorIs(t, err, dto.ErrBatchNotFound)
}
