package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/config"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/internal/monitor/repository"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchRunner re-evaluates all open posts of one owner.
type BatchRunner interface {
	RunBatch(ctx context.Context, param dto.RunBatchParam) (*dto.BatchResult, error)
	CancelBatch(ctx context.Context, ownerID uint) error
	GetBatchResult(ctx context.Context, ownerID uint, batchID string) (*dto.BatchResult, error)
}

type batchRunner struct {
	cfg            config.Monitor
	log            *logger.Logger
	evaluator      PriceEvaluator
	postRepo       repository.PostRepository
	priceSource    repository.YahooFinanceRepository
	usageLedger    UsageLedger
	lockRepo       repository.BatchLockRepository
	resultRepo     repository.BatchResultRepository
	eventPublisher repository.PostEventPublisher
	now            func() time.Time

	mu      sync.Mutex
	running map[uint]context.CancelFunc
}

// NewBatchRunner creates a new BatchRunner.
func NewBatchRunner(
	cfg config.Monitor,
	log *logger.Logger,
	evaluator PriceEvaluator,
	postRepo repository.PostRepository,
	priceSource repository.YahooFinanceRepository,
	usageLedger UsageLedger,
	lockRepo repository.BatchLockRepository,
	resultRepo repository.BatchResultRepository,
	eventPublisher repository.PostEventPublisher,
) BatchRunner {
	if cfg.MaxConcurrentQuotes <= 0 {
		cfg.MaxConcurrentQuotes = 1
	}
	if cfg.PerPostTimeout <= 0 {
		cfg.PerPostTimeout = 20 * time.Second
	}
	if cfg.BatchLockTTL <= 0 {
		cfg.BatchLockTTL = 10 * time.Minute
	}
	return &batchRunner{
		cfg:            cfg,
		log:            log,
		evaluator:      evaluator,
		postRepo:       postRepo,
		priceSource:    priceSource,
		usageLedger:    usageLedger,
		lockRepo:       lockRepo,
		resultRepo:     resultRepo,
		eventPublisher: eventPublisher,
		now:            time.Now,
		running:        make(map[uint]context.CancelFunc),
	}
}

func (r *batchRunner) RunBatch(ctx context.Context, param dto.RunBatchParam) (*dto.BatchResult, error) {
	if param.Trigger == "" {
		param.Trigger = dto.TriggerUser
	}
	batchID := uuid.NewString()
	ctx = logger.WithBatchID(ctx, batchID)
	fields := []zap.Field{
		logger.IntField("owner_id", int(param.OwnerID)),
		logger.StringField("trigger", string(param.Trigger)),
	}

	batchCtx, cancel, err := r.register(ctx, param.OwnerID)
	if err != nil {
		return nil, err
	}
	defer r.unregister(param.OwnerID, cancel)

	token, err := r.lockRepo.Acquire(ctx, param.OwnerID, r.cfg.BatchLockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		releaseCtx := context.WithoutCancel(ctx)
		if err := r.lockRepo.Release(releaseCtx, param.OwnerID, token); err != nil {
			r.log.ErrorContext(ctx, "Failed to release batch lock", append(fields, logger.ErrorField(err))...)
		}
		if err := r.lockRepo.ClearCancel(releaseCtx, param.OwnerID); err != nil {
			r.log.ErrorContext(ctx, "Failed to clear batch cancel flag", append(fields, logger.ErrorField(err))...)
		}
	}()
	stopRefresh := r.keepLock(ctx, param.OwnerID, token, fields)
	defer stopRefresh()

	if err := r.lockRepo.ClearCancel(ctx, param.OwnerID); err != nil {
		r.log.WarnContext(ctx, "Failed to clear stale batch cancel flag", append(fields, logger.ErrorField(err))...)
	}

	if param.Trigger == dto.TriggerUser {
		remaining, err := r.usageLedger.Remaining(ctx, param.OwnerID)
		if err != nil {
			return nil, err
		}
		if remaining <= 0 {
			r.log.InfoContext(ctx, "Price check quota exceeded", fields...)
			return nil, dto.ErrQuotaExceeded
		}
	}

	posts, err := r.postRepo.ListOpenPosts(ctx, param.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open posts: %w", err)
	}

	result := &dto.BatchResult{
		BatchID:   batchID,
		OwnerID:   param.OwnerID,
		Trigger:   param.Trigger,
		Status:    dto.BatchStatusCompleted,
		StartedAt: r.now(),
	}
	r.log.InfoContext(ctx, "Starting price check batch", append(fields, logger.IntField("posts", len(posts)))...)

	postResults, started := r.evaluatePosts(ctx, batchCtx, param.OwnerID, posts)
	if started < len(posts) {
		result.Status = dto.BatchStatusCancelled
	}
	aggregate(result, postResults, started, len(posts))
	result.FinishedAt = r.now()

	// remaining work must finish even if the caller goes away now
	finishCtx := context.WithoutCancel(ctx)
	if result.Cancelled() {
		r.log.InfoContext(ctx, "Price check batch cancelled", append(fields,
			logger.IntField("checked", result.CheckedPosts),
			logger.IntField("pending", result.PendingPosts))...)
	} else if param.Trigger == dto.TriggerUser {
		if err := r.usageLedger.Consume(finishCtx, param.OwnerID, batchID); err != nil {
			r.log.ErrorContext(ctx, "Failed to consume usage", append(fields, logger.ErrorField(err))...)
		}
	}

	r.publishEvents(finishCtx, result, posts)
	if err := r.resultRepo.Save(finishCtx, result, r.cfg.ResultTTL); err != nil {
		r.log.ErrorContext(ctx, "Failed to save batch result", append(fields, logger.ErrorField(err))...)
	}

	r.log.InfoContext(ctx, "Price check batch finished", append(fields,
		logger.StringField("status", string(result.Status)),
		logger.IntField("checked", result.CheckedPosts),
		logger.IntField("updated", result.UpdatedPosts),
		logger.IntField("failed", result.FailedPosts),
		logger.IntField("skipped", result.SkippedPosts))...)

	return result, nil
}

// evaluatePosts fans out over posts with at most MaxConcurrentQuotes in flight.
// Cancellation is checked before each post starts; started posts always run to completion.
func (r *batchRunner) evaluatePosts(ctx context.Context, batchCtx context.Context, ownerID uint, posts []entity.Post) ([]*dto.PostResult, int) {
	var wg sync.WaitGroup
	results := make([]*dto.PostResult, len(posts))
	semaphore := make(chan struct{}, r.cfg.MaxConcurrentQuotes)
	started := 0

	for i := range posts {
		if !r.shouldContinue(batchCtx, ownerID) {
			break
		}
		select {
		case semaphore <- struct{}{}:
		case <-batchCtx.Done():
		}
		if batchCtx.Err() != nil || !r.shouldContinue(batchCtx, ownerID) {
			if batchCtx.Err() == nil {
				<-semaphore
			}
			break
		}

		started++
		wg.Add(1)
		idx := i
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-semaphore }()
			res := r.processPost(ctx, posts[idx])
			results[idx] = &res
		})
	}
	wg.Wait()

	return results, started
}

func (r *batchRunner) shouldContinue(ctx context.Context, ownerID uint) bool {
	if !utils.ShouldContinue(ctx, r.log) {
		return false
	}
	cancelled, err := r.lockRepo.IsCancelRequested(ctx, ownerID)
	if err != nil {
		r.log.WarnContext(ctx, "Failed to read batch cancel flag", logger.ErrorField(err))
		return true
	}
	return !cancelled
}

func (r *batchRunner) processPost(ctx context.Context, post entity.Post) dto.PostResult {
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.PerPostTimeout)
	defer cancel()

	fields := []zap.Field{
		logger.IntField("post_id", int(post.ID)),
		logger.StringField("symbol", post.Symbol),
		logger.StringField("exchange", post.Exchange),
	}

	quote, quoteErr := r.priceSource.GetQuote(postCtx, dto.GetQuoteParam{Symbol: post.Symbol, Exchange: post.Exchange})
	if quoteErr != nil {
		r.log.WarnContext(ctx, "Failed to get quote", append(fields, logger.ErrorField(quoteErr))...)
		quote = nil
	}

	eval, err := r.evaluator.Evaluate(post, quote, r.now())
	if err != nil {
		return eval.Result
	}
	if quoteErr != nil {
		eval.Result.Error = quoteErr.Error()
	}
	if !eval.Changed {
		return eval.Result
	}

	err = r.postRepo.ConditionalUpdate(postCtx, &eval.Post, post.Version)
	if err == nil {
		return eval.Result
	}
	if !errors.Is(err, dto.ErrPersistConflict) {
		r.log.ErrorContext(ctx, "Failed to update post", append(fields, logger.ErrorField(err))...)
		return failedResult(eval.Result, err)
	}

	r.log.InfoContext(ctx, "Post changed concurrently, retrying once", fields...)
	fresh, err := r.postRepo.GetByID(postCtx, post.ID)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to re-read post", append(fields, logger.ErrorField(err))...)
		return failedResult(eval.Result, err)
	}

	retry, err := r.evaluator.Evaluate(*fresh, quote, r.now())
	if err != nil || !retry.Changed {
		return retry.Result
	}
	if err := r.postRepo.ConditionalUpdate(postCtx, &retry.Post, fresh.Version); err != nil {
		if errors.Is(err, dto.ErrPersistConflict) {
			r.log.WarnContext(ctx, "Post still conflicting, skipped", fields...)
			retry.Result.Code = dto.PostResultPersistConflict
			retry.Result.Error = err.Error()
			return retry.Result
		}
		return failedResult(retry.Result, err)
	}
	return retry.Result
}

func failedResult(result dto.PostResult, err error) dto.PostResult {
	result.Code = dto.PostResultFailed
	result.Error = err.Error()
	result.HistoryAppended = false
	result.PriceUpdated = false
	result.Changes = dto.PostChanges{}
	result.CurrentPrice = result.PreviousPrice
	return result
}

func aggregate(result *dto.BatchResult, postResults []*dto.PostResult, started int, total int) {
	result.CheckedPosts = started
	result.PendingPosts = total - started
	result.Results = make([]dto.PostResult, 0, started)
	for i := 0; i < started; i++ {
		res := postResults[i]
		if res == nil {
			res = &dto.PostResult{Code: dto.PostResultFailed, Error: "evaluation aborted"}
		}
		switch res.Code {
		case dto.PostResultUpdated:
			result.UpdatedPosts++
		case dto.PostResultPriceUnavailable, dto.PostResultFailed:
			result.FailedPosts++
		case dto.PostResultPersistConflict:
			result.SkippedPosts++
		case dto.PostResultClosedSkipped:
			result.ClosedPostsSkipped++
		}
		result.Results = append(result.Results, *res)
	}
}

func (r *batchRunner) publishEvents(ctx context.Context, result *dto.BatchResult, posts []entity.Post) {
	owners := make(map[uint]uint, len(posts))
	for _, p := range posts {
		owners[p.ID] = p.OwnerID
	}

	var events []dto.PostStatusEvent
	for _, res := range result.Results {
		if !res.Changes.Any() {
			continue
		}
		events = append(events, dto.PostStatusEvent{
			EventType:    common.EventTypePostStatusChanged,
			PostID:       res.PostID,
			OwnerID:      owners[res.PostID],
			BatchID:      result.BatchID,
			Symbol:       res.Symbol,
			Status:       res.Status,
			Changes:      res.Changes,
			CurrentPrice: res.CurrentPrice,
			Timestamp:    result.FinishedAt,
		})
	}
	if err := r.eventPublisher.Publish(ctx, events); err != nil {
		r.log.ErrorContext(ctx, "Failed to publish post status events", logger.ErrorField(err), logger.IntField("events", len(events)))
	}
}

func (r *batchRunner) CancelBatch(ctx context.Context, ownerID uint) error {
	r.mu.Lock()
	cancel, ok := r.running[ownerID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	// other replicas only see the flag
	if err := r.lockRepo.RequestCancel(ctx, ownerID, r.cfg.BatchLockTTL); err != nil {
		return fmt.Errorf("failed to request batch cancel: %w", err)
	}
	r.log.InfoContext(ctx, "Batch cancel requested", logger.IntField("owner_id", int(ownerID)), zap.Bool("local", ok))
	return nil
}

func (r *batchRunner) GetBatchResult(ctx context.Context, ownerID uint, batchID string) (*dto.BatchResult, error) {
	return r.resultRepo.Get(ctx, ownerID, batchID)
}

func (r *batchRunner) register(ctx context.Context, ownerID uint) (context.Context, context.CancelFunc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.running[ownerID]; ok {
		return nil, nil, dto.ErrAlreadyRunning
	}
	var (
		batchCtx context.Context
		cancel   context.CancelFunc
	)
	if r.cfg.BatchTimeout > 0 {
		// posts not started before the deadline are reported as pending
		batchCtx, cancel = context.WithTimeout(ctx, r.cfg.BatchTimeout)
	} else {
		batchCtx, cancel = context.WithCancel(ctx)
	}
	r.running[ownerID] = cancel
	return batchCtx, cancel, nil
}

// keepLock extends the owner lock every third of its TTL until the returned func is called,
// so a batch that runs longer than the TTL keeps exclusive ownership.
func (r *batchRunner) keepLock(ctx context.Context, ownerID uint, token string, fields []zap.Field) func() {
	refreshCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	utils.GoSafe(func() {
		defer close(done)
		ticker := time.NewTicker(r.cfg.BatchLockTTL / 3)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				if err := r.lockRepo.Extend(refreshCtx, ownerID, token, r.cfg.BatchLockTTL); err != nil && refreshCtx.Err() == nil {
					r.log.WarnContext(refreshCtx, "Failed to extend batch lock", append(fields[:len(fields):len(fields)], logger.ErrorField(err))...)
				}
			}
		}
	})
	return func() {
		cancel()
		<-done
	}
}

func (r *batchRunner) unregister(ownerID uint, cancel context.CancelFunc) {
	cancel()
	r.mu.Lock()
	delete(r.running, ownerID)
	r.mu.Unlock()
}
