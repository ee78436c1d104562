package service

import (
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/utils"
)

// Evaluation is the decision for one post: the snapshot to persist and the report line.
// Changed is false when nothing needs to be written.
type Evaluation struct {
	Post    entity.Post
	Result  dto.PostResult
	Changed bool
}

// PriceEvaluator decides a post's next state from a fresh quote. It has no side effects.
type PriceEvaluator interface {
	Evaluate(post entity.Post, quote *dto.Quote, now time.Time) (Evaluation, error)
}

// EvaluatorOptions tunes the evaluator.
type EvaluatorOptions struct {
	// CloseOnResolve closes a post as soon as its target or stop-loss fires.
	CloseOnResolve bool
}

type priceEvaluator struct {
	opts EvaluatorOptions
}

// NewPriceEvaluator creates a new PriceEvaluator.
func NewPriceEvaluator(opts EvaluatorOptions) PriceEvaluator {
	return &priceEvaluator{opts: opts}
}

// Evaluate applies a quote to a post. A nil quote means the price could not be fetched.
// Closed posts are rejected with dto.ErrPostClosed and left untouched.
func (e *priceEvaluator) Evaluate(post entity.Post, quote *dto.Quote, now time.Time) (Evaluation, error) {
	result := newPostResult(&post)

	if post.Closed {
		result.Code = dto.PostResultClosedSkipped
		result.Error = dto.ErrPostClosed.Error()
		return Evaluation{Post: post, Result: result}, dto.ErrPostClosed
	}

	if quote == nil {
		result.Code = dto.PostResultPriceUnavailable
		result.Error = dto.ErrPriceUnavailable.Error()
		return Evaluation{Post: post, Result: result}, nil
	}

	result.QuoteDate = quote.Date
	updated := clonePost(post)
	latest := post.LatestPriceCheck()

	if post.HasPriceCheck(quote.Date) {
		// same bar again: only a late close revision of the newest bar moves current_price
		if latest != nil && latest.Date == quote.Date && quote.Close != post.CurrentPrice {
			updated.CurrentPrice = quote.Close
			updated.LastPriceCheck = utils.ToPointer(now)
			fillResult(&result, &updated)
			result.Code = dto.PostResultUpdated
			result.PriceUpdated = true
			return Evaluation{Post: updated, Result: result, Changed: true}, nil
		}
		result.Code = dto.PostResultUnchanged
		return Evaluation{Post: post, Result: result}, nil
	}

	if latest != nil && quote.Date < latest.Date {
		result.Code = dto.PostResultStaleQuote
		return Evaluation{Post: post, Result: result}, nil
	}

	updated.PriceChecks = append(updated.PriceChecks, entity.PriceCheck{
		Date:   quote.Date,
		Open:   quote.Open,
		High:   quote.High,
		Low:    quote.Low,
		Close:  quote.Close,
		Volume: quote.Volume,
	})
	updated.CurrentPrice = quote.Close
	updated.LastPriceCheck = utils.ToPointer(now)
	if updated.Country == "" {
		updated.Country = utils.CountryFromTicker(utils.ProviderTicker(post.Symbol, post.Exchange))
	}

	result.HistoryAppended = true
	result.PriceUpdated = quote.Close != post.CurrentPrice
	result.Changes = e.applyThresholds(&updated, quote, now)
	result.Code = dto.PostResultUpdated
	fillResult(&result, &updated)

	return Evaluation{Post: updated, Result: result, Changed: true}, nil
}

// applyThresholds checks target first, then stop-loss, against the bar's high/low.
// A post that already resolved keeps its status.
func (e *priceEvaluator) applyThresholds(post *entity.Post, quote *dto.Quote, now time.Time) dto.PostChanges {
	var changes dto.PostChanges
	if post.Resolved() {
		return changes
	}

	hitDate := now
	if t, err := utils.ParseDateKey(quote.Date); err == nil {
		hitDate = t
	}

	up := post.Direction() == entity.DirectionUp
	high, low := quote.HighOrClose(), quote.LowOrClose()

	switch {
	case post.TargetPrice != nil && ((up && high >= *post.TargetPrice) || (!up && low <= *post.TargetPrice)):
		post.TargetReached = true
		post.TargetReachedDate = utils.ToPointer(hitDate)
		post.Status = entity.PostStatusSuccess
		changes.TargetReached = true
	case post.StopLossPrice != nil && ((up && low <= *post.StopLossPrice) || (!up && high >= *post.StopLossPrice)):
		post.StopLossTriggered = true
		post.StopLossTriggeredDate = utils.ToPointer(hitDate)
		post.Status = entity.PostStatusLoss
		changes.StopLossTriggered = true
	default:
		return changes
	}

	if e.opts.CloseOnResolve {
		post.Closed = true
		post.ClosedDate = utils.ToPointer(hitDate)
		changes.Closed = true
	}
	return changes
}

func newPostResult(post *entity.Post) dto.PostResult {
	result := dto.PostResult{
		PostID:        post.ID,
		Symbol:        post.Symbol,
		Exchange:      post.Exchange,
		CompanyName:   post.CompanyName,
		PreviousPrice: post.CurrentPrice,
		InitialPrice:  post.InitialPrice,
		TargetPrice:   post.TargetPrice,
		StopLossPrice: post.StopLossPrice,
	}
	fillResult(&result, post)
	return result
}

func fillResult(result *dto.PostResult, post *entity.Post) {
	result.Status = post.Status
	result.CurrentPrice = post.CurrentPrice
	result.PercentChange = PercentChange(post.InitialPrice, post.CurrentPrice)
	result.ProgressToTarget = ProgressToTarget(post.InitialPrice, post.CurrentPrice, post.TargetPrice)
}

func clonePost(post entity.Post) entity.Post {
	clone := post
	clone.PriceChecks = make([]entity.PriceCheck, len(post.PriceChecks), len(post.PriceChecks)+1)
	copy(clone.PriceChecks, post.PriceChecks)
	if clone.Status == "" {
		clone.Status = entity.PostStatusOpen
	}
	return clone
}
