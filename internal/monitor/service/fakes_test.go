package service

import (
	"context"
	"sync"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"
)

type fakePostRepo struct {
	mu        sync.Mutex
	posts     map[uint]entity.Post
	order     []uint
	conflicts map[uint]int
	listCalls int
	updates   int
}

func newFakePostRepo(posts ...entity.Post) *fakePostRepo {
	r := &fakePostRepo{posts: map[uint]entity.Post{}, conflicts: map[uint]int{}}
	for _, p := range posts {
		r.posts[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *fakePostRepo) ListOpenPosts(_ context.Context, ownerID uint) ([]entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var posts []entity.Post
	for _, id := range r.order {
		p := r.posts[id]
		if p.OwnerID == ownerID && !p.Closed {
			posts = append(posts, clonePost(p))
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ListOwnersWithOpenPosts(context.Context) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[uint]bool{}
	var owners []uint
	for _, id := range r.order {
		p := r.posts[id]
		if !p.Closed && !seen[p.OwnerID] {
			seen[p.OwnerID] = true
			owners = append(owners, p.OwnerID)
		}
	}
	return owners, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id uint) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, dto.ErrPostNotFound
	}
	clone := clonePost(p)
	return &clone, nil
}

func (r *fakePostRepo) ConditionalUpdate(_ context.Context, post *entity.Post, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.posts[post.ID]
	if r.conflicts[post.ID] > 0 {
		// someone else wrote the post in between
		r.conflicts[post.ID]--
		stored.Version++
		r.posts[post.ID] = stored
		return dto.ErrPersistConflict
	}
	if stored.Version != expectedVersion || stored.Closed {
		return dto.ErrPersistConflict
	}
	post.Version = expectedVersion + 1
	r.posts[post.ID] = clonePost(*post)
	r.updates++
	return nil
}

func (r *fakePostRepo) get(id uint) entity.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id]
}

type fakePriceSource struct {
	mu       sync.Mutex
	quotes   map[string]*dto.Quote
	block    chan struct{}
	started  chan string
	inFlight int
	maxSeen  int
	calls    int
}

func newFakePriceSource(quotes map[string]*dto.Quote) *fakePriceSource {
	return &fakePriceSource{quotes: quotes}
}

func (s *fakePriceSource) GetQuote(ctx context.Context, param dto.GetQuoteParam) (*dto.Quote, error) {
	s.mu.Lock()
	s.calls++
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.started != nil {
		s.started <- param.Symbol
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		time.Sleep(time.Millisecond)
	}

	q, ok := s.quotes[param.Symbol]
	if !ok {
		return nil, dto.ErrPriceUnavailable
	}
	clone := *q
	return &clone, nil
}

type fakeUsageLedger struct {
	mu        sync.Mutex
	remaining int
	consumed  []string
}

func (l *fakeUsageLedger) Remaining(context.Context, uint) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining, nil
}

func (l *fakeUsageLedger) Consume(_ context.Context, _ uint, batchID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.consumed = append(l.consumed, batchID)
	l.remaining--
	return nil
}

func (l *fakeUsageLedger) Usage(_ context.Context, ownerID uint) (*dto.UsageResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &dto.UsageResponse{OwnerID: ownerID, Remaining: l.remaining, Used: len(l.consumed)}, nil
}

type fakeLockRepo struct {
	mu        sync.Mutex
	held      map[uint]string
	cancelled map[uint]bool
	releases  int
	extends   int
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{held: map[uint]string{}, cancelled: map[uint]bool{}}
}

func (r *fakeLockRepo) Acquire(_ context.Context, ownerID uint, _ time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.held[ownerID]; ok {
		return "", dto.ErrAlreadyRunning
	}
	r.held[ownerID] = "token"
	return "token", nil
}

func (r *fakeLockRepo) Extend(_ context.Context, ownerID uint, token string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[ownerID] != token {
		return dto.ErrLockLost
	}
	r.extends++
	return nil
}

func (r *fakeLockRepo) extendCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.extends
}

func (r *fakeLockRepo) Release(_ context.Context, ownerID uint, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[ownerID] == token {
		delete(r.held, ownerID)
	}
	r.releases++
	return nil
}

func (r *fakeLockRepo) RequestCancel(_ context.Context, ownerID uint, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled[ownerID] = true
	return nil
}

func (r *fakeLockRepo) IsCancelRequested(_ context.Context, ownerID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled[ownerID], nil
}

func (r *fakeLockRepo) ClearCancel(_ context.Context, ownerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancelled, ownerID)
	return nil
}

func (r *fakeLockRepo) isHeld(ownerID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.held[ownerID]
	return ok
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[string]*dto.BatchResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: map[string]*dto.BatchResult{}}
}

func (r *fakeResultRepo) Save(_ context.Context, result *dto.BatchResult, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.BatchID] = result
	return nil
}

func (r *fakeResultRepo) Get(_ context.Context, ownerID uint, batchID string) (*dto.BatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[batchID]
	if !ok || res.OwnerID != ownerID {
		return nil, dto.ErrBatchNotFound
	}
	return res, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []dto.PostStatusEvent
}

func (p *fakePublisher) Publish(_ context.Context, events []dto.PostStatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *fakePublisher) Close() error { return nil }
