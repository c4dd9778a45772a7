package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

type memParticipant struct {
	removed bool
	seq     int
}

// memoryRepo mimics the Postgres store: one mutex plays the role of the
// giveaway row lock, and Settle holds it from claim to commit.
type memoryRepo struct {
	mu           sync.Mutex
	nextID       int64
	nextRewardID int64
	seq          int
	giveaways    map[int64]*models.Giveaway
	rewards      map[int64][]models.RewardSlot
	participants map[int64]map[string]*memParticipant
	results      map[int64][]models.SlotWinners

	settleCalls int
	// settleErrs are returned by successive Settle calls before doing any work.
	settleErrs []error
	// settledElsewhere ends the giveaway alongside the first settleErrs
	// entry, like a second caller winning the row lock meanwhile.
	settledElsewhere bool
	// commitThenFail makes the next Settle commit and then report an error.
	commitThenFail error
	countErr       error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		giveaways:    make(map[int64]*models.Giveaway),
		rewards:      make(map[int64][]models.RewardSlot),
		participants: make(map[int64]map[string]*memParticipant),
		results:      make(map[int64][]models.SlotWinners),
	}
}

func (r *memoryRepo) Create(_ context.Context, g *models.Giveaway, rewards []models.RewardDraft) ([]models.RewardSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(rewards) == 0 {
		return nil, errors.New("giveaway needs at least one reward")
	}

	r.nextID++
	g.ID = r.nextID
	g.CreatedAt = time.Now()
	g.TotalRewards = 0

	slots := make([]models.RewardSlot, len(rewards))
	for i, rw := range rewards {
		r.nextRewardID++
		slots[i] = models.RewardSlot{ID: r.nextRewardID, GiveawayID: g.ID, Position: i, Label: rw.Label, Amount: rw.Amount}
		g.TotalRewards += rw.Amount
	}

	stored := *g
	r.giveaways[g.ID] = &stored
	r.rewards[g.ID] = slots
	r.participants[g.ID] = make(map[string]*memParticipant)
	return append([]models.RewardSlot(nil), slots...), nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(id)
}

func (r *memoryRepo) getLocked(id int64) (*models.Giveaway, error) {
	g, ok := r.giveaways[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *memoryRepo) GetByMessage(_ context.Context, guildID, messageID string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, g := range r.giveaways {
		if g.GuildID == guildID && g.MessageID == messageID && messageID != "" {
			return r.getLocked(id)
		}
	}
	return nil, repository.ErrGiveawayNotFound
}

func (r *memoryRepo) SetMessageID(_ context.Context, id int64, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	g.MessageID = messageID
	return nil
}

func (r *memoryRepo) DeleteDraft(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok || g.MessageID != "" || g.IsEnded() {
		return repository.ErrGiveawayNotFound
	}
	delete(r.giveaways, id)
	delete(r.rewards, id)
	delete(r.participants, id)
	return nil
}

func (r *memoryRepo) GetRewards(_ context.Context, giveawayID int64) ([]models.RewardSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.RewardSlot(nil), r.rewards[giveawayID]...), nil
}

func (r *memoryRepo) openLocked(giveawayID int64) error {
	g, ok := r.giveaways[giveawayID]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	if g.IsEnded() {
		return repository.ErrGiveawayEnded
	}
	return nil
}

func (r *memoryRepo) AddParticipant(_ context.Context, giveawayID int64, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.openLocked(giveawayID); err != nil {
		return false, err
	}

	p, ok := r.participants[giveawayID][userID]
	if ok && !p.removed {
		return false, nil
	}
	r.seq++
	r.participants[giveawayID][userID] = &memParticipant{seq: r.seq}
	return true, nil
}

func (r *memoryRepo) RemoveParticipant(_ context.Context, giveawayID int64, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.openLocked(giveawayID); err != nil {
		return false, err
	}

	p, ok := r.participants[giveawayID][userID]
	if !ok || p.removed {
		return false, nil
	}
	p.removed = true
	return true, nil
}

func (r *memoryRepo) activeLocked(giveawayID int64) []string {
	type entry struct {
		id  string
		seq int
	}
	var entries []entry
	for id, p := range r.participants[giveawayID] {
		if !p.removed {
			entries = append(entries, entry{id, p.seq})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.id)
	}
	return out
}

func (r *memoryRepo) GetActiveParticipants(_ context.Context, giveawayID int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked(giveawayID), nil
}

func (r *memoryRepo) CountActiveParticipants(_ context.Context, giveawayID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.activeLocked(giveawayID)), nil
}

func (r *memoryRepo) Settle(_ context.Context, giveawayID int64, allocate models.AllocateFunc) (*models.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settleCalls++
	if len(r.settleErrs) > 0 {
		err := r.settleErrs[0]
		r.settleErrs = r.settleErrs[1:]
		if r.settledElsewhere {
			r.settledElsewhere = false
			if g, ok := r.giveaways[giveawayID]; ok {
				now := time.Now()
				g.EndedAt = &now
				r.results[giveawayID] = []models.SlotWinners{}
			}
		}
		return nil, err
	}

	g, ok := r.giveaways[giveawayID]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	if g.IsEnded() {
		return nil, repository.ErrAlreadyEnded
	}

	results, err := allocate(r.rewards[giveawayID], r.activeLocked(giveawayID))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	g.EndedAt = &now
	r.results[giveawayID] = results

	if r.commitThenFail != nil {
		err := r.commitThenFail
		r.commitThenFail = nil
		return nil, err
	}

	cp := *g
	return &models.Settlement{Giveaway: &cp, Results: results}, nil
}

func (r *memoryRepo) GetResults(_ context.Context, giveawayID int64) (*models.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.getLocked(giveawayID)
	if err != nil {
		return nil, err
	}
	if !g.IsEnded() {
		return nil, repository.ErrNotEnded
	}
	return &models.Settlement{Giveaway: g, Results: r.results[giveawayID]}, nil
}

type statusCall struct {
	giveawayID   int64
	participants int
}

type fakeAnnouncer struct {
	mu          sync.Mutex
	statuses    []statusCall
	published   []*models.Settlement
	statusErr   error
	publishErrs []error
}

func (a *fakeAnnouncer) UpdateStatus(_ context.Context, g *models.Giveaway, participants int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statuses = append(a.statuses, statusCall{g.ID, participants})
	return a.statusErr
}

func (a *fakeAnnouncer) PublishResults(_ context.Context, s *models.Settlement) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.published = append(a.published, s)
	if len(a.publishErrs) > 0 {
		err := a.publishErrs[0]
		a.publishErrs = a.publishErrs[1:]
		return err
	}
	return nil
}

func (a *fakeAnnouncer) publishCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.published)
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []int64
	err      error
}

func (q *fakeQueue) Enqueue(_ context.Context, giveawayID int64, _ int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, giveawayID)
	return nil
}

type fakeLock struct {
	mu       sync.Mutex
	held     map[int64]bool
	err      error
	released int
}

func (l *fakeLock) Acquire(_ context.Context, giveawayID int64, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held == nil {
		l.held = make(map[int64]bool)
	}
	if l.held[giveawayID] {
		return nil, repository.ErrAlreadyLocked
	}
	l.held[giveawayID] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, giveawayID)
		l.released++
		return nil
	}, nil
}
