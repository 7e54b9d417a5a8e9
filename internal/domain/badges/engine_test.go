package badges

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gigrate/internal/domain/stats"
)

type fakeStore struct {
	mu      sync.Mutex
	catalog []Badge
	earned  map[int64]map[int64]struct{} // userID -> badgeIDs

	catalogErr error
	grantErr   map[int64]error // badgeID -> error
}

func newFakeStore(catalog []Badge) *fakeStore {
	return &fakeStore{
		catalog: catalog,
		earned:  make(map[int64]map[int64]struct{}),
	}
}

func (f *fakeStore) Catalog(ctx context.Context) ([]Badge, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeStore) GetByID(ctx context.Context, badgeID int64) (*Badge, error) {
	for _, b := range f.catalog {
		if b.ID == badgeID {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) EarnedByUser(ctx context.Context, userID int64) ([]UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []UserBadge
	for id := range f.earned[userID] {
		out = append(out, UserBadge{UserID: userID, BadgeID: id})
	}
	return out, nil
}

func (f *fakeStore) EarnedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[int64]struct{}, len(f.earned[userID]))
	for id := range f.earned[userID] {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Grant mimics the ON CONFLICT DO NOTHING insert: second grant of the same
// pair reports false, never an error.
func (f *fakeStore) Grant(ctx context.Context, userID, badgeID int64) (bool, error) {
	if err := f.grantErr[badgeID]; err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.earned[userID] == nil {
		f.earned[userID] = make(map[int64]struct{})
	}
	if _, held := f.earned[userID][badgeID]; held {
		return false, nil
	}
	f.earned[userID][badgeID] = struct{}{}
	return true, nil
}

func (f *fakeStore) RecentlyActiveUsers(ctx context.Context, limit int) ([]int64, error) {
	return nil, nil
}

type fakeProjector struct {
	snap stats.Snapshot
	err  error
}

func (f *fakeProjector) Project(ctx context.Context, userID int64) (stats.Snapshot, error) {
	return f.snap, f.err
}

func testCatalog() []Badge {
	return []Badge{
		{ID: 1, Name: "Critic Beginner", Type: TypeReviewCount, Threshold: 5},
		{ID: 2, Name: "Critic", Type: TypeReviewCount, Threshold: 25},
		{ID: 3, Name: "Critic Legend", Type: TypeReviewCount, Threshold: 100},
		{ID: 4, Name: "Venue Explorer", Type: TypeVenueExplorer, Threshold: 3},
		{ID: 5, Name: "Music Lover", Type: TypeMusicLover, Threshold: 3},
		{ID: 6, Name: "Crowd Favorite", Type: TypeHelpfulness, Threshold: 10},
	}
}

func TestEvaluateAndAwardGrantsEligible(t *testing.T) {
	store := newFakeStore(testCatalog())
	engine := NewEngine(store, &fakeProjector{snap: stats.Snapshot{Reviews: 5}})

	granted, err := engine.EvaluateAndAward(context.Background(), 42)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(granted) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(granted))
	}
	if granted[0].Name != "Critic Beginner" {
		t.Fatalf("expected Critic Beginner, got %q", granted[0].Name)
	}
}

func TestEvaluateAndAwardIdempotent(t *testing.T) {
	store := newFakeStore(testCatalog())
	engine := NewEngine(store, &fakeProjector{snap: stats.Snapshot{Reviews: 5, DistinctVenues: 3}})

	first, err := engine.EvaluateAndAward(context.Background(), 42)
	if err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 grants on first pass, got %d", len(first))
	}

	second, err := engine.EvaluateAndAward(context.Background(), 42)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no grants on second pass, got %d", len(second))
	}
}

func TestEvaluateAndAwardGrantsAllNewTiers(t *testing.T) {
	store := newFakeStore(testCatalog())
	engine := NewEngine(store, &fakeProjector{snap: stats.Snapshot{Reviews: 50}})

	granted, err := engine.EvaluateAndAward(context.Background(), 7)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(granted) != 2 {
		t.Fatalf("expected both review-count tiers, got %d grants", len(granted))
	}
	names := map[string]bool{}
	for _, b := range granted {
		names[b.Name] = true
	}
	if !names["Critic Beginner"] || !names["Critic"] {
		t.Fatalf("expected Critic Beginner and Critic, got %v", names)
	}
}

func TestEvaluateAndAwardConcurrent(t *testing.T) {
	store := newFakeStore(testCatalog())
	engine := NewEngine(store, &fakeProjector{snap: stats.Snapshot{Reviews: 5}})

	const passes = 8
	results := make(chan int, passes)
	var wg sync.WaitGroup
	for i := 0; i < passes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted, err := engine.EvaluateAndAward(context.Background(), 42)
			if err != nil {
				t.Errorf("evaluate: %v", err)
				return
			}
			results <- len(granted)
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for n := range results {
		total += n
	}
	if total != 1 {
		t.Fatalf("expected exactly one grant across all passes, got %d", total)
	}
}

func TestEvaluateAndAwardPartialFailureKeepsEarlierGrants(t *testing.T) {
	store := newFakeStore(testCatalog())
	store.grantErr = map[int64]error{2: errors.New("connection reset")}
	engine := NewEngine(store, &fakeProjector{snap: stats.Snapshot{Reviews: 50}})

	granted, err := engine.EvaluateAndAward(context.Background(), 7)
	if !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected ErrEvaluation, got %v", err)
	}
	if len(granted) != 1 || granted[0].ID != 1 {
		t.Fatalf("expected the first tier to stay granted, got %v", granted)
	}
	if _, held := store.earned[7][1]; !held {
		t.Fatal("first grant should be durable after a later failure")
	}
}

func TestEvaluateAndAwardSnapshotError(t *testing.T) {
	store := newFakeStore(testCatalog())
	engine := NewEngine(store, &fakeProjector{err: errors.New("query timeout")})

	if _, err := engine.EvaluateAndAward(context.Background(), 7); !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected ErrEvaluation, got %v", err)
	}
}

func TestProgress(t *testing.T) {
	store := newFakeStore(testCatalog())
	engine := NewEngine(store, &fakeProjector{snap: stats.Snapshot{Reviews: 10, HelpfulVotesReceived: 4}})

	if _, err := engine.EvaluateAndAward(context.Background(), 42); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	progress, err := engine.Progress(context.Background(), 42)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(progress) != len(testCatalog()) {
		t.Fatalf("expected progress for every catalog badge, got %d", len(progress))
	}

	byID := map[int64]Progress{}
	for _, p := range progress {
		byID[p.Badge.ID] = p
	}

	beginner := byID[1]
	if !beginner.IsEarned || beginner.PercentComplete != 100 || beginner.Tier != "gold" {
		t.Fatalf("unexpected beginner progress: %+v", beginner)
	}
	critic := byID[2]
	if critic.IsEarned || critic.PercentComplete != 40 || critic.Tier != "bronze" {
		t.Fatalf("unexpected critic progress: %+v", critic)
	}
	helpful := byID[6]
	if helpful.CurrentCount != 4 || helpful.PercentComplete != 40 {
		t.Fatalf("unexpected helpfulness progress: %+v", helpful)
	}
}

func TestTierLabel(t *testing.T) {
	cases := []struct {
		percent int
		earned  bool
		want    string
	}{
		{0, false, "bronze"},
		{49, false, "bronze"},
		{50, false, "silver"},
		{99, false, "silver"},
		{100, true, "gold"},
		{10, true, "gold"},
	}
	for _, c := range cases {
		if got := TierLabel(c.percent, c.earned); got != c.want {
			t.Errorf("TierLabel(%d, %v) = %q, want %q", c.percent, c.earned, got, c.want)
		}
	}
}

func TestPercentCompleteCapped(t *testing.T) {
	if got := PercentComplete(250, 100); got != 100 {
		t.Fatalf("expected cap at 100, got %d", got)
	}
	if got := PercentComplete(5, 0); got != 100 {
		t.Fatalf("zero threshold should read complete, got %d", got)
	}
	if got := PercentComplete(1, 4); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
}
