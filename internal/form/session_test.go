package form

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"cookbook/internal/document"
	"cookbook/internal/recipes"
)

type scrapeResult struct {
	recipe recipes.Recipe
	err    error
}

type fakeRepository struct {
	mu      sync.Mutex
	stored  map[string]recipes.Recipe
	created []recipes.Recipe
	updated map[string]recipes.Recipe
	getErr  error
	saveErr error

	// When non-nil, Scrape announces the url on started and blocks until a
	// result arrives on the url's release channel.
	started chan string
	release map[string]chan scrapeResult
	scraped map[string]recipes.Recipe
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		stored:  map[string]recipes.Recipe{},
		updated: map[string]recipes.Recipe{},
		scraped: map[string]recipes.Recipe{},
	}
}

func (f *fakeRepository) Get(ctx context.Context, id string) (recipes.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return recipes.Recipe{}, f.getErr
	}
	recipe, ok := f.stored[id]
	if !ok {
		return recipes.Recipe{}, errors.New("not found")
	}
	recipe.ID = id
	return recipe, nil
}

func (f *fakeRepository) Create(ctx context.Context, recipe recipes.Recipe) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.created = append(f.created, recipe)
	return "new_id", nil
}

func (f *fakeRepository) Update(ctx context.Context, id string, recipe recipes.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.updated[id] = recipe
	return nil
}

func (f *fakeRepository) Scrape(ctx context.Context, pageURL string) (recipes.Recipe, error) {
	if f.started != nil {
		f.mu.Lock()
		ch := f.release[pageURL]
		f.mu.Unlock()
		f.started <- pageURL
		result := <-ch
		return result.recipe, result.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recipe, ok := f.scraped[pageURL]
	if !ok {
		return recipes.Recipe{}, errors.New("unsupported base website")
	}
	return recipe, nil
}

func (f *fakeRepository) block(urls ...string) {
	f.started = make(chan string)
	f.release = map[string]chan scrapeResult{}
	for _, u := range urls {
		f.release[u] = make(chan scrapeResult, 1)
	}
}

func TestOpenFixesModeFromRecipeID(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	if got := Open(repo, "").Mode(); got != ModeCreate {
		t.Fatalf("expected create mode, got %v", got)
	}
	if got := Open(repo, "soup").Mode(); got != ModeUpdate {
		t.Fatalf("expected update mode, got %v", got)
	}
}

func TestImportWithRecipeIDRoutesSubmitToUpdate(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.scraped["https://example.com/soup"] = recipes.Recipe{
		Name:        "Scraped Soup",
		Ingredients: []string{"water", "salt"},
		Steps:       []string{"boil"},
		CoreProps:   recipes.Props{{Key: "yield", Value: "2"}},
	}

	session := Open(repo, "soup")
	if err := session.Import(context.Background(), "https://example.com/soup"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	outcome, err := session.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if outcome.Mode != ModeUpdate || outcome.ID != "soup" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no create calls, got %d", len(repo.created))
	}
	got := repo.updated["soup"]
	if got.Name != "Scraped Soup" || !reflect.DeepEqual(got.Ingredients, []string{"water", "salt"}) {
		t.Fatalf("unexpected updated recipe %+v", got)
	}
}

func TestImportWithoutRecipeIDCreates(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.scraped["https://example.com/bread"] = recipes.Recipe{Name: "Bread"}

	session := Open(repo, "")
	if err := session.Import(context.Background(), "https://example.com/bread"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	outcome, err := session.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if outcome.Mode != ModeCreate || outcome.ID != "new_id" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.Ingredients == nil || created.Steps == nil {
		t.Fatalf("expected non-nil slices, got %+v", created)
	}
	snap := session.Snapshot()
	if len(snap.Props) != 1 || snap.Props[0].Key != "" {
		t.Fatalf("expected one empty property row, got %+v", snap.Props)
	}
}

func TestImportRequiresURL(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.block()
	session := Open(repo, "")
	if err := session.Import(context.Background(), "   "); !errors.Is(err, ErrURLRequired) {
		t.Fatalf("expected ErrURLRequired, got %v", err)
	}
}

func TestImportFailureLeavesDocumentUntouched(t *testing.T) {
	t.Parallel()

	session := Open(newFakeRepository(), "")
	session.Edit(func(doc *document.Document) {
		doc.SetName("Draft")
		doc.Ingredients().SetAt(0, "flour")
	})

	if err := session.Import(context.Background(), "https://unknown.example/x"); err == nil {
		t.Fatal("expected import error")
	}
	snap := session.Snapshot()
	if snap.Name != "Draft" || snap.Ingredients[0].Text != "flour" {
		t.Fatalf("document changed after failed import: %+v", snap)
	}
}

func TestConcurrentImportsLaterIssuedWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		resolveFirst string
	}{
		{name: "newer resolves first", resolveFirst: "b"},
		{name: "older resolves first", resolveFirst: "a"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeRepository()
			repo.block("a", "b")
			session := Open(repo, "")

			errs := map[string]chan error{"a": make(chan error, 1), "b": make(chan error, 1)}
			go func() { errs["a"] <- session.Import(context.Background(), "a") }()
			if got := <-repo.started; got != "a" {
				t.Fatalf("expected a to start first, got %s", got)
			}
			go func() { errs["b"] <- session.Import(context.Background(), "b") }()
			<-repo.started

			order := []string{"a", "b"}
			if tt.resolveFirst == "b" {
				order = []string{"b", "a"}
			}
			for _, u := range order {
				repo.release[u] <- scrapeResult{recipe: recipes.Recipe{Name: "from " + u}}
				err := <-errs[u]
				if u == "a" && !errors.Is(err, ErrStale) {
					t.Fatalf("expected superseded import to be stale, got %v", err)
				}
				if u == "b" && err != nil {
					t.Fatalf("expected current import to apply, got %v", err)
				}
			}

			if got := session.Snapshot().Name; got != "from b" {
				t.Fatalf("expected later-issued result, got %q", got)
			}
		})
	}
}

func TestSubmitDuringImportMakesImportStale(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.block("slow")
	session := Open(repo, "")
	session.Edit(func(doc *document.Document) {
		doc.SetName("Draft")
		doc.Ingredients().SetAt(0, "flour")
	})

	done := make(chan error, 1)
	go func() { done <- session.Import(context.Background(), "slow") }()
	<-repo.started

	outcome, err := session.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if outcome.ID != "new_id" || len(repo.created) != 1 || repo.created[0].Name != "Draft" {
		t.Fatalf("expected the typed draft to be created, got %+v %+v", outcome, repo.created)
	}

	repo.release["slow"] <- scrapeResult{recipe: recipes.Recipe{Name: "Scraped", Ingredients: []string{"rice"}}}
	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected the import issued before submit to be stale, got %v", err)
	}

	snap := session.Snapshot()
	if snap.Name != "Draft" || snap.Ingredients[0].Text != "flour" {
		t.Fatalf("stale import changed the document: %+v", snap)
	}
}

func TestResponseAfterCloseIsDiscarded(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.block("late")
	session := Open(repo, "")

	done := make(chan error, 1)
	go func() { done <- session.Import(context.Background(), "late") }()
	<-repo.started
	session.Close()
	repo.release["late"] <- scrapeResult{recipe: recipes.Recipe{Name: "Late"}}

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if got := session.Snapshot().Name; got != "" {
		t.Fatalf("expected closed session to keep empty name, got %q", got)
	}
	if err := session.Edit(func(*document.Document) {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected Edit on closed session to fail, got %v", err)
	}
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	session := Open(repo, "")
	session.Edit(func(doc *document.Document) { doc.SetName("   ") })

	if _, err := session.Submit(context.Background()); !errors.Is(err, document.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("expected no create call for invalid document")
	}
}

func TestSubmitFailureKeepsDocumentForRetry(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.saveErr = errors.New("service unavailable")
	session := Open(repo, "")
	session.Edit(func(doc *document.Document) {
		doc.SetName("Soup")
		doc.Ingredients().SetAt(0, "water")
		doc.Ingredients().Append()
	})

	if _, err := session.Submit(context.Background()); err == nil {
		t.Fatal("expected submit error")
	}
	snap := session.Snapshot()
	if snap.Name != "Soup" || len(snap.Ingredients) != 2 {
		t.Fatalf("document changed after failed submit: %+v", snap)
	}

	repo.saveErr = nil
	if _, err := session.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
	if !reflect.DeepEqual(repo.created[0].Ingredients, []string{"water"}) {
		t.Fatalf("unexpected ingredients %v", repo.created[0].Ingredients)
	}
}

func TestLoadSeedsUpdateSession(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.stored["soup"] = recipes.Recipe{
		Name:      "Soup",
		Steps:     []string{"boil", "serve"},
		CoreProps: recipes.Props{{Key: "prep", Value: "5m"}, {Key: "cook", Value: "20m"}},
	}
	session := Open(repo, "soup")
	if err := session.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap := session.Snapshot()
	if snap.Name != "Soup" || len(snap.Steps) != 2 || len(snap.Props) != 2 || snap.Props[1].Key != "cook" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if len(snap.Ingredients) != 1 {
		t.Fatalf("expected one blank ingredient row, got %d", len(snap.Ingredients))
	}
}

func TestLoadFailureKeepsEmptyDocument(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.getErr = errors.New("timeout")
	session := Open(repo, "soup")
	if err := session.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if snap := session.Snapshot(); snap.Name != "" || len(snap.Ingredients) != 1 {
		t.Fatalf("expected empty document, got %+v", snap)
	}
}

func TestRegistryOwnershipAndReplacement(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(newFakeRepository(), time.Hour)
	first := registry.Open("alice", "")
	if _, ok := registry.Lookup("bob", first.ID()); ok {
		t.Fatal("expected lookup by another owner to fail")
	}
	if got, ok := registry.Lookup("alice", first.ID()); !ok || got != first {
		t.Fatal("expected owner lookup to succeed")
	}

	second := registry.Open("alice", "soup")
	if !first.Closed() {
		t.Fatal("expected previous form to be closed when a new one opens")
	}
	if _, ok := registry.Lookup("alice", first.ID()); ok {
		t.Fatal("expected replaced form to be gone")
	}
	if registry.Len() != 1 || second.Mode() != ModeUpdate {
		t.Fatalf("unexpected registry state: len=%d mode=%v", registry.Len(), second.Mode())
	}

	registry.Remove(second.ID())
	if !second.Closed() || registry.Len() != 0 {
		t.Fatal("expected Remove to close and forget the session")
	}
}

func TestRegistrySweepExpiresIdleSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	registry := NewRegistry(newFakeRepository(), time.Hour)
	registry.now = func() time.Time { return now }

	idle := registry.Open("alice", "")
	now = now.Add(50 * time.Minute)
	active := registry.Open("bob", "")
	now = now.Add(20 * time.Minute)
	active.Edit(func(*document.Document) {})

	if n := registry.Sweep(); n != 1 {
		t.Fatalf("expected one expired session, got %d", n)
	}
	if !idle.Closed() || active.Closed() {
		t.Fatalf("unexpected closed state idle=%v active=%v", idle.Closed(), active.Closed())
	}
}

func TestRegistryRunClosesAllOnShutdown(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(newFakeRepository(), time.Hour)
	session := registry.Open("alice", "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		registry.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	<-done

	if !session.Closed() || registry.Len() != 0 {
		t.Fatal("expected Run to close every session on shutdown")
	}
}
