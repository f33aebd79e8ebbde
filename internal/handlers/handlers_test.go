package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/alexedwards/scs/v2"

	"cookbook/internal/form"
	"cookbook/internal/recipeclient"
	"cookbook/internal/recipes"
)

type fakeService struct {
	mu        sync.Mutex
	stored    map[string]recipes.Recipe
	created   []recipes.Recipe
	updated   map[string]recipes.Recipe
	deleted   []string
	scraped   recipes.Recipe
	scrapeErr error
	getErr    error
	deleteErr error
}

func newFakeService(stored ...recipes.Recipe) *fakeService {
	svc := &fakeService{stored: map[string]recipes.Recipe{}, updated: map[string]recipes.Recipe{}}
	for _, recipe := range stored {
		svc.stored[recipe.ID] = recipe
	}
	return svc
}

func (f *fakeService) List(context.Context) []recipes.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recipes.Summary, 0, len(f.stored))
	for id, recipe := range f.stored {
		out = append(out, recipes.Summary{ID: id, Name: recipe.Name})
	}
	return out
}

func (f *fakeService) Get(_ context.Context, id string) (recipes.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return recipes.Recipe{}, f.getErr
	}
	recipe, ok := f.stored[id]
	if !ok {
		return recipes.Recipe{}, &recipeclient.APIError{Op: "get", StatusCode: http.StatusNotFound, Message: "Recipe not found"}
	}
	return recipe, nil
}

func (f *fakeService) Create(_ context.Context, recipe recipes.Recipe) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, recipe)
	return "created_recipe", nil
}

func (f *fakeService) Update(_ context.Context, id string, recipe recipes.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = recipe
	return nil
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.stored, id)
	return nil
}

func (f *fakeService) Scrape(context.Context, string) (recipes.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scrapeErr != nil {
		return recipes.Recipe{}, f.scrapeErr
	}
	return f.scraped, nil
}

// browser drives the handlers through a mux wrapped in the session manager
// and carries the session cookie between requests.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func withTestServices(t *testing.T, svc *fakeService) (*browser, *form.Registry) {
	t.Helper()
	originalSM, originalService, originalForms := sessionManager, service, forms
	sm := scs.New()
	registry := form.NewRegistry(svc, 0)
	Configure(sm, svc, registry)
	t.Cleanup(func() {
		registry.CloseAll()
		sessionManager, service, forms = originalSM, originalService, originalForms
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", Home)
	mux.HandleFunc("GET /recipes/new", NewRecipe)
	mux.HandleFunc("GET /recipes/{id}", RecipeDetail)
	mux.HandleFunc("GET /recipes/{id}/edit", EditRecipe)
	mux.HandleFunc("POST /recipes/{id}/delete", DeleteRecipe)
	mux.HandleFunc("GET /import", ImportRecipe)
	mux.HandleFunc("GET /form/{fid}", FormPage)
	mux.HandleFunc("POST /form/{fid}/scrape", ScrapeIntoForm)
	mux.HandleFunc("POST /form/{fid}/fields", SyncFields)
	mux.HandleFunc("POST /form/{fid}/submit", SubmitForm)
	mux.HandleFunc("POST /form/{fid}/{list}/append", AppendRow)
	mux.HandleFunc("POST /form/{fid}/{list}/{cell}/remove", RemoveRow)

	return &browser{t: t, handler: sm.LoadAndSave(mux)}, registry
}

func (b *browser) do(method, target string, values url.Values, htmx bool) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if values != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}
	return w
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil, false)
}

func (b *browser) post(target string, values url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, target, values, false)
}

// openForm follows the redirect from an opening route and returns the form
// path and its rendered page.
func (b *browser) openForm(target string) (string, string) {
	b.t.Helper()
	w := b.get(target)
	if w.Code != http.StatusSeeOther {
		b.t.Fatalf("GET %s: expected 303, got %d", target, w.Code)
	}
	path := w.Header().Get("Location")
	if !strings.HasPrefix(path, "/form/") {
		b.t.Fatalf("GET %s: expected redirect to a form, got %q", target, path)
	}
	page := b.get(path)
	if page.Code != http.StatusOK {
		b.t.Fatalf("GET %s: expected 200, got %d", path, page.Code)
	}
	return path, page.Body.String()
}

var inputName = regexp.MustCompile(`name="((?:ingredients|steps|props)\.\d+(?:\.key|\.value)?)"`)

func inputNames(page, prefix string) []string {
	var out []string
	for _, m := range inputName.FindAllStringSubmatch(page, -1) {
		if strings.HasPrefix(m[1], prefix) {
			out = append(out, m[1])
		}
	}
	return out
}

func TestHomeListsRecipes(t *testing.T) {
	b, _ := withTestServices(t, newFakeService(recipes.Recipe{ID: "soup", Name: "Tomato Soup"}))

	w := b.get("/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `href="/recipes/soup"`) || !strings.Contains(body, "Tomato Soup") {
		t.Fatalf("expected recipe link: %s", body)
	}
}

func TestRecipeDetail(t *testing.T) {
	b, _ := withTestServices(t, newFakeService(recipes.Recipe{ID: "soup", Name: "Tomato Soup", Steps: []string{"simmer"}}))

	w := b.get("/recipes/soup")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<li>simmer</li>") {
		t.Fatalf("unexpected detail response %d: %s", w.Code, w.Body.String())
	}

	w = b.get("/recipes/missing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "could not be loaded") {
		t.Fatalf("expected placeholder: %s", w.Body.String())
	}
}

func TestNewRecipeSubmitCreates(t *testing.T) {
	svc := newFakeService()
	b, registry := withTestServices(t, svc)

	path, page := b.openForm("/recipes/new")
	if !strings.Contains(page, "<h1>New recipe</h1>") {
		t.Fatalf("expected create form: %s", page)
	}
	ingredients := inputNames(page, "ingredients.")
	props := inputNames(page, "props.")
	if len(ingredients) != 1 || len(props) != 2 {
		t.Fatalf("expected one ingredient row and one prop row, got %v %v", ingredients, props)
	}

	w := b.post(path+"/submit", url.Values{
		"name":         {"Soup"},
		ingredients[0]: {"water"},
		props[0]:       {"servings"},
		props[1]:       {"4"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/recipes/created_recipe" {
		t.Fatalf("expected redirect to the new recipe, got %q", loc)
	}
	if len(svc.created) != 1 {
		t.Fatalf("expected one create, got %d", len(svc.created))
	}
	got := svc.created[0]
	if got.Name != "Soup" || len(got.Ingredients) != 1 || got.Ingredients[0] != "water" {
		t.Fatalf("unexpected created recipe: %+v", got)
	}
	if value, ok := got.CoreProps.Get("servings"); !ok || value != "4" {
		t.Fatalf("expected servings prop, got %+v", got.CoreProps)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected the form to be closed after submit, %d open", registry.Len())
	}
}

func TestSubmitWithoutNameKeepsForm(t *testing.T) {
	svc := newFakeService()
	b, _ := withTestServices(t, svc)

	path, _ := b.openForm("/recipes/new")
	w := b.post(path+"/submit", url.Values{"name": {"  "}})
	if loc := w.Header().Get("Location"); loc != path {
		t.Fatalf("expected redirect back to the form, got %q", loc)
	}
	if len(svc.created) != 0 {
		t.Fatal("expected no create call")
	}
	page := b.get(path).Body.String()
	if !strings.Contains(page, "Give the recipe a name before saving.") {
		t.Fatalf("expected validation notice: %s", page)
	}
}

func TestEditRecipeSubmitsUpdate(t *testing.T) {
	svc := newFakeService(recipes.Recipe{ID: "soup", Name: "Soup", Ingredients: []string{"water"}})
	b, _ := withTestServices(t, svc)

	path, page := b.openForm("/recipes/soup/edit")
	if !strings.Contains(page, "<h1>Edit Soup</h1>") || !strings.Contains(page, `value="water"`) {
		t.Fatalf("expected seeded update form: %s", page)
	}

	w := b.post(path+"/submit", url.Values{"name": {"Better Soup"}})
	if loc := w.Header().Get("Location"); loc != "/recipes/soup" {
		t.Fatalf("expected redirect to the recipe, got %q", loc)
	}
	updated, ok := svc.updated["soup"]
	if !ok || updated.Name != "Better Soup" || len(updated.Ingredients) != 1 {
		t.Fatalf("unexpected update: %+v", svc.updated)
	}
	if len(svc.created) != 0 {
		t.Fatal("expected no create call in update mode")
	}
}

func TestEditRecipeLoadFailureShowsPlaceholder(t *testing.T) {
	svc := newFakeService()
	svc.getErr = errors.New("connection refused")
	b, _ := withTestServices(t, svc)

	_, page := b.openForm("/recipes/soup/edit")
	if !strings.Contains(page, "could not be loaded") {
		t.Fatalf("expected placeholder: %s", page)
	}
	if !strings.Contains(page, "Save changes") {
		t.Fatalf("expected the form to stay in update mode: %s", page)
	}
}

func TestImportWithIDUpdatesExistingRecipe(t *testing.T) {
	svc := newFakeService(recipes.Recipe{ID: "soup", Name: "Soup"})
	svc.scraped = recipes.Recipe{Name: "Imported Soup", Steps: []string{"boil"}}
	b, _ := withTestServices(t, svc)

	path, _ := b.openForm("/import?id=soup")
	w := b.post(path+"/scrape", url.Values{"url": {"https://example.com/soup"}})
	if loc := w.Header().Get("Location"); loc != path {
		t.Fatalf("expected redirect back to the form, got %q", loc)
	}
	page := b.get(path).Body.String()
	if !strings.Contains(page, `value="Imported Soup"`) || !strings.Contains(page, "Recipe imported") {
		t.Fatalf("expected imported recipe on the form: %s", page)
	}

	b.post(path+"/submit", url.Values{})
	if updated, ok := svc.updated["soup"]; !ok || updated.Name != "Imported Soup" {
		t.Fatalf("expected update of soup, got %+v", svc.updated)
	}
}

func TestScrapeFailureLeavesFormUnchanged(t *testing.T) {
	svc := newFakeService()
	svc.scrapeErr = &recipeclient.APIError{Op: "scrape", StatusCode: http.StatusBadRequest, Message: "no recipe found"}
	b, _ := withTestServices(t, svc)

	path, _ := b.openForm("/import")
	b.post(path+"/fields", url.Values{"name": {"Draft"}})
	b.post(path+"/scrape", url.Values{"url": {"https://example.com/nothing"}})

	page := b.get(path).Body.String()
	if !strings.Contains(page, "Could not import the recipe: no recipe found") {
		t.Fatalf("expected error notice: %s", page)
	}
	if !strings.Contains(page, `value="Draft"`) {
		t.Fatalf("expected the draft to survive: %s", page)
	}
}

func TestScrapeRequiresURL(t *testing.T) {
	b, _ := withTestServices(t, newFakeService())

	path, _ := b.openForm("/import")
	b.post(path+"/scrape", url.Values{"url": {""}})
	if page := b.get(path).Body.String(); !strings.Contains(page, "Enter a recipe URL to import.") {
		t.Fatalf("expected url notice: %s", page)
	}
}

func TestSyncFields(t *testing.T) {
	b, _ := withTestServices(t, newFakeService())

	path, page := b.openForm("/recipes/new")
	step := inputNames(page, "steps.")[0]
	w := b.do(http.MethodPost, path+"/fields", url.Values{"name": {"Bread"}, step: {"knead"}, "steps.999": {"ignored"}}, true)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	page = b.get(path).Body.String()
	if !strings.Contains(page, `value="Bread"`) || !strings.Contains(page, ">knead</textarea>") {
		t.Fatalf("expected synced fields: %s", page)
	}
	if strings.Contains(page, "ignored") {
		t.Fatalf("expected unknown rows to be ignored: %s", page)
	}
}

func TestAppendAndRemoveRows(t *testing.T) {
	b, _ := withTestServices(t, newFakeService())

	path, page := b.openForm("/recipes/new")
	first := inputNames(page, "ingredients.")[0]

	w := b.do(http.MethodPost, path+"/ingredients/append", url.Values{first: {"flour"}}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	fragment := w.Body.String()
	if !strings.Contains(fragment, `id="ingredients-editor"`) || strings.Contains(fragment, "<html") {
		t.Fatalf("expected an editor fragment: %s", fragment)
	}
	names := inputNames(fragment, "ingredients.")
	if len(names) != 2 || !strings.Contains(fragment, `value="flour"`) {
		t.Fatalf("expected two rows keeping the typed text, got %v: %s", names, fragment)
	}

	cell := strings.TrimPrefix(names[1], "ingredients.")
	w = b.do(http.MethodPost, path+"/ingredients/"+cell+"/remove", url.Values{}, true)
	if got := inputNames(w.Body.String(), "ingredients."); len(got) != 1 || got[0] != first {
		t.Fatalf("expected only the first row to remain, got %v", got)
	}

	// The last row stays.
	cell = strings.TrimPrefix(first, "ingredients.")
	w = b.do(http.MethodPost, path+"/ingredients/"+cell+"/remove", url.Values{}, true)
	if got := inputNames(w.Body.String(), "ingredients."); len(got) != 1 {
		t.Fatalf("expected the last row to be kept, got %v", got)
	}
}

func TestAppendRowWithoutHTMXRedirects(t *testing.T) {
	b, _ := withTestServices(t, newFakeService())

	path, _ := b.openForm("/recipes/new")
	w := b.post(path+"/props/append", url.Values{})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != path {
		t.Fatalf("expected redirect to the form, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if got := inputNames(b.get(path).Body.String(), "props."); len(got) != 4 {
		t.Fatalf("expected two prop rows, got %v", got)
	}

	if w := b.post(path+"/garnish/append", url.Values{}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown list, got %d", w.Code)
	}
}

func TestFormBelongsToItsBrowser(t *testing.T) {
	svc := newFakeService()
	owner, _ := withTestServices(t, svc)
	path, _ := owner.openForm("/recipes/new")

	stranger := &browser{t: t, handler: owner.handler}
	w := stranger.get(path)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected a stranger to be sent home, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestOpeningAnotherFormClosesThePrevious(t *testing.T) {
	b, registry := withTestServices(t, newFakeService())

	first, _ := b.openForm("/recipes/new")
	b.openForm("/import")
	if registry.Len() != 1 {
		t.Fatalf("expected one open form, got %d", registry.Len())
	}
	if w := b.get(first); w.Header().Get("Location") != "/" {
		t.Fatalf("expected the first form to be gone, got %d", w.Code)
	}
}

func TestDeleteRecipe(t *testing.T) {
	svc := newFakeService(recipes.Recipe{ID: "soup", Name: "Soup"})
	b, _ := withTestServices(t, svc)
	b.get("/")

	w := b.do(http.MethodPost, "/recipes/soup/delete", url.Values{}, true)
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("expected empty 200, got %d %q", w.Code, w.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "soup" {
		t.Fatalf("expected soup deleted, got %v", svc.deleted)
	}
}

func TestDeleteRecipeFailureRedirectsWithNotice(t *testing.T) {
	svc := newFakeService(recipes.Recipe{ID: "soup", Name: "Soup"})
	svc.deleteErr = &recipeclient.APIError{Op: "delete", StatusCode: http.StatusInternalServerError, Message: "Failed to delete recipe"}
	b, _ := withTestServices(t, svc)

	w := b.do(http.MethodPost, "/recipes/soup/delete", url.Values{}, true)
	if w.Header().Get("HX-Redirect") != "/" {
		t.Fatalf("expected HX-Redirect to /, got %q", w.Header().Get("HX-Redirect"))
	}
	if page := b.get("/").Body.String(); !strings.Contains(page, "Could not delete the recipe: Failed to delete recipe") {
		t.Fatalf("expected delete notice: %s", page)
	}
}

func TestHandlersWithoutServicesAreUnavailable(t *testing.T) {
	originalService, originalForms := service, forms
	service, forms = nil, nil
	t.Cleanup(func() { service, forms = originalService, originalForms })

	w := httptest.NewRecorder()
	Home(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
