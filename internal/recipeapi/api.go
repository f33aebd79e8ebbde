// Package recipeapi serves the recipe REST API under /api: list, get,
// create, update and delete recipes, plus scrape.
package recipeapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	applog "cookbook/internal/log"
	"cookbook/internal/recipes"
)

const maxBodyBytes = 1 << 20

// Store persists recipes.
type Store interface {
	List(ctx context.Context) ([]recipes.Summary, error)
	Get(ctx context.Context, id string) (recipes.Recipe, error)
	Create(ctx context.Context, recipe recipes.Recipe) (string, error)
	Update(ctx context.Context, id string, recipe recipes.Recipe) error
	Delete(ctx context.Context, id string) error
}

// Scraper extracts a recipe from a web page.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (recipes.Recipe, error)
}

// Options wires the API to its collaborators.
type Options struct {
	Store   Store
	Scraper Scraper
	// TokenHash is a bcrypt hash of the bearer token clients must send.
	// Empty disables the check.
	TokenHash string
	// AllowedOrigins lists the CORS origins; empty allows any origin.
	AllowedOrigins []string
}

type api struct {
	store   Store
	scraper Scraper
}

// NewHandler builds the HTTP handler for the API, including /healthz.
func NewHandler(opts Options) http.Handler {
	a := &api{store: opts.Store, scraper: opts.Scraper}

	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/healthz", health).Methods(http.MethodGet)

	sub := r.PathPrefix("/api").Subrouter()
	sub.Use(requestLogger)
	sub.Use(requireToken(opts.TokenHash))
	sub.HandleFunc("/recipes", a.listRecipes).Methods(http.MethodGet)
	sub.HandleFunc("/recipes", a.createRecipe).Methods(http.MethodPost)
	sub.HandleFunc("/recipes/{id}", a.getRecipe).Methods(http.MethodGet)
	sub.HandleFunc("/recipes/{id}", a.updateRecipe).Methods(http.MethodPut)
	sub.HandleFunc("/recipes/{id}", a.deleteRecipe).Methods(http.MethodDelete)
	sub.HandleFunc("/scrape", a.scrapeRecipe).Methods(http.MethodPost)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	applog.Debug(context.Background(), "recipe api routes registered", "origins", origins, "tokenRequired", opts.TokenHash != "")
	return c.Handler(r)
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		applog.Info(r.Context(), "api request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
