package server

import (
	"context"
	"net/http"

	"cookbook/internal/handlers"
	applog "cookbook/internal/log"
)

type route struct {
	pattern string
	handler http.HandlerFunc
}

var routes = []route{
	{"GET /healthz", handlers.Health},
	{"GET /{$}", handlers.Home},
	{"GET /recipes/new", handlers.NewRecipe},
	{"GET /recipes/{id}", handlers.RecipeDetail},
	{"GET /recipes/{id}/edit", handlers.EditRecipe},
	{"POST /recipes/{id}/delete", handlers.DeleteRecipe},
	{"GET /import", handlers.ImportRecipe},
	{"GET /form/{fid}", handlers.FormPage},
	{"POST /form/{fid}/scrape", handlers.ScrapeIntoForm},
	{"POST /form/{fid}/fields", handlers.SyncFields},
	{"POST /form/{fid}/submit", handlers.SubmitForm},
	{"POST /form/{fid}/{list}/append", handlers.AppendRow},
	{"POST /form/{fid}/{list}/{cell}/remove", handlers.RemoveRow},
}

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, rt.handler)
		applog.Debug(context.Background(), "route registered", "pattern", rt.pattern)
	}
	return mux
}
