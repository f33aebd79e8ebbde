// Command rfp moves recipes between the recipe service and RFP3 files.
//
//	rfp export [dir]      write every recipe to dir/<id>.rfp
//	rfp import file...    create a recipe from each file
//
// The export directory defaults to "recipes".
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cookbook/internal/config"
	applog "cookbook/internal/log"
	"cookbook/internal/recipeclient"
	"cookbook/internal/recipes"
	"cookbook/internal/rfp"
)

const defaultExportDir = "recipes"

// recipeService is the part of the recipe service client the command uses.
type recipeService interface {
	List(ctx context.Context) []recipes.Summary
	Get(ctx context.Context, id string) (recipes.Recipe, error)
	Create(ctx context.Context, recipe recipes.Recipe) (string, error)
}

var (
	loadConfigFunc = config.Load
	newServiceFunc = func(cfg config.RecipeAPIConfig) (recipeService, error) {
		return recipeclient.NewClient(recipeclient.Config{BaseURL: cfg.URL, Token: cfg.Token, Timeout: cfg.Timeout})
	}
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var errUsage = errors.New("usage: rfp export [dir] | rfp import file...")

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, errUsage)
		return 2
	}

	var action func(context.Context, recipeService, []string) error
	switch args[0] {
	case "export":
		if len(args) > 2 {
			fmt.Fprintln(stderr, errUsage)
			return 2
		}
		action = exportRecipes
	case "import":
		if len(args) < 2 {
			fmt.Fprintln(stderr, errUsage)
			return 2
		}
		action = importRecipes
	default:
		fmt.Fprintln(stderr, errUsage)
		return 2
	}

	cfg, err := loadConfigFunc()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if err := applog.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(stderr, "configure logging: %v\n", err)
		return 1
	}
	svc, err := newServiceFunc(cfg.RecipeAPI)
	if err != nil {
		fmt.Fprintf(stderr, "recipe service client: %v\n", err)
		return 1
	}

	if err := action(ctx, svc, args[1:]); err != nil {
		fmt.Fprintf(stderr, "%s failed: %v\n", args[0], err)
		return 1
	}
	return 0
}

func exportRecipes(ctx context.Context, svc recipeService, args []string) error {
	dir := defaultExportDir
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	summaries := svc.List(ctx)
	written := 0
	var failures []error
	for _, summary := range summaries {
		path, err := exportOne(ctx, svc, dir, summary.ID)
		if err != nil {
			applog.Error(ctx, "recipe export failed", "recipe", summary.ID, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", summary.ID, err))
			continue
		}
		applog.Debug(ctx, "recipe exported", "recipe", summary.ID, "path", path)
		written++
	}

	fmt.Fprintf(stdout, "Exported %d of %d recipes to %s\n", written, len(summaries), dir)
	return errors.Join(failures...)
}

func exportOne(ctx context.Context, svc recipeService, dir, id string) (string, error) {
	recipe, err := svc.Get(ctx, id)
	if err != nil {
		return "", err
	}
	data, err := rfp.Marshal(recipe)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fileName(id))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// fileName keeps ids with path separators inside the export directory.
func fileName(id string) string {
	name := filepath.Base(filepath.Clean("/" + id))
	if name == "/" || name == "." {
		name = "recipe"
	}
	return name + rfp.Extension
}

func importRecipes(ctx context.Context, svc recipeService, paths []string) error {
	imported := 0
	var failures []error
	for _, path := range paths {
		id, err := importOne(ctx, svc, path)
		if err != nil {
			applog.Error(ctx, "recipe import failed", "path", path, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		applog.Info(ctx, "recipe imported", "path", path, "recipe", id)
		imported++
	}

	fmt.Fprintf(stdout, "Imported %d of %d recipe files\n", imported, len(paths))
	return errors.Join(failures...)
}

func importOne(ctx context.Context, svc recipeService, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	recipe, err := rfp.Read(file)
	if err != nil {
		return "", err
	}
	return svc.Create(ctx, recipe)
}
