// Command import_urls scrapes a list of recipe pages into the recipe service.
//
// The input is a CSV file with a "url" column and an optional "id" column;
// rows with an id overwrite that recipe instead of creating a new one. A file
// without a header is read as one URL per line.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cookbook/internal/config"
	"cookbook/internal/form"
	applog "cookbook/internal/log"
	"cookbook/internal/recipeclient"
)

type importRow struct {
	URL string
	ID  string
}

var (
	loadConfigFunc    = config.Load
	newRepositoryFunc = func(cfg config.RecipeAPIConfig) (form.Repository, error) {
		return recipeclient.NewClient(recipeclient.Config{BaseURL: cfg.URL, Token: cfg.Token, Timeout: cfg.Timeout})
	}
	stdout io.Writer = os.Stdout
)

func main() {
	csvPath := "recipes.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := loadConfigFunc()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	repo, err := newRepositoryFunc(cfg.RecipeAPI)
	if err != nil {
		return fmt.Errorf("recipe service client: %w", err)
	}

	rows, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported := 0
	var failures []error
	for idx, row := range rows {
		id, err := importOne(ctx, repo, row)
		if err != nil {
			applog.Error(ctx, "recipe import failed", "row", idx+1, "url", row.URL, "error", err)
			failures = append(failures, fmt.Errorf("row %d (%s): %w", idx+1, row.URL, err))
			continue
		}
		applog.Info(ctx, "recipe imported", "row", idx+1, "url", row.URL, "recipe", id)
		imported++
	}

	fmt.Fprintf(stdout, "Imported %d of %d recipes from %s\n", imported, len(rows), filepath.Base(csvPath))
	return errors.Join(failures...)
}

// importOne runs one row through a form session the same way the web UI does:
// scrape into the form, then submit it.
func importOne(ctx context.Context, repo form.Repository, row importRow) (string, error) {
	session := form.Open(repo, row.ID)
	defer session.Close()

	if err := session.Import(ctx, row.URL); err != nil {
		return "", err
	}
	outcome, err := session.Submit(ctx)
	if err != nil {
		return "", err
	}
	return outcome.ID, nil
}

func readCSV(path string) ([]importRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, errors.New("csv is empty")
	}

	urlCol, idCol := 0, -1
	header := records[0]
	hasHeader := false
	for idx, key := range header {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "url":
			urlCol = idx
			hasHeader = true
		case "id":
			idCol = idx
		}
	}
	if hasHeader {
		records = records[1:]
	} else {
		idCol = -1
	}

	rows := make([]importRow, 0, len(records))
	for _, record := range records {
		if urlCol >= len(record) {
			continue
		}
		row := importRow{URL: strings.TrimSpace(record[urlCol])}
		if row.URL == "" {
			continue
		}
		if idCol >= 0 && idCol < len(record) {
			row.ID = strings.TrimSpace(record[idCol])
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.New("csv lists no urls")
	}
	return rows, nil
}
