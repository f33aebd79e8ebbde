package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "cookbook/internal/log"
	"cookbook/internal/recipes"
	"cookbook/models"
)

// New returns an in-memory sqlite database seeded with a few sample recipes.
func New(ctx context.Context) (*gorm.DB, error) {
	return Open(ctx, "file:cookbook-mock?mode=memory&cache=shared")
}

// Open is New with an explicit sqlite DSN, so tests can keep their databases
// apart.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeStep{},
		&models.RecipeProp{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

// Samples are the recipes seeded into every mock database, keyed by id.
var Samples = []recipes.Recipe{
	{
		ID:        "tomato_soup",
		Name:      "Tomato Soup",
		ImagePath: "https://images.example.com/tomato-soup.jpg",
		CoreProps: recipes.Props{
			{Key: "prep time", Value: "10 mins"},
			{Key: "cook time", Value: "30 mins"},
			{Key: "servings", Value: "4"},
		},
		Ingredients: []string{
			"2 tbsp olive oil",
			"1 onion, diced",
			"800 g canned tomatoes",
			"500 ml vegetable stock",
		},
		Steps: []string{
			"Soften the onion in the oil over a medium heat.",
			"Add the tomatoes and stock and simmer for 20 minutes.",
			"Blend until smooth and season to taste.",
		},
	},
	{
		ID:   "pan_bread",
		Name: "Pan Bread",
		CoreProps: recipes.Props{
			{Key: "prep time", Value: "15 mins"},
			{Key: "additional time", Value: "1 hr"},
			{Key: "servings", Value: "8"},
		},
		Ingredients: []string{
			"500 g strong white flour",
			"7 g dried yeast",
			"1 tsp salt",
			"300 ml warm water",
		},
		Steps: []string{
			"Mix everything into a soft dough and knead for 10 minutes.",
			"Leave to rise until doubled.",
			"Cook in a hot dry pan for 3 minutes each side.",
		},
	},
	{
		ID:          "lemon_water",
		Name:        "Lemon Water",
		CoreProps:   recipes.Props{},
		Ingredients: []string{"1 lemon", "1 l cold water"},
		Steps:       []string{"Slice the lemon into the water and chill."},
	},
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	var count int64
	if err := db.WithContext(ctx).Model(&models.Recipe{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		applog.Debug(ctx, "mock database already seeded", "recipes", count)
		return nil
	}

	for _, sample := range Samples {
		row := models.NewRecipe(sample.ID, sample)
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded", "recipes", len(Samples))
	return nil
}
