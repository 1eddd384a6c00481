package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipecost/internal/costing"
	applog "recipecost/internal/log"
	"recipecost/internal/units"
	"recipecost/models"
)

// New returns an in-memory sqlite database seeded with a demo pantry and one
// costed recipe, for local development without a Postgres instance.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:recipecost-mock?mode=memory&cache=shared"), &gorm.Config{
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
		&models.User{},
		&models.Ingredient{},
		&models.Recipe{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("kitchen"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Demo Kitchen",
		Email:        "demo@recipecost.app",
		PasswordHash: string(password),
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	chicken := models.Ingredient{
		Name:     "Chicken Breast",
		Cost:     180,
		Quantity: 2,
		Unit:     units.Kilogram,
		OwnerID:  user.ID,
	}
	rice := models.Ingredient{
		Name:     "Basmati Rice",
		Cost:     50,
		Quantity: 1000,
		Unit:     units.Gram,
		OwnerID:  user.ID,
	}
	oil := models.Ingredient{
		Name:     "Sunflower Oil",
		Cost:     90,
		Quantity: 1,
		Unit:     units.Liter,
		OwnerID:  user.ID,
	}

	pantry := []*models.Ingredient{&chicken, &rice, &oil}
	for _, ingredient := range pantry {
		perUnit, err := costing.DeriveCostPerUnit(ingredient.Cost, ingredient.Quantity)
		if err != nil {
			return err
		}
		ingredient.CostPerUnit = perUnit
		if err := db.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	plate := models.Recipe{
		Name:             "Chicken and Rice Plate",
		OwnerID:          user.ID,
		NumberOfPortions: 4,
		LineItems: []models.RecipeLineItem{
			{
				IngredientID:   chicken.ID,
				IngredientName: chicken.Name,
				Quantity:       1,
				Unit:           units.Kilogram,
				Cost:           costing.LineCostForIngredient(chicken.CostPerUnit, 1),
			},
			{
				IngredientID:   rice.ID,
				IngredientName: rice.Name,
				Quantity:       500,
				Unit:           units.Gram,
				Cost:           costing.LineCostForIngredient(rice.CostPerUnit, 500),
			},
		},
	}

	if err := costing.Aggregate(&plate); err != nil {
		return err
	}
	if err := plate.EncodeBody(); err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&plate).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
