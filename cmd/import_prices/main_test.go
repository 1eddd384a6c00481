package main

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"recipecost/internal/db/mock"
	"recipecost/internal/units"
	"recipecost/models"
)

func TestParseCSV(t *testing.T) {
	t.Parallel()

	data := []byte(`Ingredient Name,Pack Price,Pack Size,Unit
Plain Flour,$4.50,1000,g
Olive Oil,32,5,l
 ,10,1,kg
Broken Row,not-a-price,1,kg
Free Sample,0,250,g
`)

	rows, err := parseCSV(data)
	if err != nil {
		t.Fatalf("parseCSV returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 usable rows, got %d: %+v", len(rows), rows)
	}

	first := rows[0]
	if first.Name != "Plain Flour" || first.Cost != 4.5 || first.Quantity != 1000 || first.Unit != units.Gram {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if rows[1].Unit != units.Liter {
		t.Fatalf("expected liter unit, got %q", rows[1].Unit)
	}
	if rows[2].Cost != 0 {
		t.Fatalf("expected free sample to keep zero cost, got %v", rows[2].Cost)
	}
}

func TestParsePDFLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want priceRow
		ok   bool
	}{
		{
			"plain line",
			"Plain Flour 1000 g 4.50",
			priceRow{Name: "Plain Flour", Cost: 4.5, Quantity: 1000, Unit: units.Gram},
			true,
		},
		{
			"dollar sign and extra spaces",
			"  Olive   Oil  5 l  $32  ",
			priceRow{Name: "Olive Oil", Cost: 32, Quantity: 5, Unit: units.Liter},
			true,
		},
		{
			"attached unit",
			"Milk 2l 3.10",
			priceRow{Name: "Milk", Cost: 3.1, Quantity: 2, Unit: units.Liter},
			true,
		},
		{"heading", "SUPPLIER PRICE LIST", priceRow{}, false},
		{"missing price", "Plain Flour 1000 g", priceRow{}, false},
		{"zero quantity", "Plain Flour 0 g 4.50", priceRow{}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parsePDFLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("parsePDFLine(%q) ok = %t, want %t", tt.line, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("parsePDFLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestMockImporterSeedsWorkspaceData(t *testing.T) {
	ctx := context.Background()
	db, err := mock.New(ctx)
	if err != nil {
		t.Fatalf("mock.New returned error: %v", err)
	}

	var ingredientCount int64
	if err := db.Model(&models.Ingredient{}).Count(&ingredientCount).Error; err != nil {
		t.Fatalf("count ingredients: %v", err)
	}
	if ingredientCount == 0 {
		t.Fatal("expected mock database to seed ingredients")
	}

	var recipeCount int64
	if err := db.Model(&models.Recipe{}).Count(&recipeCount).Error; err != nil {
		t.Fatalf("count recipes: %v", err)
	}
	if recipeCount == 0 {
		t.Fatal("expected mock database to seed recipes")
	}

	var user models.User
	if err := db.First(&user).Error; err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("kitchen")); err != nil {
		t.Fatalf("seeded user password hash mismatch: %v", err)
	}
}
