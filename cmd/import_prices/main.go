// Command import_prices loads a supplier price sheet (CSV or PDF) into the
// ingredient table and reprices every recipe that depends on an updated
// ingredient.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"gorm.io/gorm"

	"recipecost/internal/cascade"
	"recipecost/internal/config"
	"recipecost/internal/costing"
	"recipecost/internal/db"
	"recipecost/internal/store"
	"recipecost/internal/units"
	"recipecost/models"
)

var (
	// e.g. "Plain Flour  1000 g  4.50" or "Olive Oil 5 l $32"
	pdfLinePattern  = regexp.MustCompile(`^(.+?)\s+([\d.]+)\s*(kg|g|l|ml|piece|box|bag)\s+\$?([\d.]+)$`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

// priceRow is one parsed sheet entry: the price paid for a purchase quantity
// of a named ingredient.
type priceRow struct {
	Name     string
	Cost     float64
	Quantity float64
	Unit     units.Unit
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_prices <price-sheet.csv|price-sheet.pdf>")
		os.Exit(1)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(sheetPath string) error {
	if strings.TrimSpace(sheetPath) == "" {
		return fmt.Errorf("sheet path must not be empty")
	}

	if _, err := os.Stat(sheetPath); err != nil {
		return fmt.Errorf("locate sheet: %w", err)
	}

	rows, err := readSheet(sheetPath)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return errors.New("sheet contains no usable rows")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	ownerID, err := resolveImportOwner(database)
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}

	dataStore := store.NewGorm(database)
	// inline cascade: the command only exits once every dependent recipe
	// has been repriced
	propagator := cascade.New(dataStore, cascade.Synchronous{})

	ctx := context.Background()
	imported := 0
	for idx, row := range rows {
		var saved models.Ingredient
		if err := database.Transaction(func(tx *gorm.DB) error {
			costPerUnit, err := costing.DeriveCostPerUnit(row.Cost, row.Quantity)
			if err != nil {
				return err
			}

			var existing models.Ingredient
			err = tx.Where("owner_id = ? AND lower(name) = ?", ownerID, strings.ToLower(row.Name)).
				First(&existing).Error
			switch {
			case err == nil:
				updates := map[string]any{
					"cost":          row.Cost,
					"quantity":      row.Quantity,
					"unit":          row.Unit,
					"cost_per_unit": costPerUnit,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("update ingredient %q: %w", row.Name, err)
				}
				existing.Cost = row.Cost
				existing.Quantity = row.Quantity
				existing.Unit = row.Unit
				existing.CostPerUnit = costPerUnit
				saved = existing
				return nil
			case errors.Is(err, gorm.ErrRecordNotFound):
				created := models.Ingredient{
					Name:        row.Name,
					Cost:        row.Cost,
					Quantity:    row.Quantity,
					Unit:        row.Unit,
					CostPerUnit: costPerUnit,
					OwnerID:     ownerID,
				}
				if err := tx.Create(&created).Error; err != nil {
					return fmt.Errorf("create ingredient %q: %w", row.Name, err)
				}
				saved = created
				return nil
			default:
				return fmt.Errorf("find ingredient %q: %w", row.Name, err)
			}
		}); err != nil {
			return fmt.Errorf("row %d (%s): %w", idx+1, row.Name, err)
		}

		propagator.IngredientChanged(ctx, ownerID, saved)
		imported++
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredient prices from %s\n", imported, filepath.Base(sheetPath))
	return nil
}

func resolveImportOwner(database *gorm.DB) (uint, error) {
	if database == nil {
		return 0, fmt.Errorf("database handle is nil")
	}

	ctx := context.Background()
	email := strings.TrimSpace(os.Getenv("RECIPECOST_PRICE_OWNER_EMAIL"))
	if email != "" {
		var user models.User
		if err := database.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
			return 0, fmt.Errorf("find owner by email %q: %w", strings.ToLower(email), err)
		}
		return user.ID, nil
	}

	var user models.User
	if err := database.WithContext(ctx).Order("id asc").First(&user).Error; err != nil {
		return 0, fmt.Errorf("find default owner: %w", err)
	}
	return user.ID, nil
}

func readSheet(path string) ([]priceRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractTextFromPDF(data)
		if err != nil {
			return nil, err
		}
		return parsePDFText(text), nil
	}
	return parseCSV(data)
}

func parseCSV(data []byte) ([]priceRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("csv is empty")
	}

	columns := mapColumns(records[0])
	rows := make([]priceRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row, ok := buildRow(record, columns)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// mapColumns resolves header names to field indexes, tolerating the naming
// variants suppliers actually use.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "name", "ingredient", "ingredient name", "product":
			columns["name"] = idx
		case "cost", "price", "pack price", "total":
			columns["cost"] = idx
		case "quantity", "qty", "amount", "pack size":
			columns["quantity"] = idx
		case "unit", "uom":
			columns["unit"] = idx
		}
	}
	return columns
}

func buildRow(record []string, columns map[string]int) (priceRow, bool) {
	field := func(key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name := cleanWhitespace.ReplaceAllString(field("name"), " ")
	if name == "" {
		return priceRow{}, false
	}

	cost, err := parsePrice(field("cost"))
	if err != nil {
		return priceRow{}, false
	}
	quantity, err := strconv.ParseFloat(field("quantity"), 64)
	if err != nil || quantity <= 0 {
		return priceRow{}, false
	}

	return priceRow{
		Name:     name,
		Cost:     cost,
		Quantity: quantity,
		Unit:     units.Normalize(field("unit")),
	}, true
}

func parsePrice(value string) (float64, error) {
	value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "$"))
	if value == "" {
		return 0, errors.New("empty price")
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, errors.New("negative price")
	}
	return parsed, nil
}

func parsePDFText(text string) []priceRow {
	lines := strings.Split(text, "\n")
	rows := make([]priceRow, 0, len(lines))
	for _, line := range lines {
		row, ok := parsePDFLine(line)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func parsePDFLine(line string) (priceRow, bool) {
	line = cleanWhitespace.ReplaceAllString(strings.TrimSpace(line), " ")
	match := pdfLinePattern.FindStringSubmatch(line)
	if match == nil {
		return priceRow{}, false
	}

	quantity, err := strconv.ParseFloat(match[2], 64)
	if err != nil || quantity <= 0 {
		return priceRow{}, false
	}
	cost, err := strconv.ParseFloat(match[4], 64)
	if err != nil || cost < 0 {
		return priceRow{}, false
	}

	return priceRow{
		Name:     strings.TrimSpace(match[1]),
		Cost:     cost,
		Quantity: quantity,
		Unit:     units.Normalize(match[3]),
	}, true
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
