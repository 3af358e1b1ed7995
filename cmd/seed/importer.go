package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	sheetCategories = "categories"
	sheetProducts   = "products"
	sheetCoupons    = "coupons"

	dateLayout = "2006-01-02"
)

// ImportReport counts what an import created and skipped, per sheet.
type ImportReport struct {
	Categories int
	Products   int
	Coupons    int
	Skipped    int
}

type importer struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	couponRepo   repository.CouponRepository

	categories map[string]uint
	report     ImportReport
}

func newImporter(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
) *importer {
	return &importer{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
		categories:   make(map[string]uint),
	}
}

// Import reads the categories, products and coupons sheets in that order.
// Missing sheets are skipped. Rows that fail validation are counted and skipped.
func (im *importer) Import(f *excelize.File) (ImportReport, error) {
	steps := []struct {
		sheet string
		row   func([]string) (bool, error)
	}{
		{sheetCategories, im.importCategory},
		{sheetProducts, im.importProduct},
		{sheetCoupons, im.importCoupon},
	}

	for _, step := range steps {
		if idx, _ := f.GetSheetIndex(step.sheet); idx < 0 {
			fmt.Printf("Sheet %q not found, skipping\n", step.sheet)
			continue
		}

		rows, err := f.GetRows(step.sheet)
		if err != nil {
			return im.report, fmt.Errorf("failed to read sheet %s: %w", step.sheet, err)
		}

		for i, row := range rows {
			// header
			if i == 0 {
				continue
			}
			ok, err := step.row(trimCells(row))
			if err != nil {
				return im.report, fmt.Errorf("sheet %s row %d: %w", step.sheet, i+1, err)
			}
			if !ok {
				im.report.Skipped++
			}
		}
	}

	return im.report, nil
}

// name | description
func (im *importer) importCategory(row []string) (bool, error) {
	name := cell(row, 0)
	if name == "" {
		return false, nil
	}

	existing, err := im.categoryRepo.FindByName(name)
	if err == nil {
		im.categories[name] = existing.ID
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	category := &model.Category{Name: name, Description: cell(row, 1)}
	if err := im.categoryRepo.Create(category); err != nil {
		return false, err
	}
	im.categories[name] = category.ID
	im.report.Categories++
	return true, nil
}

// title | description | price | stock | category
func (im *importer) importProduct(row []string) (bool, error) {
	title := cell(row, 0)
	price, errPrice := strconv.ParseInt(cell(row, 2), 10, 64)
	stock, errStock := strconv.Atoi(cell(row, 3))
	if title == "" || errPrice != nil || errStock != nil || price < 0 || stock < 0 {
		return false, nil
	}

	categoryID, ok, err := im.categoryID(cell(row, 4))
	if err != nil || !ok {
		return false, err
	}

	product := &model.Product{
		Title:       title,
		Description: cell(row, 1),
		Price:       price,
		Stock:       stock,
		CategoryID:  categoryID,
	}
	if err := im.productRepo.Create(product); err != nil {
		return false, err
	}
	im.report.Products++
	return true, nil
}

// code | type | discount | category | uses_left | expiration (YYYY-MM-DD)
func (im *importer) importCoupon(row []string) (bool, error) {
	code := cell(row, 0)
	couponType := model.CouponType(strings.ToLower(cell(row, 1)))
	discount, errDiscount := strconv.ParseFloat(cell(row, 2), 64)
	usesLeft, errUses := strconv.Atoi(cell(row, 4))
	expiration, errDate := time.Parse(dateLayout, cell(row, 5))
	if code == "" || !couponType.IsValid() || errDiscount != nil || discount <= 0 ||
		errUses != nil || usesLeft < 0 || errDate != nil {
		return false, nil
	}
	if couponType == model.CouponTypePercentage && discount > 100 {
		return false, nil
	}

	if _, err := im.couponRepo.FindActiveByCode(code); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	categoryID, ok, err := im.categoryID(cell(row, 3))
	if err != nil || !ok {
		return false, err
	}

	coupon := &model.Coupon{
		Code:           code,
		Type:           couponType,
		Discount:       discount,
		CategoryID:     categoryID,
		UsesLeft:       usesLeft,
		ExpirationDate: expiration.Add(24*time.Hour - time.Second),
	}
	if err := im.couponRepo.Create(coupon); err != nil {
		return false, err
	}
	im.report.Coupons++
	return true, nil
}

// categoryID resolves a category by name, falling back to the database for
// categories that were not part of this workbook.
func (im *importer) categoryID(name string) (uint, bool, error) {
	if name == "" {
		return 0, false, nil
	}
	if id, ok := im.categories[name]; ok {
		return id, true, nil
	}

	category, err := im.categoryRepo.FindByName(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	im.categories[name] = category.ID
	return category.ID, true, nil
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
