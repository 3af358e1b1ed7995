package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	orderSheet      = "Orders"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var orderExportHeader = []interface{}{
	"Order ID", "UUID", "User ID", "User Email", "Cart ID", "Status",
	"Subtotal", "Discount", "Total", "Coupon Code", "Items", "Created At",
}

// ObjectStorage uploads a file and returns its download URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type OrderExportFilter struct {
	Status *model.OrderStatus
	From   *time.Time
	To     *time.Time
}

// OrderExport holds either the workbook bytes or, when uploaded, its URL.
type OrderExport struct {
	FileName string
	Rows     int
	Content  []byte
	URL      string
}

type OrderExportService interface {
	ExportOrders(ctx context.Context, filter OrderExportFilter) (*OrderExport, error)
}

type orderExportService struct {
	orderRepo repository.OrderRepository
	storage   ObjectStorage
	now       func() time.Time
}

// NewOrderExportService builds the exporter. A nil storage returns the workbook inline.
func NewOrderExportService(orderRepo repository.OrderRepository, storage ObjectStorage) OrderExportService {
	return &orderExportService{
		orderRepo: orderRepo,
		storage:   storage,
		now:       time.Now,
	}
}

func (s *orderExportService) ExportOrders(ctx context.Context, filter OrderExportFilter) (*OrderExport, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, ErrInvalidOrderStatus
	}

	orders, _, err := s.orderRepo.List(repository.OrderFilter{
		Status: filter.Status,
		From:   filter.From,
		To:     filter.To,
	})
	if err != nil {
		return nil, err
	}

	content, err := renderOrdersXLSX(orders)
	if err != nil {
		logger.Error("Failed to render order export", err)
		return nil, err
	}

	export := &OrderExport{
		FileName: fmt.Sprintf("orders-%s.xlsx", s.now().UTC().Format("20060102-150405")),
		Rows:     len(orders),
	}

	if s.storage == nil {
		export.Content = content
		return export, nil
	}

	url, err := s.storage.Upload(ctx, "exports/"+export.FileName, XLSXContentType, content)
	if err != nil {
		logger.Error("Failed to upload order export", err, map[string]interface{}{
			"file": export.FileName,
		})
		return nil, err
	}
	export.URL = url

	logger.Info("Order export uploaded", map[string]interface{}{
		"file": export.FileName,
		"rows": export.Rows,
	})
	return export, nil
}

func renderOrdersXLSX(orders []model.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), orderSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(orderSheet, "A1", &orderExportHeader); err != nil {
		return nil, err
	}

	for i, order := range orders {
		var email string
		if order.User != nil {
			email = order.User.Email
		}
		items := 0
		if order.Cart != nil {
			items = len(order.Cart.Items)
		}

		row := []interface{}{
			order.ID,
			order.UUID,
			order.UserID,
			email,
			order.CartID,
			string(order.Status),
			order.TotalPrice + order.DiscountApplied,
			order.DiscountApplied,
			order.TotalPrice,
			order.CouponCode,
			items,
			order.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(orderSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
