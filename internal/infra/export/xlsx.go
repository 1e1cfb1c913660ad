package export

import (
	"io"

	"storefront/internal/domain/model"

	"github.com/tealeg/xlsx"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

var (
	orderHeaders = []string{
		"Order Number", "Created At", "Customer", "Phone", "Email",
		"Delivery Type", "Address", "Subtotal", "Delivery Charge", "Discount", "Total",
		"Payment Method", "Payment Status", "Order Status", "Gateway Order ID", "Notes",
	}
	itemHeaders = []string{
		"Order Number", "Product ID", "Product", "Weight", "Quantity", "Unit Price", "Line Total",
	}
)

// 注文シートと明細シートの2枚
type XLSXOrderWriter struct{}

func NewXLSXOrderWriter() *XLSXOrderWriter {
	return &XLSXOrderWriter{}
}

func (XLSXOrderWriter) WriteOrders(w io.Writer, orders []model.Order, items map[string][]model.OrderItem) error {
	file := xlsx.NewFile()

	orderSheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}
	itemSheet, err := file.AddSheet("Items")
	if err != nil {
		return err
	}

	addHeader(orderSheet, orderHeaders)
	addHeader(itemSheet, itemHeaders)

	for _, o := range orders {
		row := orderSheet.AddRow()
		row.AddCell().SetString(o.OrderNumber)
		row.AddCell().SetString(o.CreatedAt.UTC().Format(timeLayout))
		row.AddCell().SetString(o.CustomerName)
		row.AddCell().SetString(o.CustomerPhone)
		row.AddCell().SetString(o.CustomerEmail)
		row.AddCell().SetString(string(o.DeliveryType))
		row.AddCell().SetString(formatAddress(o.DeliveryAddress))
		row.AddCell().SetFloat(o.Subtotal.InexactFloat64())
		row.AddCell().SetFloat(o.DeliveryCharge.InexactFloat64())
		row.AddCell().SetFloat(o.Discount.InexactFloat64())
		row.AddCell().SetFloat(o.Total.InexactFloat64())
		row.AddCell().SetString(string(o.PaymentMethod))
		row.AddCell().SetString(string(o.PaymentStatus))
		row.AddCell().SetString(string(o.OrderStatus))
		gatewayID := ""
		if o.GatewayOrderID != nil {
			gatewayID = *o.GatewayOrderID
		}
		row.AddCell().SetString(gatewayID)
		row.AddCell().SetString(o.Notes)

		for _, it := range items[o.ID] {
			r := itemSheet.AddRow()
			r.AddCell().SetString(o.OrderNumber)
			r.AddCell().SetString(it.ProductID)
			r.AddCell().SetString(it.ProductName)
			r.AddCell().SetString(it.WeightOption)
			r.AddCell().SetInt64(it.Quantity)
			r.AddCell().SetFloat(it.UnitPrice.InexactFloat64())
			r.AddCell().SetFloat(it.TotalPrice.InexactFloat64())
		}
	}

	return file.Write(w)
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}

func formatAddress(a *model.DeliveryAddress) string {
	if a == nil {
		return ""
	}
	s := a.Street
	for _, part := range []string{a.Landmark, a.City, a.District, a.State, a.Pincode} {
		if part != "" {
			s += ", " + part
		}
	}
	return s
}
