package export

import (
	"io"

	"github.com/tealeg/xlsx"

	"github.com/junaidrashid-git/tomato-client/models"
)

// OrdersToXLSX writes the admin order collection as an Excel workbook with a
// header row and one row per order.
func OrdersToXLSX(orders []models.Order, w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	headers := []string{
		"OrderID", "UserID", "Restaurant", "Status",
		"PaymentMethod", "PaymentStatus", "Items", "TotalAmount", "CreatedAt",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()

		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.UserID)
		restaurant := o.RestaurantID.Name
		if restaurant == "" {
			restaurant = o.RestaurantID.ID
		}
		row.AddCell().SetValue(restaurant)
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.PaymentInfo.Method)
		row.AddCell().SetValue(string(o.PaymentInfo.Status))
		row.AddCell().SetValue(len(o.Items))
		row.AddCell().SetValue(o.TotalAmount)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}
