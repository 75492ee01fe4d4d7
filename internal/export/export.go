package export

import (
	"fmt"
	"io"
	"time"

	"stayfinder/internal/models"

	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// WriteBookingsWorkbook renders the administrative bookings view as an xlsx
// workbook and streams it to w.
func WriteBookingsWorkbook(w io.Writer, bookings []*models.AdminBooking, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(bookingsSheet, "A1",
		fmt.Sprintf("Bookings as of %s", generatedAt.Format("2006-01-02 15:04")))

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(bookingsSheet, "A1", "J1")
	_ = f.SetCellStyle(bookingsSheet, "A1", "A1", titleStyle)

	writeHeaders(f)
	for i, booking := range bookings {
		writeBookingRow(f, i+3, booking)
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 10)
	_ = f.SetColWidth(bookingsSheet, "B", "C", 25)
	_ = f.SetColWidth(bookingsSheet, "D", "D", 30)
	_ = f.SetColWidth(bookingsSheet, "E", "H", 14)
	_ = f.SetColWidth(bookingsSheet, "I", "J", 12)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %v", err)
	}
	return nil
}

func writeHeaders(f *excelize.File) {
	headers := []string{
		"ID", "Guest", "Email", "Listing", "Start", "End",
		"Check-in", "Check-out", "Total", "Status",
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}
}

func writeBookingRow(f *excelize.File, row int, booking *models.AdminBooking) {
	guestName, guestEmail := "(deleted)", ""
	if booking.User != nil {
		guestName = booking.User.Name
		guestEmail = booking.User.Email
	}
	listingTitle := "(deleted)"
	if booking.Listing != nil {
		listingTitle = booking.Listing.Title
	}

	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("A%d", row), booking.ID)
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("B%d", row), guestName)
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("C%d", row), guestEmail)
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("D%d", row), listingTitle)
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("E%d", row), booking.StartDate.Format("2006-01-02"))
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("F%d", row), booking.EndDate.Format("2006-01-02"))
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("G%d", row), booking.CheckInTime)
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("H%d", row), booking.CheckOutTime)
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("I%d", row), booking.TotalPrice.StringFixed(2))
	_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("J%d", row), statusCell(booking))

	if styleID, err := statusStyle(f, booking.Status); err == nil {
		cell := fmt.Sprintf("J%d", row)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, styleID)
	}
}

func statusCell(booking *models.AdminBooking) string {
	if booking.Status == models.StatusPending && !booking.IsPaid {
		return booking.Status + " (unpaid)"
	}
	return booking.Status
}

func statusStyle(f *excelize.File, status string) (int, error) {
	var color string
	switch status {
	case models.StatusConfirmed, models.StatusCompleted:
		color = "#C6EFCE"
	case models.StatusPending:
		color = "#FFEB9C"
	case models.StatusCancelled, models.StatusExpired:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}

	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
}
