// Package receipt renders rental receipts as PDF documents.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/money"
)

// Filename is the download name of a rental's receipt.
func Filename(r model.Rental) string {
	return fmt.Sprintf("swiftwheelz-receipt-%d.pdf", r.RentID)
}

// Render builds an A4 receipt for the rental.
func Render(r model.Rental, issuedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("SwiftWheelz receipt %d", r.RentID), true)
	pdf.SetCreator("SwiftWheelz", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "SwiftWheelz Truck Rental")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Rental receipt")
	pdf.Ln(12)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}

	row("Rental number", fmt.Sprintf("%d", r.RentID))
	row("Issued", issuedAt.Format("2006-01-02 15:04"))
	pdf.Ln(4)

	if r.Customer != nil {
		row("Customer", dash(r.Customer.FullName()))
		row("Email", dash(r.Customer.Email))
	}
	if r.Truck != nil {
		row("Truck", r.Truck.Title())
		row("VIN", r.Truck.VIN)
		row("Licence plate", dash(r.Truck.LicensePlate))
	}
	row("Pick-up", branchLabel(r.PickUp))
	row("Drop-off", branchLabel(r.DropOff))
	row("Rent date", r.RentDate)
	row("Return date", r.ReturnDate)
	if r.Insurance != nil {
		row("Insurance", fmt.Sprintf("%s (%s)", r.Insurance.InsuranceType, r.Insurance.Provider))
	} else {
		row("Insurance", "None")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(50, 9, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, money.Format(r.TotalCost), "T", 1, "L", false, 0, "")
	row("Payment status", paymentStatus(r))

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Please present this receipt when collecting the truck.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %d: %w", r.RentID, err)
	}
	return buf.Bytes(), nil
}

func paymentStatus(r model.Rental) string {
	if r.IsPaymentMade {
		return "Paid"
	}
	return "Awaiting payment"
}

func branchLabel(b *model.Branch) string {
	if b == nil {
		return "-"
	}
	if addr := b.Address.String(); addr != "" {
		return b.BranchName + ", " + addr
	}
	return dash(b.BranchName)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
