package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"horseshipt/models"
	"horseshipt/repository"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// waybillView is the template input for one rendered waybill.
type waybillView struct {
	Shipment    *models.Shipment
	Assignment  *models.Assignment
	Customer    *models.UserSummary
	Carrier     *models.UserSummary
	GeneratedAt string
	HorseCount  int
}

// GenerateWaybillPDF renders the waybill for a committed shipment to PDF via
// headless Chrome. The caller must be the owning customer or the assigned
// carrier; authorization is enforced by the repository.
func GenerateWaybillPDF(ctx context.Context, repo *repository.WaybillRepository, shipmentID, callerID string) ([]byte, error) {
	data, err := repo.GetWaybillData(ctx, shipmentID, callerID)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFiles("templates/waybill_template.html")
	if err != nil {
		return nil, err
	}

	view := waybillView{
		Shipment:    data.Shipment,
		Assignment:  data.Assignment,
		Customer:    data.Customer,
		Carrier:     data.Carrier,
		GeneratedAt: time.Now().UTC().Format("02-Jan-2006 15:04 MST"),
		HorseCount:  data.Shipment.NumberOfHorses,
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, view); err != nil {
		return nil, err
	}

	finalHTML := `
		<!DOCTYPE html>
		<html>
		<head>
		<meta charset="UTF-8">
		<style>
		@page {
			size: A4;
			margin: 20px;
		}
		body {
			font-family: Arial, Helvetica, sans-serif;
			font-size: 12px;
			margin: 0;
			padding: 0;
		}
		.waybill {
			page-break-inside: avoid;
			border: none;
		}
		</style>
		</head>
		<body>` + body.String() + `</body></html>`

	// Create temp HTML file
	tmpDir := os.TempDir()
	tmpHTML := filepath.Join(tmpDir, fmt.Sprintf("waybill_%s_%s.html", shipmentID, time.Now().Format("20060102150405")))
	if err := os.WriteFile(tmpHTML, []byte(finalHTML), 0644); err != nil {
		return nil, err
	}
	defer os.Remove(tmpHTML)

	// Generate PDF with headless Chrome
	chromeCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuf []byte
	fileURL := "file://" + tmpHTML

	err = chromedp.Run(chromeCtx,
		chromedp.Navigate(fileURL),
		chromedp.Sleep(1*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 width
				WithPaperHeight(11.7). // A4 height
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}
