package packets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/disputedesk/disputedesk-backend/internal/disputes"
	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
	"github.com/disputedesk/disputedesk-backend/pkg/enums"
)

const boilerplateExplanation = "The merchant asserts that this payment was valid and fulfilled as agreed. " +
	"The following exhibits provide supporting documentation."

var kindDescriptions = map[enums.EvidenceKind]string{
	enums.EvidenceKindInvoice:    "Invoice/receipt showing date, amount, and purchased items.",
	enums.EvidenceKindTracking:   "Shipping/tracking proof showing delivery to cardholder's address.",
	enums.EvidenceKindChat:       "Customer communication relevant to this dispute.",
	enums.EvidenceKindTOS:        "Terms/refund policy as presented to the customer.",
	enums.EvidenceKindScreenshot: "Screenshot supporting the merchant's position for this dispute.",
}

const defaultKindDescription = "Supporting documentation for this dispute."

func describeKind(kind enums.EvidenceKind) string {
	if desc, ok := kindDescriptions[kind]; ok {
		return desc
	}
	return defaultKindDescription
}

// exhibitLabel names exhibits A through Z, then switches to their 1-based
// position ("27", "28", ...).
func exhibitLabel(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return strconv.Itoa(index + 1)
}

// formatAmount renders a minor-unit amount as "25.50 USD".
func formatAmount(amount int64, currency string) string {
	value := decimal.NewFromInt(amount).Div(decimal.NewFromInt(100))
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "USD"
	}
	return value.StringFixed(2) + " " + code
}

// formatBytes renders a byte count as "512 B", "12.3 KB", or "1.2 MB".
func formatBytes(size int64) string {
	if size <= 0 {
		return "N/A"
	}
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	if size < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(size)/1024/1024)
}

// humanize turns snake_case Stripe identifiers into readable labels.
func humanize(value string) string {
	return strings.ReplaceAll(value, "_", " ")
}

// isImageExhibit reports whether the file gets its own exhibit page. Only
// image uploads are embeddable; everything else stays index-only.
func isImageExhibit(fileName string) bool {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// indexEntry is one rendered row of the evidence index. Labels follow
// upload order across all files, so index-only rows still consume letters.
type indexEntry struct {
	label       string
	kind        string
	fileName    string
	description string
}

func indexEntries(files []models.EvidenceFile) []indexEntry {
	entries := make([]indexEntry, 0, len(files))
	for i, file := range files {
		entries = append(entries, indexEntry{
			label:       exhibitLabel(i),
			kind:        strings.ToUpper(file.Kind.String()),
			fileName:    file.FileName,
			description: describeKind(file.Kind),
		})
	}
	return entries
}

type renderInput struct {
	dispute     *disputes.Dispute
	explanation string
	files       []models.EvidenceFile
	openBlob    func(ctx context.Context, storedPath string) (io.ReadCloser, error)
	generatedAt time.Time
}

// renderPacket lays out the packet: header, dispute summary, merchant
// explanation, customer details, evidence index, then one page per image
// exhibit. An exhibit whose image cannot be embedded gets an inline warning
// instead of failing the whole packet.
func renderPacket(ctx context.Context, in renderInput) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	entries := indexEntries(in.files)

	writeHeader(pdf, in)
	writeSummary(pdf, in.dispute)
	writeExplanation(pdf, in.explanation)
	writeCustomerDetails(pdf, in.dispute.CustomerEvidence)
	writeEvidenceIndex(pdf, entries)

	for i, file := range in.files {
		if !isImageExhibit(file.FileName) {
			continue
		}
		writeExhibitPage(ctx, pdf, entries[i], file, in.openBlob)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render packet pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, in renderInput) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Dispute Evidence Packet", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 5, "Dispute "+in.dispute.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Generated "+in.generatedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
}

func writeSummary(pdf *fpdf.Fpdf, dp *disputes.Dispute) {
	sectionTitle(pdf, "Dispute Summary")

	rows := [][2]string{
		{"Amount", formatAmount(dp.Amount, dp.Currency)},
		{"Reason", humanize(dp.Reason)},
		{"Status", humanize(dp.Status.String())},
		{"Opened", dp.CreatedAt.UTC().Format("2006-01-02 15:04 MST")},
	}
	if dp.DueBy != nil {
		rows = append(rows, [2]string{"Response due", dp.DueBy.UTC().Format("2006-01-02 15:04 MST")})
	}
	if dp.ChargeID != "" {
		rows = append(rows, [2]string{"Charge", dp.ChargeID})
	}
	if dp.PaymentIntentID != "" {
		rows = append(rows, [2]string{"Payment intent", dp.PaymentIntentID})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func writeExplanation(pdf *fpdf.Fpdf, explanation string) {
	sectionTitle(pdf, "Merchant Explanation")
	if strings.TrimSpace(explanation) == "" {
		explanation = boilerplateExplanation
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, explanation, "", "L", false)
	pdf.Ln(3)
}

func writeCustomerDetails(pdf *fpdf.Fpdf, ev disputes.DisputeContext) {
	rows := [][2]string{}
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			rows = append(rows, [2]string{label, value})
		}
	}
	add("Name", ev.CustomerName)
	add("Email", ev.CustomerEmail)
	add("Billing address", ev.BillingAddress)
	add("Shipping address", ev.ShippingAddress)
	add("Product", ev.ProductDescription)
	add("Purchase IP", ev.PurchaseIP)
	if len(rows) == 0 {
		return
	}

	sectionTitle(pdf, "Customer Details")
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func writeEvidenceIndex(pdf *fpdf.Fpdf, entries []indexEntry) {
	sectionTitle(pdf, "Evidence Index")
	if len(entries) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, "No evidence files uploaded.", "", 1, "L", false, 0, "")
		pdf.Ln(3)
		return
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(18, 7, "Exhibit", "1", 0, "L", true, 0, "")
	pdf.CellFormat(26, 7, "Type", "1", 0, "L", true, 0, "")
	pdf.CellFormat(56, 7, "Filename", "1", 0, "L", true, 0, "")
	pdf.CellFormat(0, 7, "Description", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, entry := range entries {
		pdf.CellFormat(18, 7, entry.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(26, 7, entry.kind, "1", 0, "L", false, 0, "")
		pdf.CellFormat(56, 7, truncate(entry.fileName, 34), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, truncate(entry.description, 60), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func writeExhibitPage(ctx context.Context, pdf *fpdf.Fpdf, entry indexEntry, file models.EvidenceFile, openBlob func(context.Context, string) (io.ReadCloser, error)) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Exhibit %s - %s (%s)", entry.label, entry.kind, entry.fileName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 5, fmt.Sprintf("Uploaded: %s  |  Size: %s", file.CreatedAt.UTC().Format("2006-01-02 15:04 MST"), formatBytes(file.SizeBytes)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, entry.description, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	blob, err := openBlob(ctx, file.StoredPath)
	if err != nil {
		writeExhibitWarning(pdf, "File could not be read from storage.")
		return
	}
	defer blob.Close()

	if !embedImage(pdf, file, blob) {
		writeExhibitWarning(pdf, "Image could not be embedded.")
	}
}

// embedImage registers and places the exhibit image scaled to the remaining
// page area. fpdf latches its first error, so a bad image is detected via
// Ok() and cleared to keep the rest of the document rendering.
func embedImage(pdf *fpdf.Fpdf, file models.EvidenceFile, blob io.Reader) bool {
	imageType := "jpg"
	if strings.HasSuffix(strings.ToLower(file.StoredPath), ".png") {
		imageType = "png"
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader(file.StoredPath, opts, blob)
	if !pdf.Ok() || info == nil {
		pdf.ClearError()
		return false
	}

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	maxW := pageW - left - right
	maxH := pageH - pdf.GetY() - bottom

	imgW, imgH := info.Extent()
	if imgW <= 0 || imgH <= 0 {
		return false
	}
	scale := maxW / imgW
	if s := maxH / imgH; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}

	pdf.ImageOptions(file.StoredPath, left, pdf.GetY(), imgW*scale, imgH*scale, false, opts, 0, "")
	if !pdf.Ok() {
		pdf.ClearError()
		return false
	}
	return true
}

func writeExhibitWarning(pdf *fpdf.Fpdf, message string) {
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(180, 60, 60)
	pdf.CellFormat(0, 6, "Warning: "+message, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
