package packets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/disputedesk/disputedesk-backend/internal/disputes"
	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
	"github.com/disputedesk/disputedesk-backend/pkg/enums"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
)

func TestExhibitLabel(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "27"},
		{27, "28"},
		{99, "100"},
	}
	for _, tc := range cases {
		if got := exhibitLabel(tc.index); got != tc.want {
			t.Fatalf("exhibitLabel(%d) = %q, want %q", tc.index, got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   int64
		currency string
		want     string
	}{
		{2550, "usd", "25.50 USD"},
		{100, "eur", "1.00 EUR"},
		{99, "gbp", "0.99 GBP"},
		{0, "", "0.00 USD"},
		{123456789, "jpy", "1234567.89 JPY"},
	}
	for _, tc := range cases {
		if got := formatAmount(tc.amount, tc.currency); got != tc.want {
			t.Fatalf("formatAmount(%d,%q) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestHumanize(t *testing.T) {
	if got := humanize("product_not_received"); got != "product not received" {
		t.Fatalf("humanize = %q", got)
	}
	if got := humanize("warning_needs_response"); got != "warning needs response" {
		t.Fatalf("humanize = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "N/A"},
		{-5, "N/A"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{1536, "1.5 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.size); got != tc.want {
			t.Fatalf("formatBytes(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestIsImageExhibit(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"receipt.png", true},
		{"photo.JPG", true},
		{"scan.jpeg", true},
		{"statement.pdf", false},
		{"notes.txt", false},
		{"noextension", false},
	}
	for _, tc := range cases {
		if got := isImageExhibit(tc.name); got != tc.want {
			t.Fatalf("isImageExhibit(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIndexEntriesLabelsInUploadOrder(t *testing.T) {
	files := make([]models.EvidenceFile, 30)
	for i := range files {
		files[i] = models.EvidenceFile{
			Kind:     enums.EvidenceKindTracking,
			FileName: "file.png",
		}
	}
	files[0].Kind = enums.EvidenceKindInvoice
	files[0].FileName = "receipt.png"

	entries := indexEntries(files)
	if len(entries) != len(files) {
		t.Fatalf("expected %d entries, got %d", len(files), len(entries))
	}

	wantLabels := []string{"A", "B"}
	for i, want := range wantLabels {
		if entries[i].label != want {
			t.Fatalf("entry %d label = %q, want %q", i, entries[i].label, want)
		}
	}
	if entries[25].label != "Z" {
		t.Fatalf("entry 25 label = %q, want Z", entries[25].label)
	}
	for i, want := range []string{"27", "28", "29", "30"} {
		if got := entries[26+i].label; got != want {
			t.Fatalf("entry %d label = %q, want %q", 26+i, got, want)
		}
	}

	if entries[0].kind != "INVOICE" {
		t.Fatalf("entry 0 kind = %q, want INVOICE", entries[0].kind)
	}
	if entries[1].kind != "TRACKING" {
		t.Fatalf("entry 1 kind = %q, want TRACKING", entries[1].kind)
	}
	if entries[0].fileName != "receipt.png" {
		t.Fatalf("entry 0 file name = %q", entries[0].fileName)
	}
	if entries[0].description != describeKind(enums.EvidenceKindInvoice) {
		t.Fatalf("entry 0 description = %q", entries[0].description)
	}
}

func TestDescribeKindFallsBack(t *testing.T) {
	if got := describeKind(enums.EvidenceKindInvoice); got == defaultKindDescription {
		t.Fatal("invoice should have a dedicated description")
	}
	if got := describeKind(enums.EvidenceKindOther); got != defaultKindDescription {
		t.Fatalf("other = %q", got)
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testDispute() *disputes.Dispute {
	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	return &disputes.Dispute{
		ID:        "dp_render",
		ChargeID:  "ch_1",
		Reason:    "product_not_received",
		Amount:    2550,
		Currency:  "usd",
		Status:    "needs_response",
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueBy:     &due,
		CustomerEvidence: disputes.DisputeContext{
			CustomerName:  "Ada Lovelace",
			CustomerEmail: "ada@example.com",
		},
	}
}

// pdfPageCount counts page objects in the rendered document. Page objects
// carry "/Type /Page" and the single pages root carries "/Type /Pages".
func pdfPageCount(out []byte) int {
	return bytes.Count(out, []byte("/Type /Page")) - bytes.Count(out, []byte("/Type /Pages"))
}

func TestRenderPacketProducesPDF(t *testing.T) {
	pngData := testPNG(t)
	files := []models.EvidenceFile{
		{FileName: "receipt.png", StoredPath: "blob/receipt.png", Kind: enums.EvidenceKindInvoice},
		{FileName: "tracking.png", StoredPath: "blob/tracking.png", Kind: enums.EvidenceKindTracking},
	}
	open := func(_ context.Context, path string) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(pngData)), nil
	}

	out, err := renderPacket(context.Background(), renderInput{
		dispute:     testDispute(),
		explanation: "Order 1042 was shipped on time and delivered.",
		files:       files,
		openBlob:    open,
		generatedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("renderPacket: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:8])
	}
	if got := pdfPageCount(out); got != 3 {
		t.Fatalf("expected summary page plus two exhibit pages, got %d pages", got)
	}
}

func TestRenderPacketSinglePNGGetsExhibitPage(t *testing.T) {
	pngData := testPNG(t)
	files := []models.EvidenceFile{
		{FileName: "receipt.png", StoredPath: "blob/receipt.png", Kind: enums.EvidenceKindInvoice, SizeBytes: int64(len(pngData))},
	}
	open := func(_ context.Context, path string) (io.ReadCloser, error) {
		if path != "blob/receipt.png" {
			t.Fatalf("unexpected blob path %q", path)
		}
		return io.NopCloser(bytes.NewReader(pngData)), nil
	}

	out, err := renderPacket(context.Background(), renderInput{
		dispute:     testDispute(),
		explanation: "Delivered and signed for.",
		files:       files,
		openBlob:    open,
		generatedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("renderPacket: %v", err)
	}
	if got := pdfPageCount(out); got != 2 {
		t.Fatalf("expected index page plus one exhibit page, got %d pages", got)
	}
}

func TestRenderPacketSkipsNonImageExhibitPages(t *testing.T) {
	pngData := testPNG(t)
	files := []models.EvidenceFile{
		{FileName: "statement.pdf", StoredPath: "blob/statement.pdf", Kind: enums.EvidenceKindOther},
		{FileName: "receipt.png", StoredPath: "blob/receipt.png", Kind: enums.EvidenceKindInvoice},
	}
	opened := []string{}
	open := func(_ context.Context, path string) (io.ReadCloser, error) {
		opened = append(opened, path)
		return io.NopCloser(bytes.NewReader(pngData)), nil
	}

	out, err := renderPacket(context.Background(), renderInput{
		dispute:     testDispute(),
		files:       files,
		openBlob:    open,
		generatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("renderPacket: %v", err)
	}
	if got := pdfPageCount(out); got != 2 {
		t.Fatalf("expected one exhibit page for the image only, got %d pages", got)
	}
	if len(opened) != 1 || opened[0] != "blob/receipt.png" {
		t.Fatalf("only the image blob should be opened, opened %v", opened)
	}
}

func TestRenderPacketSurvivesUnreadableImage(t *testing.T) {
	files := []models.EvidenceFile{
		{FileName: "missing.png", StoredPath: "blob/missing.png", Kind: enums.EvidenceKindScreenshot},
		{FileName: "corrupt.png", StoredPath: "blob/corrupt.png", Kind: enums.EvidenceKindChat},
	}
	open := func(_ context.Context, path string) (io.ReadCloser, error) {
		if path == "blob/missing.png" {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blob not found")
		}
		return io.NopCloser(bytes.NewReader([]byte("not an image"))), nil
	}

	out, err := renderPacket(context.Background(), renderInput{
		dispute:     testDispute(),
		files:       files,
		openBlob:    open,
		generatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("renderPacket: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("packet with broken exhibits must still render")
	}
}

func TestRenderPacketWithoutEvidenceOrExplanation(t *testing.T) {
	out, err := renderPacket(context.Background(), renderInput{
		dispute:     testDispute(),
		openBlob:    func(context.Context, string) (io.ReadCloser, error) { return nil, nil },
		generatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("renderPacket: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("empty packet must still render")
	}
}
