package printing

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	esc = 0x1b
	gs  = 0x1d
)

// MaxBarcodePayload keeps CODE128 at module width 2 inside 384 dots.
const MaxBarcodePayload = 12

// TextReceipt wraps free text as a single printed page in page's table.
func TextReceipt(page CodePage, text string) []byte {
	d := NewDocument(page, 0).Init().Text(text)
	if !strings.HasSuffix(text, "\n") {
		d.NewLine()
	}
	return d.Cut().Bytes()
}

// Document accumulates the command stream for one printed page.
// It is built, dispatched once and thrown away.
type Document struct {
	buf   bytes.Buffer
	page  CodePage
	width int
}

func NewDocument(page CodePage, width int) *Document {
	if width <= 0 {
		width = 32
	}
	return &Document{page: page, width: width}
}

func (d *Document) raw(b ...byte) *Document {
	d.buf.Write(b)
	return d
}

// Init resets the printer and selects the document code page.
func (d *Document) Init() *Document {
	return d.raw(esc, '@', esc, 't', d.page.Table)
}

func (d *Document) Cut() *Document { return d.raw(gs, 'V', 0x00) }

func (d *Document) AlignCenter() *Document { return d.raw(esc, 'a', 0x01) }
func (d *Document) AlignLeft() *Document   { return d.raw(esc, 'a', 0x00) }

func (d *Document) NewLine() *Document { return d.raw('\n') }

// Lines feeds n blank lines.
func (d *Document) Lines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte('\n')
	}
	return d
}

func (d *Document) Large() *Document        { return d.raw(gs, '!', 0x11) }
func (d *Document) Normal() *Document       { return d.raw(gs, '!', 0x00) }
func (d *Document) DoubleHeight() *Document { return d.raw(gs, '!', 0x01) }
func (d *Document) Bold() *Document         { return d.raw(esc, 'E', 0x01) }
func (d *Document) BoldOff() *Document      { return d.raw(esc, 'E', 0x00) }

// Dark prints text emphasized and double struck.
func (d *Document) Dark(text string) *Document {
	d.raw(esc, 'E', 0x01, esc, 'G', 0x01)
	d.Text(text)
	return d.raw(esc, 'G', 0x00, esc, 'E', 0x00)
}

// MediumDark prints text double struck only.
func (d *Document) MediumDark(text string) *Document {
	d.raw(esc, 'G', 0x01)
	d.Text(text)
	return d.raw(esc, 'G', 0x00)
}

func (d *Document) Text(s string) *Document {
	d.buf.Write(d.page.Encode(s))
	return d
}

func (d *Document) Textf(format string, args ...any) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Fit truncates s to the paper width.
func (d *Document) Fit(s string) string {
	return runewidth.Truncate(s, d.width, "..")
}

// FitKeep truncates s so that s+suffix fits the paper, keeping suffix whole.
func (d *Document) FitKeep(s, suffix string) string {
	room := d.width - runewidth.StringWidth(suffix)
	if room < 0 {
		room = 0
	}
	return runewidth.Truncate(s, room, "..") + suffix
}

// Rule draws a horizontal line; width <= 0 spans the paper.
func (d *Document) Rule(ch rune, width int) *Document {
	if width <= 0 {
		width = d.width
	}
	return d.Text(strings.Repeat(string(ch), width))
}

// Row pads left and right into one paper-wide line.
func (d *Document) Row(left, right string) *Document {
	gap := d.width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		left = runewidth.Truncate(left, d.width-runewidth.StringWidth(right)-1, "")
		gap = 1
	}
	return d.Text(left + strings.Repeat(" ", gap) + right)
}

// Barcode prints a CODE128 symbol with human readable text below.
// Identifiers with nothing printable are skipped.
func (d *Document) Barcode(id string) *Document {
	payload := BarcodePayload(id)
	if payload == "" {
		return d
	}
	data := "{B" + payload
	d.raw(gs, 'h', 80)
	d.raw(gs, 'w', 2)
	d.raw(gs, 'H', 2)
	d.raw(gs, 'k', 73, byte(len(data)))
	d.buf.WriteString(data)
	return d
}

// BarcodePayload reduces an identifier to characters every CODE128 B
// printer accepts, capped at MaxBarcodePayload.
func BarcodePayload(id string) string {
	var b strings.Builder
	for _, r := range id {
		if b.Len() == MaxBarcodePayload {
			break
		}
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (d *Document) Bytes() []byte { return d.buf.Bytes() }
func (d *Document) Len() int      { return d.buf.Len() }
func (d *Document) Width() int    { return d.width }
