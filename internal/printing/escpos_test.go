package printing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextReceipt(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []byte
	}{
		{name: "adds newline", text: "hello", want: []byte("\x1b@\x1bt\x13hello\n\x1dV\x00")},
		{name: "keeps trailing newline", text: "hello\n", want: []byte("\x1b@\x1bt\x13hello\n\x1dV\x00")},
		{name: "empty", text: "", want: []byte("\x1b@\x1bt\x13\n\x1dV\x00")},
		{name: "encodes accents", text: "café", want: []byte("\x1b@\x1bt\x13caf\x82\n\x1dV\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextReceipt(DefaultCodePage(), tt.text))
		})
	}
}

func TestDocumentInitSelectsCodePageAndCuts(t *testing.T) {
	doc := NewDocument(DefaultCodePage(), 32).Init().Text("X").Cut()
	got := doc.Bytes()

	assert.True(t, bytes.HasPrefix(got, []byte{esc, '@', esc, 't', 19}))
	assert.True(t, bytes.HasSuffix(got, []byte{gs, 'V', 0x00}))
}

func TestDocumentEncodesAccents(t *testing.T) {
	doc := NewDocument(DefaultCodePage(), 32).Text("Année – été")
	// PC858: é = 0x82
	assert.Equal(t, []byte{'A', 'n', 'n', 0x82, 'e', ' ', '-', ' ', 0x82, 't', 0x82}, doc.Bytes())
}

func TestDocumentRuleAndRow(t *testing.T) {
	doc := NewDocument(DefaultCodePage(), 16)
	doc.Rule('=', 0).NewLine().Rule('-', 4).NewLine().Row("Commandes:", "12")

	lines := strings.Split(string(doc.Bytes()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Repeat("=", 16), lines[0])
	assert.Equal(t, "----", lines[1])
	assert.Equal(t, "Commandes:    12", lines[2])
	assert.Len(t, lines[2], 16)
}

func TestDocumentFitTruncatesToPaper(t *testing.T) {
	doc := NewDocument(DefaultCodePage(), 10)
	assert.Equal(t, "Cappucci..", doc.Fit("Cappuccino noisette"))
	assert.Equal(t, "Espresso", doc.Fit("Espresso"))
}

func TestDocumentDarknessPresets(t *testing.T) {
	dark := NewDocument(DefaultCodePage(), 32).Dark("A").Bytes()
	medium := NewDocument(DefaultCodePage(), 32).MediumDark("A").Bytes()

	assert.Equal(t, []byte{esc, 'E', 1, esc, 'G', 1, 'A', esc, 'G', 0, esc, 'E', 0}, dark)
	assert.Equal(t, []byte{esc, 'G', 1, 'A', esc, 'G', 0}, medium)
}

func TestBarcodePayload(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "uuid truncated", id: "3f2b8c1e-9a7d-4e21-b5f0-1c2d3e4f5a6b", want: "3f2b8c1e-9a7"},
		{name: "drops symbols", id: "CMD #42/A", want: "CMD42A"},
		{name: "empty", id: "###", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BarcodePayload(tt.id))
		})
	}
}

func TestDocumentBarcodeCommand(t *testing.T) {
	got := NewDocument(DefaultCodePage(), 32).Barcode("A1").Bytes()
	want := []byte{gs, 'h', 80, gs, 'w', 2, gs, 'H', 2, gs, 'k', 73, 4, '{', 'B', 'A', '1'}
	assert.Equal(t, want, got)

	assert.Empty(t, NewDocument(DefaultCodePage(), 32).Barcode("***").Bytes())
}

func TestLookupCodePage(t *testing.T) {
	cp, err := LookupCodePage(" CP850 ")
	require.NoError(t, err)
	assert.Equal(t, byte(2), cp.Table)

	_, err = LookupCodePage("utf8")
	assert.Error(t, err)
}

func TestTextDropsControlBytes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []byte
	}{
		{name: "cut command", text: "Cafe\x1dV\x00noir", want: []byte("CafeVnoir")},
		{name: "escape reset", text: "\x1b@Thé", want: []byte{'@', 'T', 'h', 0x82}},
		{name: "tab becomes space", text: "a\tb", want: []byte("a b")},
		{name: "newline kept", text: "a\nb", want: []byte("a\nb")},
		{name: "c1 and delete", text: "a\u0085b\x7f", want: []byte("ab")},
		{name: "unmapped rune", text: "a→b", want: []byte("a?b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDocument(DefaultCodePage(), 32).Text(tt.text).Bytes())
		})
	}
}
