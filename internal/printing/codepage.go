package printing

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// CodePage pairs an ESC t table number with the charmap used to encode text
// for it. Most 58mm thermal printers ship with PC437, PC850 and PC858.
type CodePage struct {
	Name    string
	Table   byte
	charmap *charmap.Charmap
}

var codePages = map[string]CodePage{
	"cp437": {Name: "cp437", Table: 0, charmap: charmap.CodePage437},
	"cp850": {Name: "cp850", Table: 2, charmap: charmap.CodePage850},
	"cp858": {Name: "cp858", Table: 19, charmap: charmap.CodePage858},
}

// typographic punctuation the printer tables lack
var asciiFolds = strings.NewReplacer(
	"–", "-",
	"—", "-",
	"‘", "'",
	"’", "'",
	"“", "\"",
	"”", "\"",
	"…", "...",
	"\u00a0", " ",
	"\u202f", " ",
)

func LookupCodePage(name string) (CodePage, error) {
	cp, ok := codePages[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CodePage{}, fmt.Errorf("unsupported code page %q", name)
	}
	return cp, nil
}

// DefaultCodePage is PC858 (PC850 with the euro sign).
func DefaultCodePage() CodePage {
	return codePages["cp858"]
}

// Encode converts UTF-8 text to the printer table. Runes with no mapping are
// replaced rather than failing the document. Control characters other than
// newline are dropped so text can never start a printer command.
func (c CodePage) Encode(s string) []byte {
	s = strings.Map(printable, asciiFolds.Replace(s))
	if c.charmap == nil {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(c.charmap.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	// the charmap substitute is SUB (0x1a), itself a control byte
	return bytes.ReplaceAll(out, []byte{0x1a}, []byte{'?'})
}

func printable(r rune) rune {
	switch {
	case r == '\n':
		return r
	case r == '\t':
		return ' '
	case unicode.IsControl(r):
		return -1
	}
	return r
}

// Decode maps printer bytes back to UTF-8.
func (c CodePage) Decode(b []byte) string {
	if c.charmap == nil {
		return string(b)
	}
	out, err := c.charmap.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
