package printing

import (
	"bytes"
	"strings"
)

const cutMarker = "\n--------------- cut --------------\n"

// Preview turns a command stream back into readable UTF-8: control
// sequences are dropped, barcodes shown as [CODE128 payload] and each
// cut as a marker line.
func Preview(data []byte, page CodePage) string {
	var (
		out strings.Builder
		run bytes.Buffer
	)
	flush := func() {
		out.WriteString(page.Decode(run.Bytes()))
		run.Reset()
	}

	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == esc && i+1 < len(data):
			if data[i+1] == '@' {
				i++
			} else {
				i += 2
			}
		case b == gs && i+1 < len(data):
			switch data[i+1] {
			case 'V':
				flush()
				out.WriteString(cutMarker)
				i += 2
			case 'k':
				flush()
				if i+3 >= len(data) {
					return out.String()
				}
				end := min(i+4+int(data[i+3]), len(data))
				payload := strings.TrimPrefix(string(data[i+4:end]), "{B")
				out.WriteString("[CODE128 " + payload + "]")
				i = end - 1
			default:
				i += 2
			}
		default:
			run.WriteByte(b)
		}
	}
	flush()
	return out.String()
}
