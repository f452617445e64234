package source

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns data as UTF-8 and the name of the encoding it was read
// as. Tried in order: UTF-8 (BOM stripped), Windows-1252, ISO-8859-1.
func decodeText(data []byte) ([]byte, string) {
	if bytes.HasPrefix(data, utf8BOM) {
		return data[len(utf8BOM):], "utf-8-sig"
	}
	if utf8.Valid(data) {
		return data, "utf-8"
	}

	if out, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
		return out, "windows-1252"
	}

	// ISO-8859-1 maps every byte, so it cannot fail.
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return out, "iso-8859-1"
}

// detectDelimiter picks the most frequent of ',', ';' and tab in the
// header line.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', 0
	for _, c := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
