package fileio

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSV reads CSV, converting legacy encodings (ISO-8859-1,
// windows-1252) to UTF-8 and sniffing the delimiter (";" is common in pt-BR
// exports).
func readCSV(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})

	if !utf8.Valid(b) {
		b, err = decodeLegacy(b)
		if err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(bytes.NewReader(b))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(b)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// decodeLegacy asks chardet for the charset and falls back to windows-1252,
// the usual culprit for non-UTF-8 spreadsheets exported on Windows.
func decodeLegacy(b []byte) ([]byte, error) {
	peek := b
	if len(peek) > 4096 {
		peek = peek[:4096]
	}
	cs := "windows-1252"
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		if strings.EqualFold(det.Charset, "ISO-8859-1") {
			cs = "iso-8859-1"
		}
	}
	dec := charmap.Windows1252.NewDecoder()
	if cs == "iso-8859-1" {
		dec = charmap.ISO8859_1.NewDecoder()
	}
	out, _, err := transform.Bytes(dec, b)
	return out, err
}

func sniffDelimiter(b []byte) rune {
	line := b
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		line = b[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
