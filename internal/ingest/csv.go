package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/atmscope/internal/store"
	"golang.org/x/text/encoding/charmap"
)

// ErrMissingColumn reports a required column absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// RequiredColumns are matched case-insensitively against the header.
var RequiredColumns = []string{"NAME", "ADDRESS", "X", "Y", "WARD", "ZIPCODE"}

// Options controls delimited-file reading.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
}

// Result is the outcome of reading a delimited file.
type Result struct {
	Rows     []store.ATM
	Read     int // data rows seen
	Skipped  int // rows dropped for unparsable coordinates or empty name
	Encoding string
	Warnings []string
}

// ReadFile reads ATM rows from a delimited file.
func ReadFile(path string, opt Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	text, enc, err := decode(data)
	if err != nil {
		return nil, err
	}
	res, err := Read(strings.NewReader(text), delim)
	if err != nil {
		return nil, err
	}
	res.Encoding = enc
	return res, nil
}

// Read parses delimited UTF-8 text.
func Read(src io.Reader, delim rune) (*Result, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	cols := make(map[string]int, len(RequiredColumns))
	for _, c := range RequiredColumns {
		i, ok := idx[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		cols[c] = i
	}

	res := &Result{}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", res.Read+1, err)
		}
		res.Read++
		get := func(c string) string {
			i := cols[c]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		name := get("NAME")
		x, xerr := parseFloat(get("X"))
		y, yerr := parseFloat(get("Y"))
		if name == "" || xerr != nil || yerr != nil {
			res.Skipped++
			if len(res.Warnings) < 10 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: missing name or unparsable X/Y", res.Read))
			}
			continue
		}
		res.Rows = append(res.Rows, store.ATM{
			Name:    name,
			Address: get("ADDRESS"),
			X:       x,
			Y:       y,
			Ward:    nullableKey(get("WARD")),
			ZipCode: nullableKey(get("ZIPCODE")),
		})
	}
	return res, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// decode strips a UTF-8 BOM, or falls back to Windows-1252 for files that
// are not valid UTF-8.
func decode(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}
	s, err := charmap.Windows1252.NewDecoder().String(string(data))
	if err != nil {
		return "", "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return s, "windows-1252", nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not finite")
	}
	return f, nil
}

// nullableKey maps empty values to NULL and integral floats ("2.0") to
// their integer form so ward and ZIP keys group consistently.
func nullableKey(s string) *string {
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		s = strconv.FormatInt(int64(f), 10)
	}
	return &s
}
