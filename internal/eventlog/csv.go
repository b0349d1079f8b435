package eventlog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Storage and export both use ISO dates. Older files were written with
// inconsistent formats, so the parser accepts a few known shapes on the way
// in but only ever writes ISODate back out.
const ISODate = "2006-01-02"

var legacyDateFormats = []string{
	ISODate,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range legacyDateFormats {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Midnight(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// EncodeCSV renders the log in the modern storage format: a date,count
// header followed by one ISO-dated row per entry, ordered by date.
func EncodeCSV(l *Log) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "count"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range l.Entries() {
		if err := w.Write([]string{e.Date.Format(ISODate), strconv.Itoa(e.Count)}); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses a stored log. The header decides the schema version:
// files with a count column use upsert semantics (last row for a date wins),
// legacy files without one hold one row per event, so rows for the same date
// accumulate with a count of 1 each.
//
// Rows whose date cannot be parsed are dropped and reported as warnings;
// they never fail the load.
func DecodeCSV(data []byte) (*Log, []string, error) {
	l := NewLog()
	if len(bytes.TrimSpace(data)) == 0 {
		return l, nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	dateCol, countCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "count":
			countCol = i
		}
	}
	if dateCol == -1 {
		return nil, nil, fmt.Errorf("csv header has no date column: %v", header)
	}
	hasCount := countCol != -1

	var warnings []string
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v, row dropped", line, err))
			continue
		}
		if dateCol >= len(record) {
			warnings = append(warnings, fmt.Sprintf("line %d: missing date field, row dropped", line))
			continue
		}

		date, err := parseDate(record[dateCol])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v, row dropped", line, err))
			continue
		}

		if !hasCount {
			// Legacy schema: one row per meat-eating event.
			l.Add(date, 1)
			continue
		}

		count := 1
		if countCol < len(record) && strings.TrimSpace(record[countCol]) != "" {
			count, err = strconv.Atoi(strings.TrimSpace(record[countCol]))
			if err != nil || count < 0 {
				warnings = append(warnings, fmt.Sprintf("line %d: invalid count %q, row dropped", line, record[countCol]))
				continue
			}
		}
		if err := l.Upsert(date, count); err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v, row dropped", line, err))
		}
	}

	return l, warnings, nil
}
