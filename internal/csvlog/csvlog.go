package csvlog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"apptlog/internal/model"
)

// Log is an append-only CSV appointment log at a fixed path.
// It satisfies appointment.Store.
type Log struct {
	Path string
}

// New returns a Log for path.
func New(path string) *Log {
	return &Log{Path: path}
}

// Append writes rec as one row. A new or empty file gets the header first.
//
// The file is opened and closed within the call, and header plus row go
// out in a single write.
func (l *Log) Append(rec model.Appointment) error {
	if l.Path == "" {
		return errors.New("csvlog: path is empty")
	}

	if dir := filepath.Dir(l.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if st.Size() == 0 {
		if err := encodeRow(&buf, model.Header); err != nil {
			return err
		}
	}
	if err := encodeRow(&buf, rec.Row()); err != nil {
		return err
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	return f.Close()
}

// ReadAll returns every appointment in the log, oldest first. Dates are
// placed at midnight in loc (time.Local when nil). A missing file yields
// an empty list.
func (l *Log) ReadAll(loc *time.Location) ([]model.Appointment, error) {
	if loc == nil {
		loc = time.Local
	}

	f, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Appointment{}, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(model.Header)

	out := make([]model.Appointment, 0)
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && isHeader(row) {
			continue
		}

		date, err := time.ParseInLocation(model.DateLayout, row[0], loc)
		if err != nil {
			return nil, fmt.Errorf("csvlog: row %d: %w", line, err)
		}
		out = append(out, model.Appointment{
			Date:   date,
			Day:    row[1],
			Time:   row[2],
			Reason: row[3],
		})
	}
	return out, nil
}

// encodeRow appends one CRLF-terminated record to buf. Field bytes are
// kept as-is inside quotes: csv.Writer's UseCRLF would also rewrite \r and
// \n within fields, so only the terminator is swapped here.
func encodeRow(buf *bytes.Buffer, row []string) error {
	w := csv.NewWriter(buf)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	// The writer always ends a record with a single '\n'.
	buf.Truncate(buf.Len() - 1)
	buf.WriteString("\r\n")
	return nil
}

func isHeader(row []string) bool {
	for i, h := range model.Header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), h) {
			return false
		}
	}
	return true
}
