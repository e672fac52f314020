package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/agriquest/model"
)

var (
	ErrEmptyFile = errors.New("the file is empty")
	ErrBadHeader = errors.New("unrecognized header row")
)

// Row is one location read from the spreadsheet. Line is 1-based and counts
// the header.
type Row struct {
	Line       int    `json:"line"`
	Name       string `json:"name"`
	Community  string `json:"community"`
	District   string `json:"district"`
	Population int    `json:"population"`
	Farmers    int    `json:"farmers"`
}

func (r Row) Location() model.Location {
	return model.Location{
		Name:       r.Name,
		Community:  r.Community,
		District:   r.District,
		Population: r.Population,
		Farmers:    r.Farmers,
	}
}

// Rejection is a row that could not be imported.
type Rejection struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Parse reads a spreadsheet in either header language. Rows that cannot be
// read are returned as rejections; err is set only when the file as a whole
// is unusable.
func Parse(r io.Reader) (rows []Row, rejected []Rejection, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, err
	}
	if !isHeader(header) {
		return nil, nil, fmt.Errorf("%w: %s", ErrBadHeader, strings.Join(header, ","))
	}

	rows = []Row{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			rejected = append(rejected, Rejection{Line: parseErr.StartLine, Reason: parseErr.Err.Error()})
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := cr.FieldPos(0)
		if isBlank(record) {
			continue
		}

		row, err := parseRecord(line, record)
		if err != nil {
			rejected = append(rejected, Rejection{Line: line, Name: row.Name, Reason: err.Error()})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rejected, nil
}

func parseRecord(line int, record []string) (Row, error) {
	row := Row{Line: line}
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	row.Name = field(0)
	row.Community = field(1)
	row.District = field(2)

	var result *multierror.Error
	if len(record) != 5 {
		result = multierror.Append(result, fmt.Errorf("expected 5 columns, found %d", len(record)))
	}
	if row.Name == "" {
		result = multierror.Append(result, errors.New("name is required"))
	}
	if row.Community == "" {
		result = multierror.Append(result, errors.New("community is required"))
	}
	if row.District == "" {
		result = multierror.Append(result, errors.New("district is required"))
	}

	var err error
	if row.Population, err = count(field(3)); err != nil {
		result = multierror.Append(result, fmt.Errorf("population %s", err))
	}
	if row.Farmers, err = count(field(4)); err != nil {
		result = multierror.Append(result, fmt.Errorf("farmers %s", err))
	}
	if result == nil && row.Farmers > row.Population {
		result = multierror.Append(result, errors.New("farmers exceed population"))
	}

	if result != nil {
		result.ErrorFormat = joinErrors
	}
	return row, result.ErrorOrNil()
}

func count(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("cannot be negative")
	}
	return n, nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func isHeader(record []string) bool {
	for _, h := range headers {
		if len(record) < len(h) {
			continue
		}
		match := true
		for i := range h {
			cell := strings.TrimSpace(strings.TrimPrefix(record[i], "\ufeff"))
			if !strings.EqualFold(cell, h[i]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
