// Package csvimport reads and writes the location spreadsheet used to bulk
// load communities: one row per location with its population and number of
// farmers.
package csvimport

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

type Lang string

const (
	English Lang = "en"
	Greek   Lang = "el"
)

var headers = map[Lang][]string{
	English: {"Name", "Community", "District", "Population", "Farmers"},
	Greek:   {"Όνομα", "Κοινότητα", "Επαρχία", "Πληθυσμός", "Αγρότες"},
}

var sampleRows = map[Lang][]Row{
	English: {
		{Name: "Pano Lefkara", Community: "Lefkara", District: "Larnaca", Population: 1200, Farmers: 85},
		{Name: "Kakopetria", Community: "Kakopetria", District: "Nicosia", Population: 1150, Farmers: 60},
		{Name: "Pissouri", Community: "Pissouri", District: "Limassol", Population: 1500, Farmers: 140},
	},
	Greek: {
		{Name: "Πάνω Λεύκαρα", Community: "Λεύκαρα", District: "Λάρνακα", Population: 1200, Farmers: 85},
		{Name: "Κακοπετριά", Community: "Κακοπετριά", District: "Λευκωσία", Population: 1150, Farmers: 60},
		{Name: "Πισσούρι", Community: "Πισσούρι", District: "Λεμεσός", Population: 1500, Farmers: 140},
	},
}

// ParseLang picks the template language from a query value or an
// Accept-Language header. Anything not Greek is English.
func ParseLang(values ...string) Lang {
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "el") || strings.HasPrefix(v, "gr") {
			return Greek
		}
		return English
	}
	return English
}

func Header(lang Lang) []string {
	h, ok := headers[lang]
	if !ok {
		h = headers[English]
	}
	return append([]string(nil), h...)
}

// SampleRows are the example rows written into the template.
func SampleRows(lang Lang) []Row {
	rows, ok := sampleRows[lang]
	if !ok {
		rows = sampleRows[English]
	}
	return append([]Row(nil), rows...)
}

// WriteTemplate writes the header row followed by the sample rows.
func WriteTemplate(w io.Writer, lang Lang) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(lang)); err != nil {
		return err
	}
	for _, r := range SampleRows(lang) {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r Row) record() []string {
	return []string{
		r.Name,
		r.Community,
		r.District,
		strconv.Itoa(r.Population),
		strconv.Itoa(r.Farmers),
	}
}
