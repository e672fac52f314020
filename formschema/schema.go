// Package formschema holds the questionnaire form document: the editable
// component list used by the builder, its wire representation understood by
// the form-builder client library, and the renderer that captures answers.
package formschema

import (
	"errors"
	"fmt"
	"strconv"
)

type Type string

const (
	TextField Type = "textfield"
	TextArea  Type = "textarea"
	Number    Type = "number"
	Email     Type = "email"
	Date      Type = "date"
	Select    Type = "select"
	Radio     Type = "radio"
	Checkbox  Type = "checkbox"
	Table     Type = "table"
	Button    Type = "button"
)

const DisplayForm = "form"

// Types lists every kind a builder can add, in palette order.
var Types = []Type{TextField, TextArea, Number, Email, Date, Select, Radio, Checkbox, Table}

var (
	ErrComponentNotFound = errors.New("component not found")
	ErrUnknownType       = errors.New("unknown component type")
	ErrDuplicateKey      = errors.New("duplicate component key")
	ErrCellOutOfRange    = errors.New("table cell out of range")
)

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ColumnSpec is one column of a table component.
type ColumnSpec struct {
	Key      string   `json:"key"`
	Type     Type     `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []Option `json:"options,omitempty"`
}

// FormComponent is one question as edited in the builder.
type FormComponent struct {
	Key      string       `json:"key"`
	Type     Type         `json:"type"`
	Label    string       `json:"label"`
	Required bool         `json:"required"`
	Options  []Option     `json:"options,omitempty"`
	Columns  []ColumnSpec `json:"columns,omitempty"`
	Rows     int          `json:"rows,omitempty"`
}

func (c FormComponent) clone() FormComponent {
	out := c
	out.Options = cloneOptions(c.Options)
	if c.Columns != nil {
		out.Columns = make([]ColumnSpec, len(c.Columns))
		for i, col := range c.Columns {
			col.Options = cloneOptions(col.Options)
			out.Columns[i] = col
		}
	}
	return out
}

func cloneOptions(opts []Option) []Option {
	if opts == nil {
		return nil
	}
	out := make([]Option, len(opts))
	copy(out, opts)
	return out
}

// IsTableColumnType reports whether t may be used for a table column.
func IsTableColumnType(t Type) bool {
	return t == TextField || t == Number || t == Select
}

// CellKey is the response key of a table cell.
func CellKey(key string, row, col int) string {
	return key + "_" + strconv.Itoa(row) + "_" + strconv.Itoa(col)
}

// FieldError reports a problem with one component or one answer.
type FieldError struct {
	Key string
	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(key string, format string, args ...any) *FieldError {
	return &FieldError{Key: key, Err: fmt.Errorf(format, args...)}
}
