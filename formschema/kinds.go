package formschema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/agriquest/log"
)

// kind is the behaviour of one component type. The set is closed: every Type
// a builder may hold has exactly one entry in kinds.
type kind interface {
	setDefaults(c *FormComponent)
	check(c FormComponent) []error
	widget(c FormComponent) Widget
	wire(c FormComponent) WireComponent
	unwire(w WireComponent) FormComponent
	validate(c FormComponent, answers map[string]any) []error
}

var kinds = map[Type]kind{
	TextField: textKind{t: TextField, input: "text"},
	TextArea:  textKind{t: TextArea, input: "textarea"},
	Email:     emailKind{},
	Number:    numberKind{},
	Date:      dateKind{},
	Select:    choiceKind{t: Select},
	Radio:     choiceKind{t: Radio},
	Checkbox:  checkboxKind{},
	Table:     tableKind{},
}

// wireTypes maps client library types back to builder types.
var wireTypes = map[string]Type{
	string(TextField): TextField,
	string(TextArea):  TextArea,
	string(Email):     Email,
	string(Number):    Number,
	string(Date):      Date,
	wireDateTime:      Date,
	string(Select):    Select,
	string(Radio):     Radio,
	string(Checkbox):  Checkbox,
	wireSelectBoxes:   Checkbox,
	string(Table):     Table,
}

func kindOf(t Type) (kind, error) {
	k, ok := kinds[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return k, nil
}

var reEmail = regexp.MustCompile(emailPattern)

func baseWire(c FormComponent, wireType string) WireComponent {
	return WireComponent{
		Type:      wireType,
		Key:       c.Key,
		Label:     c.Label,
		Input:     true,
		TableView: true,
		Validate:  &WireValidate{Required: c.Required},
	}
}

func baseUnwire(w WireComponent, t Type) FormComponent {
	return FormComponent{
		Key:      w.Key,
		Type:     t,
		Label:    w.Label,
		Required: w.Validate != nil && w.Validate.Required,
	}
}

func baseWidget(c FormComponent, input string) Widget {
	return Widget{
		Key:      c.Key,
		Type:     c.Type,
		Input:    input,
		Label:    c.Label,
		Required: c.Required,
	}
}

func requiredErr(c FormComponent, answers map[string]any) []error {
	if c.Required && isEmpty(answers[c.Key]) {
		return []error{fieldErr(c.Key, "%q is required", c.Label)}
	}
	return nil
}

type textKind struct {
	t     Type
	input string
}

func (textKind) setDefaults(*FormComponent) {}
func (textKind) check(FormComponent) []error { return nil }
func (k textKind) widget(c FormComponent) Widget { return baseWidget(c, k.input) }
func (k textKind) wire(c FormComponent) WireComponent { return baseWire(c, string(k.t)) }
func (k textKind) unwire(w WireComponent) FormComponent {
	return baseUnwire(w, k.t)
}

func (textKind) validate(c FormComponent, answers map[string]any) []error {
	if v, ok := answers[c.Key]; ok && v != nil {
		if _, ok := v.(string); !ok {
			return []error{fieldErr(c.Key, "expected text, got %T", v)}
		}
	}
	return requiredErr(c, answers)
}

type emailKind struct{}

func (emailKind) setDefaults(*FormComponent) {}
func (emailKind) check(FormComponent) []error { return nil }
func (emailKind) widget(c FormComponent) Widget { return baseWidget(c, "email") }
func (emailKind) unwire(w WireComponent) FormComponent {
	return baseUnwire(w, Email)
}

func (emailKind) wire(c FormComponent) WireComponent {
	w := baseWire(c, string(Email))
	w.Validate.Pattern = emailPattern
	return w
}

func (emailKind) validate(c FormComponent, answers map[string]any) []error {
	if v, ok := answers[c.Key]; ok && !isEmpty(v) {
		s, ok := v.(string)
		if !ok || !reEmail.MatchString(strings.TrimSpace(s)) {
			return []error{fieldErr(c.Key, "%q is not a valid email address", c.Label)}
		}
	}
	return requiredErr(c, answers)
}

type numberKind struct{}

func (numberKind) setDefaults(*FormComponent) {}
func (numberKind) check(FormComponent) []error { return nil }
func (numberKind) widget(c FormComponent) Widget { return baseWidget(c, "number") }
func (numberKind) unwire(w WireComponent) FormComponent {
	return baseUnwire(w, Number)
}

func (numberKind) wire(c FormComponent) WireComponent {
	w := baseWire(c, string(Number))
	w.Mask = boolPtr(false)
	w.Delimiter = boolPtr(false)
	w.RequireDecimal = boolPtr(false)
	w.InputFormat = "plain"
	return w
}

func (numberKind) validate(c FormComponent, answers map[string]any) []error {
	if v, ok := answers[c.Key]; ok && !isEmpty(v) {
		if _, ok := asNumber(v); !ok {
			return []error{fieldErr(c.Key, "%q must be a number", c.Label)}
		}
	}
	return requiredErr(c, answers)
}

type dateKind struct{}

func (dateKind) setDefaults(*FormComponent) {}
func (dateKind) check(FormComponent) []error { return nil }
func (dateKind) widget(c FormComponent) Widget { return baseWidget(c, "date") }
func (dateKind) unwire(w WireComponent) FormComponent {
	return baseUnwire(w, Date)
}

func (dateKind) wire(c FormComponent) WireComponent {
	w := baseWire(c, wireDateTime)
	w.Format = wireDateFormat
	w.EnableTime = boolPtr(false)
	return w
}

func (dateKind) validate(c FormComponent, answers map[string]any) []error {
	if v, ok := answers[c.Key]; ok && !isEmpty(v) {
		s, ok := v.(string)
		if !ok {
			return []error{fieldErr(c.Key, "%q must be a date", c.Label)}
		}
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return []error{fieldErr(c.Key, "%q must be a date (YYYY-MM-DD)", c.Label)}
		}
	}
	return requiredErr(c, answers)
}

// choiceKind covers select and radio: one value out of the options.
type choiceKind struct {
	t Type
}

func (choiceKind) setDefaults(c *FormComponent) {
	if len(c.Options) == 0 {
		c.Options = defaultOptions()
	}
}

func (choiceKind) check(c FormComponent) []error {
	if len(c.Options) == 0 {
		return []error{fieldErr(c.Key, "needs at least one option")}
	}
	return checkOptionValues(c.Key, c.Options)
}

func (k choiceKind) widget(c FormComponent) Widget {
	if k.t == Select {
		w := baseWidget(c, "select")
		w.Options = append([]Option{{}}, AssignValues(c.Options)...)
		return w
	}
	w := baseWidget(c, "radio")
	w.Group = c.Key
	w.Options = AssignValues(c.Options)
	return w
}

func (k choiceKind) wire(c FormComponent) WireComponent {
	w := baseWire(c, string(k.t))
	values := AssignValues(c.Options)
	if values == nil {
		values = []Option{}
	}
	if k.t == Select {
		w.Widget = "choicesjs"
		w.Data = &WireData{Values: values}
	} else {
		w.Values = values
	}
	return w
}

func (k choiceKind) unwire(w WireComponent) FormComponent {
	c := baseUnwire(w, k.t)
	if k.t == Select && w.Data != nil {
		c.Options = AssignValues(w.Data.Values)
	} else {
		c.Options = AssignValues(w.Values)
	}
	return c
}

func (choiceKind) validate(c FormComponent, answers map[string]any) []error {
	if v, ok := answers[c.Key]; ok && !isEmpty(v) {
		s, ok := v.(string)
		if !ok || !hasOption(AssignValues(c.Options), s) {
			return []error{fieldErr(c.Key, "%v is not an option of %q", v, c.Label)}
		}
	}
	return requiredErr(c, answers)
}

// checkboxKind is either a group of boxes accumulating the checked values,
// or a single boolean box when it has no options.
type checkboxKind struct{}

func (checkboxKind) setDefaults(c *FormComponent) {
	if c.Options == nil {
		c.Options = defaultOptions()
	}
}

func (checkboxKind) check(c FormComponent) []error {
	return checkOptionValues(c.Key, c.Options)
}

func (checkboxKind) widget(c FormComponent) Widget {
	w := baseWidget(c, "checkbox")
	if len(c.Options) > 0 {
		w.Group = c.Key
		w.Multiple = true
		w.Options = AssignValues(c.Options)
	}
	return w
}

func (checkboxKind) wire(c FormComponent) WireComponent {
	if len(c.Options) == 0 {
		return baseWire(c, string(Checkbox))
	}
	w := baseWire(c, wireSelectBoxes)
	w.Values = AssignValues(c.Options)
	return w
}

func (checkboxKind) unwire(w WireComponent) FormComponent {
	c := baseUnwire(w, Checkbox)
	if w.Type == wireSelectBoxes {
		c.Options = AssignValues(w.Values)
		if c.Options == nil {
			c.Options = []Option{}
		}
	}
	return c
}

func (checkboxKind) validate(c FormComponent, answers map[string]any) []error {
	v, present := answers[c.Key]
	if len(c.Options) == 0 {
		if present && v != nil {
			if _, ok := v.(bool); !ok {
				return []error{fieldErr(c.Key, "expected true or false, got %T", v)}
			}
		}
		return requiredErr(c, answers)
	}

	if present && v != nil {
		values, ok := asStrings(v)
		if !ok {
			return []error{fieldErr(c.Key, "expected a list of options, got %T", v)}
		}
		opts := AssignValues(c.Options)
		var errs []error
		for _, s := range values {
			if !hasOption(opts, s) {
				errs = append(errs, fieldErr(c.Key, "%q is not an option of %q", s, c.Label))
			}
		}
		if errs != nil {
			return errs
		}
	}
	return requiredErr(c, answers)
}

const (
	defaultTableRows = 3
	maxTableRows     = 100
)

type tableKind struct{}

func (tableKind) setDefaults(c *FormComponent) {
	if c.Rows <= 0 {
		c.Rows = defaultTableRows
	}
	if len(c.Columns) == 0 {
		c.Columns = []ColumnSpec{
			{Key: "column_1", Type: TextField, Label: "Column 1"},
			{Key: "column_2", Type: TextField, Label: "Column 2"},
		}
	}
}

func (tableKind) check(c FormComponent) []error {
	var errs []error
	if c.Rows < 1 || c.Rows > maxTableRows {
		errs = append(errs, fieldErr(c.Key, "rows must be between 1 and %d", maxTableRows))
	}
	if len(c.Columns) == 0 {
		errs = append(errs, fieldErr(c.Key, "needs at least one column"))
	}
	keys := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		colKey := c.Key + "." + col.Key
		if col.Key == "" {
			errs = append(errs, fieldErr(c.Key, "column %q has no key", col.Label))
			continue
		}
		if keys[col.Key] {
			errs = append(errs, &FieldError{Key: colKey, Err: ErrDuplicateKey})
		}
		keys[col.Key] = true
		if !IsTableColumnType(col.Type) {
			errs = append(errs, fieldErr(colKey, "type %q cannot be used in a table", col.Type))
			continue
		}
		if col.Type == Select {
			if len(col.Options) == 0 {
				errs = append(errs, fieldErr(colKey, "needs at least one option"))
			}
			errs = append(errs, checkOptionValues(colKey, col.Options)...)
		}
	}
	return errs
}

func (tableKind) widget(c FormComponent) Widget {
	w := baseWidget(c, "table")
	for _, col := range c.Columns {
		cw := Widget{Key: col.Key, Type: col.Type, Label: col.Label, Required: col.Required, Input: columnInput(col.Type)}
		if col.Type == Select {
			cw.Options = append([]Option{{}}, AssignValues(col.Options)...)
		}
		w.Columns = append(w.Columns, cw)
	}
	w.Cells = make([][]Cell, c.Rows)
	for r := range w.Cells {
		w.Cells[r] = make([]Cell, len(c.Columns))
		for i, col := range w.Columns {
			w.Cells[r][i] = Cell{
				Key:      CellKey(c.Key, r, i),
				Row:      r,
				Col:      i,
				Input:    col.Input,
				Required: col.Required,
				Options:  col.Options,
			}
		}
	}
	return w
}

func columnInput(t Type) string {
	switch t {
	case Number:
		return "number"
	case Select:
		return "select"
	default:
		return "text"
	}
}

func (tableKind) wire(c FormComponent) WireComponent {
	w := baseWire(c, string(Table))
	w.NumRows = c.Rows
	for _, col := range c.Columns {
		if !IsTableColumnType(col.Type) {
			log.Warnf("formschema.serialize: skipping column %q of %q: type %q not allowed in a table", col.Key, c.Key, col.Type)
			continue
		}
		k, err := kindOf(col.Type)
		if err != nil {
			log.Warnf("formschema.serialize: skipping column %q of %q: %s", col.Key, c.Key, err)
			continue
		}
		w.Components = append(w.Components, k.wire(col.component()))
	}
	w.NumCols = len(w.Components)
	return w
}

func (tableKind) unwire(w WireComponent) FormComponent {
	c := baseUnwire(w, Table)
	c.Rows = w.NumRows
	if c.Rows <= 0 {
		c.Rows = defaultTableRows
	}
	c.Columns = []ColumnSpec{}
	for _, wc := range w.Components {
		t, ok := wireTypes[wc.Type]
		if !ok || !IsTableColumnType(t) {
			continue
		}
		col := kinds[t].unwire(wc)
		c.Columns = append(c.Columns, ColumnSpec{
			Key:      col.Key,
			Type:     col.Type,
			Label:    col.Label,
			Required: col.Required,
			Options:  col.Options,
		})
	}
	return c
}

func (tableKind) validate(c FormComponent, answers map[string]any) []error {
	var errs []error
	filledRows := 0
	for r := 0; r < c.Rows; r++ {
		rowFilled := false
		for i := range c.Columns {
			if !isEmpty(answers[CellKey(c.Key, r, i)]) {
				rowFilled = true
				break
			}
		}
		if !rowFilled {
			continue
		}
		filledRows++

		for i, col := range c.Columns {
			cell := col.component()
			cell.Key = CellKey(c.Key, r, i)
			cell.Label = fmt.Sprintf("%s (row %d)", col.Label, r+1)
			k, err := kindOf(col.Type)
			if err != nil {
				errs = append(errs, &FieldError{Key: cell.Key, Err: err})
				continue
			}
			errs = append(errs, k.validate(cell, answers)...)
		}
	}
	if c.Required && filledRows == 0 {
		errs = append(errs, fieldErr(c.Key, "%q needs at least one row", c.Label))
	}
	return errs
}

func (col ColumnSpec) component() FormComponent {
	return FormComponent{
		Key:      col.Key,
		Type:     col.Type,
		Label:    col.Label,
		Required: col.Required,
		Options:  col.Options,
	}
}

func checkOptionValues(key string, opts []Option) []error {
	var errs []error
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		if o.Value == "" {
			continue
		}
		if seen[o.Value] {
			errs = append(errs, fieldErr(key, "option value %q is repeated", o.Value))
		}
		seen[o.Value] = true
	}
	return errs
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func isEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

func asNumber(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func asStrings(v any) ([]string, bool) {
	switch v := v.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
