package formschema

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Widget describes the input to draw for one component.
type Widget struct {
	Key      string   `json:"key"`
	Type     Type     `json:"type"`
	Input    string   `json:"input"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Group    string   `json:"group,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
	Options  []Option `json:"options,omitempty"`
	Columns  []Widget `json:"columns,omitempty"`
	Cells    [][]Cell `json:"cells,omitempty"`
}

// Cell is one addressable input of a table widget.
type Cell struct {
	Key      string   `json:"key"`
	Row      int      `json:"row"`
	Col      int      `json:"col"`
	Input    string   `json:"input"`
	Required bool     `json:"required"`
	Options  []Option `json:"options,omitempty"`
}

// Form captures answers for a list of components. The response map is keyed
// by component key, and by CellKey for table cells.
type Form struct {
	components []FormComponent
	index      map[string]int
	values     map[string]any
}

func NewForm(components []FormComponent) *Form {
	f := &Form{
		components: make([]FormComponent, 0, len(components)),
		index:      make(map[string]int, len(components)),
		values:     make(map[string]any),
	}
	for _, c := range components {
		if c.Type == Button {
			continue
		}
		if _, err := kindOf(c.Type); err != nil {
			continue
		}
		f.index[c.Key] = len(f.components)
		f.components = append(f.components, c.clone())
	}
	return f
}

// NewFormFromSchema renders a stored wire schema.
func NewFormFromSchema(schema FormSchema) *Form {
	return NewForm(FromSchema(schema))
}

func (f *Form) Widgets() []Widget {
	widgets := make([]Widget, 0, len(f.components))
	for _, c := range f.components {
		widgets = append(widgets, kinds[c.Type].widget(c))
	}
	return widgets
}

func (f *Form) component(key string) (FormComponent, error) {
	i, ok := f.index[key]
	if !ok {
		return FormComponent{}, &FieldError{Key: key, Err: ErrComponentNotFound}
	}
	return f.components[i], nil
}

// Set stores a single value. Tables are filled with SetCell.
func (f *Form) Set(key string, value any) error {
	c, err := f.component(key)
	if err != nil {
		return err
	}
	if c.Type == Table {
		return fieldErr(key, "tables are answered cell by cell")
	}
	if c.Type == Checkbox && len(c.Options) > 0 {
		values, ok := asStrings(value)
		if !ok && value != nil {
			return fieldErr(key, "expected a list of options, got %T", value)
		}
		f.values[key] = dedupe(values)
		return nil
	}
	f.values[key] = value
	return nil
}

// Toggle checks or unchecks one option of a checkbox group. Checking an
// already checked option and unchecking an unchecked one are no-ops.
func (f *Form) Toggle(key, value string, checked bool) error {
	c, err := f.component(key)
	if err != nil {
		return err
	}
	if c.Type != Checkbox || len(c.Options) == 0 {
		return fieldErr(key, "%q is not a checkbox group", c.Label)
	}

	current, _ := f.values[key].([]string)
	next := make([]string, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == value {
			found = true
			if !checked {
				continue
			}
		}
		next = append(next, v)
	}
	if checked && !found {
		next = append(next, value)
	}
	f.values[key] = next
	return nil
}

func (f *Form) SetCell(key string, row, col int, value any) error {
	c, err := f.component(key)
	if err != nil {
		return err
	}
	if c.Type != Table {
		return fieldErr(key, "%q is not a table", c.Label)
	}
	if row < 0 || row >= c.Rows || col < 0 || col >= len(c.Columns) {
		return &FieldError{Key: CellKey(key, row, col), Err: ErrCellOutOfRange}
	}
	f.values[CellKey(key, row, col)] = value
	return nil
}

// Load applies a response map as posted by the client. Keys that match no
// component or cell are reported and ignored.
func (f *Form) Load(values map[string]any) error {
	var result *multierror.Error
	for key, value := range values {
		if _, ok := f.index[key]; ok {
			if err := f.Set(key, value); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}
		tableKey, row, col, ok := f.parseCellKey(key)
		if !ok {
			result = multierror.Append(result, &FieldError{Key: key, Err: ErrComponentNotFound})
			continue
		}
		if err := f.SetCell(tableKey, row, col, value); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// parseCellKey finds the table a cell key belongs to. Table keys may contain
// underscores themselves, so the row and column are taken from the right.
func (f *Form) parseCellKey(key string) (string, int, int, bool) {
	last := strings.LastIndexByte(key, '_')
	if last <= 0 {
		return "", 0, 0, false
	}
	mid := strings.LastIndexByte(key[:last], '_')
	if mid <= 0 {
		return "", 0, 0, false
	}
	row, err := strconv.Atoi(key[mid+1 : last])
	if err != nil {
		return "", 0, 0, false
	}
	col, err := strconv.Atoi(key[last+1:])
	if err != nil {
		return "", 0, 0, false
	}
	tableKey := key[:mid]
	c, err := f.component(tableKey)
	if err != nil || c.Type != Table {
		return "", 0, 0, false
	}
	return tableKey, row, col, true
}

// Responses returns a copy of the answers captured so far.
func (f *Form) Responses() map[string]any {
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// Validate checks the captured answers: required fields, option membership
// and value formats.
func (f *Form) Validate() error {
	var result *multierror.Error
	for _, c := range f.components {
		for _, err := range kinds[c.Type].validate(c, f.values) {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Submit returns the response map and the validation outcome, then clears
// the form for the next respondent.
func (f *Form) Submit() (map[string]any, error) {
	responses := f.Responses()
	err := f.Validate()
	f.values = make(map[string]any)
	return responses, err
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
