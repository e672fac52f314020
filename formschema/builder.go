package formschema

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Patch carries the fields to merge into a component. Nil fields are left
// untouched; an empty, non-nil Options clears the options.
type Patch struct {
	Type     *Type        `json:"type,omitempty"`
	Label    *string      `json:"label,omitempty"`
	Required *bool        `json:"required,omitempty"`
	Options  []Option     `json:"options,omitempty"`
	Columns  []ColumnSpec `json:"columns,omitempty"`
	Rows     *int         `json:"rows,omitempty"`
}

// Builder edits an ordered list of components. It is not safe for
// concurrent use.
type Builder struct {
	components []FormComponent
	selected   string
}

// NewBuilder starts from an existing component list, for instance the result
// of Deserialize.
func NewBuilder(components []FormComponent) *Builder {
	b := &Builder{components: make([]FormComponent, 0, len(components))}
	for _, c := range components {
		b.components = append(b.components, c.clone())
	}
	return b
}

func (b *Builder) Components() []FormComponent {
	out := make([]FormComponent, len(b.components))
	for i, c := range b.components {
		out[i] = c.clone()
	}
	return out
}

func (b *Builder) Len() int {
	return len(b.components)
}

// AddComponent appends a component of type t with a fresh key and the
// type's defaults, and selects it.
func (b *Builder) AddComponent(t Type) (FormComponent, error) {
	k, err := kindOf(t)
	if err != nil {
		return FormComponent{}, err
	}

	c := FormComponent{
		Key:   newKey(t, b.keySet()),
		Type:  t,
		Label: defaultLabel(t, len(b.components)+1),
	}
	k.setDefaults(&c)

	b.components = append(b.components, c)
	b.selected = c.Key
	return c.clone(), nil
}

func (b *Builder) UpdateComponent(key string, patch Patch) (FormComponent, error) {
	i := b.indexOf(key)
	if i < 0 {
		return FormComponent{}, &FieldError{Key: key, Err: ErrComponentNotFound}
	}

	c := b.components[i].clone()
	if patch.Type != nil && *patch.Type != c.Type {
		k, err := kindOf(*patch.Type)
		if err != nil {
			return FormComponent{}, err
		}
		c.Type = *patch.Type
		if c.Type != Table {
			c.Columns = nil
			c.Rows = 0
		}
		if c.Type != Select && c.Type != Radio && c.Type != Checkbox {
			c.Options = nil
		}
		k.setDefaults(&c)
	}
	if patch.Label != nil {
		c.Label = *patch.Label
	}
	if patch.Required != nil {
		c.Required = *patch.Required
	}
	if patch.Options != nil {
		c.Options = AssignValues(patch.Options)
	}
	if patch.Columns != nil {
		c.Columns = make([]ColumnSpec, len(patch.Columns))
		for j, col := range patch.Columns {
			col.Options = AssignValues(col.Options)
			c.Columns[j] = col
		}
	}
	if patch.Rows != nil {
		c.Rows = *patch.Rows
	}

	b.components[i] = c
	return c.clone(), nil
}

// RemoveComponent deletes the component, clearing the selection if it was
// the selected one.
func (b *Builder) RemoveComponent(key string) error {
	i := b.indexOf(key)
	if i < 0 {
		return &FieldError{Key: key, Err: ErrComponentNotFound}
	}
	b.components = append(b.components[:i], b.components[i+1:]...)
	if b.selected == key {
		b.selected = ""
	}
	return nil
}

// Move places the component at index, shifting the others. Out of range
// indexes are clamped.
func (b *Builder) Move(key string, index int) error {
	i := b.indexOf(key)
	if i < 0 {
		return &FieldError{Key: key, Err: ErrComponentNotFound}
	}
	if index < 0 {
		index = 0
	}
	if index >= len(b.components) {
		index = len(b.components) - 1
	}

	c := b.components[i]
	b.components = append(b.components[:i], b.components[i+1:]...)
	b.components = append(b.components[:index], append([]FormComponent{c}, b.components[index:]...)...)
	return nil
}

func (b *Builder) Select(key string) error {
	if b.indexOf(key) < 0 {
		return &FieldError{Key: key, Err: ErrComponentNotFound}
	}
	b.selected = key
	return nil
}

func (b *Builder) Selected() (FormComponent, bool) {
	i := b.indexOf(b.selected)
	if i < 0 {
		return FormComponent{}, false
	}
	return b.components[i].clone(), true
}

func (b *Builder) Serialize() FormSchema {
	return Serialize(b.components)
}

// Validate checks the structure of the whole form: known types, unique keys
// (table cell keys included) and per-type constraints.
func (b *Builder) Validate() error {
	return Validate(b.components)
}

func Validate(components []FormComponent) error {
	var result *multierror.Error
	keys := make(map[string]bool)
	claim := func(key string) {
		if keys[key] {
			result = multierror.Append(result, &FieldError{Key: key, Err: ErrDuplicateKey})
		}
		keys[key] = true
	}

	for _, c := range components {
		if c.Key == "" {
			result = multierror.Append(result, fieldErr(c.Label, "component has no key"))
			continue
		}
		k, err := kindOf(c.Type)
		if err != nil {
			result = multierror.Append(result, &FieldError{Key: c.Key, Err: err})
			continue
		}
		claim(c.Key)
		if c.Type == Table {
			for r := 0; r < c.Rows; r++ {
				for i := range c.Columns {
					claim(CellKey(c.Key, r, i))
				}
			}
		}
		for _, e := range k.check(c) {
			result = multierror.Append(result, e)
		}
	}
	return result.ErrorOrNil()
}

func (b *Builder) indexOf(key string) int {
	if key == "" {
		return -1
	}
	for i, c := range b.components {
		if c.Key == key {
			return i
		}
	}
	return -1
}

func (b *Builder) keySet() map[string]bool {
	keys := make(map[string]bool, len(b.components))
	for _, c := range b.components {
		keys[c.Key] = true
	}
	return keys
}

func newKey(t Type, taken map[string]bool) string {
	for {
		key := fmt.Sprintf("%s_%s", t, uuid.NewString()[:8])
		if !taken[key] {
			return key
		}
	}
}

func defaultLabel(t Type, n int) string {
	names := map[Type]string{
		TextField: "Text field",
		TextArea:  "Text area",
		Number:    "Number",
		Email:     "Email",
		Date:      "Date",
		Select:    "Dropdown",
		Radio:     "Single choice",
		Checkbox:  "Multiple choice",
		Table:     "Table",
	}
	return fmt.Sprintf("%s %d", names[t], n)
}
