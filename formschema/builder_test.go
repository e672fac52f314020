package formschema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_AddComponentDefaults(t *testing.T) {
	tests := []struct {
		typ         Type
		wantOptions int
		wantRows    int
		wantColumns int
	}{
		{typ: TextField},
		{typ: TextArea},
		{typ: Number},
		{typ: Email},
		{typ: Date},
		{typ: Select, wantOptions: 2},
		{typ: Radio, wantOptions: 2},
		{typ: Checkbox, wantOptions: 2},
		{typ: Table, wantRows: 3, wantColumns: 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			b := NewBuilder(nil)
			c, err := b.AddComponent(tt.typ)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(c.Key, string(tt.typ)+"_"), c.Key)
			assert.Equal(t, tt.typ, c.Type)
			assert.NotEmpty(t, c.Label)
			assert.Len(t, c.Options, tt.wantOptions)
			assert.Equal(t, tt.wantRows, c.Rows)
			assert.Len(t, c.Columns, tt.wantColumns)

			selected, ok := b.Selected()
			require.True(t, ok)
			assert.Equal(t, c.Key, selected.Key)
			assert.NoError(t, b.Validate())
		})
	}
}

func TestBuilder_AddComponentUnknownType(t *testing.T) {
	b := NewBuilder(nil)

	_, err := b.AddComponent("slider")
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = b.AddComponent(Button)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Zero(t, b.Len())
}

func TestBuilder_KeysAreUnique(t *testing.T) {
	b := NewBuilder(nil)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		c, err := b.AddComponent(TextField)
		require.NoError(t, err)
		require.False(t, seen[c.Key], "duplicate key %s", c.Key)
		seen[c.Key] = true
	}
	assert.NoError(t, b.Validate())
}

func TestBuilder_UpdateComponent(t *testing.T) {
	b := NewBuilder(nil)
	c, err := b.AddComponent(Radio)
	require.NoError(t, err)

	label := "Farm type"
	required := true
	updated, err := b.UpdateComponent(c.Key, Patch{
		Label:    &label,
		Required: &required,
		Options:  []Option{{Label: "Crops"}, {Label: "Live Stock"}, {Label: "crops"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Farm type", updated.Label)
	assert.True(t, updated.Required)
	assert.Equal(t, []Option{
		{Label: "Crops", Value: "crops"},
		{Label: "Live Stock", Value: "live_stock"},
		{Label: "crops", Value: "crops__1"},
	}, updated.Options)
	assert.Equal(t, updated, b.Components()[0])
}

func TestBuilder_UpdateComponentChangesType(t *testing.T) {
	b := NewBuilder(nil)
	c, err := b.AddComponent(TextField)
	require.NoError(t, err)

	typ := Table
	updated, err := b.UpdateComponent(c.Key, Patch{Type: &typ})
	require.NoError(t, err)
	assert.Equal(t, Table, updated.Type)
	assert.Equal(t, 3, updated.Rows)
	assert.Len(t, updated.Columns, 2)

	typ = Number
	updated, err = b.UpdateComponent(c.Key, Patch{Type: &typ})
	require.NoError(t, err)
	assert.Zero(t, updated.Rows)
	assert.Nil(t, updated.Columns)
}

func TestBuilder_UpdateComponentNotFound(t *testing.T) {
	b := NewBuilder(nil)
	label := "x"

	_, err := b.UpdateComponent("missing", Patch{Label: &label})
	assert.ErrorIs(t, err, ErrComponentNotFound)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "missing", fe.Key)
}

func TestBuilder_RemoveComponentClearsSelection(t *testing.T) {
	b := NewBuilder(nil)
	first, _ := b.AddComponent(TextField)
	second, _ := b.AddComponent(Number)

	require.NoError(t, b.Select(first.Key))
	require.NoError(t, b.RemoveComponent(second.Key))
	selected, ok := b.Selected()
	assert.True(t, ok)
	assert.Equal(t, first.Key, selected.Key)

	require.NoError(t, b.RemoveComponent(first.Key))
	_, ok = b.Selected()
	assert.False(t, ok)
	assert.Zero(t, b.Len())

	assert.ErrorIs(t, b.RemoveComponent(first.Key), ErrComponentNotFound)
}

func TestBuilder_Move(t *testing.T) {
	b := NewBuilder([]FormComponent{
		{Key: "a", Type: TextField},
		{Key: "b", Type: TextField},
		{Key: "c", Type: TextField},
	})

	require.NoError(t, b.Move("c", 0))
	assert.Equal(t, []string{"c", "a", "b"}, keysOf(b.Components()))

	require.NoError(t, b.Move("c", 99))
	assert.Equal(t, []string{"a", "b", "c"}, keysOf(b.Components()))

	require.NoError(t, b.Move("b", -1))
	assert.Equal(t, []string{"b", "a", "c"}, keysOf(b.Components()))

	assert.ErrorIs(t, b.Move("z", 0), ErrComponentNotFound)
}

func TestBuilder_ComponentsAreCopies(t *testing.T) {
	b := NewBuilder(nil)
	_, err := b.AddComponent(Select)
	require.NoError(t, err)

	list := b.Components()
	list[0].Options[0].Label = "changed"

	assert.Equal(t, "Option 1", b.Components()[0].Options[0].Label)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		components []FormComponent
		wantErr    error
		wantMsg    string
	}{
		{
			name: "valid",
			components: []FormComponent{
				{Key: "name", Type: TextField, Label: "Name"},
				{Key: "size", Type: Select, Options: []Option{{Label: "S", Value: "s"}}},
			},
		},
		{
			name: "duplicate keys",
			components: []FormComponent{
				{Key: "name", Type: TextField},
				{Key: "name", Type: Number},
			},
			wantErr: ErrDuplicateKey,
		},
		{
			name: "cell key clashes with component key",
			components: []FormComponent{
				{Key: "crops", Type: Table, Rows: 1, Columns: []ColumnSpec{{Key: "c", Type: TextField}}},
				{Key: "crops_0_0", Type: TextField},
			},
			wantErr: ErrDuplicateKey,
		},
		{
			name:       "unknown type",
			components: []FormComponent{{Key: "x", Type: "slider"}},
			wantErr:    ErrUnknownType,
		},
		{
			name:       "select without options",
			components: []FormComponent{{Key: "x", Type: Select}},
			wantMsg:    "needs at least one option",
		},
		{
			name: "table column of unsupported type",
			components: []FormComponent{
				{Key: "t", Type: Table, Rows: 2, Columns: []ColumnSpec{{Key: "d", Type: Date}}},
			},
			wantMsg: "cannot be used in a table",
		},
		{
			name: "table without rows",
			components: []FormComponent{
				{Key: "t", Type: Table, Columns: []ColumnSpec{{Key: "d", Type: Number}}},
			},
			wantMsg: "rows must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.components)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func keysOf(components []FormComponent) []string {
	keys := make([]string, len(components))
	for i, c := range components {
		keys[i] = c.Key
	}
	return keys
}
