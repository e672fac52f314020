package formschema

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForm() *Form {
	return NewForm([]FormComponent{
		{Key: "name", Type: TextField, Label: "Name", Required: true},
		{Key: "mail", Type: Email, Label: "Email"},
		{Key: "area", Type: Number, Label: "Area"},
		{Key: "visit", Type: Date, Label: "Visit"},
		{Key: "district", Type: Select, Label: "District", Options: []Option{{Label: "Larnaca", Value: "larnaca"}, {Label: "Paphos", Value: "paphos"}}},
		{Key: "owner", Type: Radio, Label: "Owner", Required: true, Options: []Option{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}}},
		{Key: "crops", Type: Checkbox, Label: "Crops", Options: []Option{{Label: "Olives", Value: "olives"}, {Label: "Vines", Value: "vines"}}},
		{Key: "herd_size", Type: Table, Label: "Herd", Rows: 2, Columns: []ColumnSpec{
			{Key: "animal", Type: TextField, Label: "Animal", Required: true},
			{Key: "count", Type: Number, Label: "Count"},
		}},
	})
}

func TestForm_Widgets(t *testing.T) {
	widgets := sampleForm().Widgets()
	require.Len(t, widgets, 8)

	inputs := make([]string, len(widgets))
	for i, w := range widgets {
		inputs[i] = w.Input
	}
	assert.Equal(t, []string{"text", "email", "number", "date", "select", "radio", "checkbox", "table"}, inputs)

	sel := widgets[4]
	require.Len(t, sel.Options, 3)
	assert.Equal(t, Option{}, sel.Options[0], "select starts with an empty placeholder")

	radio := widgets[5]
	assert.Equal(t, "owner", radio.Group)
	assert.Len(t, radio.Options, 2)

	box := widgets[6]
	assert.True(t, box.Multiple)

	table := widgets[7]
	require.Len(t, table.Cells, 2)
	require.Len(t, table.Cells[1], 2)
	assert.Equal(t, "herd_size_1_0", table.Cells[1][0].Key)
	assert.Equal(t, "number", table.Cells[1][1].Input)
}

func TestForm_Toggle(t *testing.T) {
	f := sampleForm()

	require.NoError(t, f.Toggle("crops", "olives", true))
	require.NoError(t, f.Toggle("crops", "vines", true))
	require.NoError(t, f.Toggle("crops", "olives", true))
	assert.Equal(t, []string{"olives", "vines"}, f.Responses()["crops"])

	require.NoError(t, f.Toggle("crops", "olives", false))
	require.NoError(t, f.Toggle("crops", "olives", false))
	assert.Equal(t, []string{"vines"}, f.Responses()["crops"])

	assert.Error(t, f.Toggle("owner", "yes", true))
	assert.ErrorIs(t, f.Toggle("nope", "x", true), ErrComponentNotFound)
}

func TestForm_SetCell(t *testing.T) {
	f := sampleForm()

	require.NoError(t, f.SetCell("herd_size", 1, 1, 12.0))
	assert.Equal(t, 12.0, f.Responses()["herd_size_1_1"])

	assert.ErrorIs(t, f.SetCell("herd_size", 2, 0, "x"), ErrCellOutOfRange)
	assert.ErrorIs(t, f.SetCell("herd_size", 0, 2, "x"), ErrCellOutOfRange)
	assert.ErrorIs(t, f.SetCell("herd_size", -1, 0, "x"), ErrCellOutOfRange)
	assert.Error(t, f.SetCell("name", 0, 0, "x"))
	assert.Error(t, f.Set("herd_size", "x"))
}

func TestForm_Load(t *testing.T) {
	f := sampleForm()

	err := f.Load(map[string]any{
		"name":          "Andreas",
		"owner":         "yes",
		"crops":         []any{"olives", "olives"},
		"herd_size_0_0": "Goat",
		"herd_size_0_1": 30.0,
	})
	require.NoError(t, err)

	responses := f.Responses()
	assert.Equal(t, []string{"olives"}, responses["crops"])
	assert.Equal(t, "Goat", responses["herd_size_0_0"])

	err = f.Load(map[string]any{"ghost": 1, "herd_size_5_0": "x"})
	assert.ErrorIs(t, err, ErrComponentNotFound)
	assert.ErrorIs(t, err, ErrCellOutOfRange)
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]any
		wantErr []string
	}{
		{
			name:    "required missing",
			answers: map[string]any{},
			wantErr: []string{"name", "owner"},
		},
		{
			name:    "complete",
			answers: map[string]any{"name": "Maria", "owner": "no", "mail": "m@moa.gov.cy", "area": "12.5", "visit": "2024-05-01"},
		},
		{
			name:    "bad formats",
			answers: map[string]any{"name": "Maria", "owner": "maybe", "mail": "nope", "area": "ten", "visit": "01/05/2024", "district": "nicosia"},
			wantErr: []string{"owner", "mail", "area", "visit", "district"},
		},
		{
			name:    "table row missing required cell",
			answers: map[string]any{"name": "Maria", "owner": "no", "herd_size_1_1": 4.0},
			wantErr: []string{"herd_size_1_0"},
		},
		{
			name:    "checkbox unknown option",
			answers: map[string]any{"name": "Maria", "owner": "no", "crops": []any{"wheat"}},
			wantErr: []string{"crops"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sampleForm()
			_ = f.Load(tt.answers)

			err := f.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, key := range tt.wantErr {
				assert.Contains(t, err.Error(), key+":")
			}
		})
	}
}

func TestForm_SubmitClears(t *testing.T) {
	f := sampleForm()
	require.NoError(t, f.Set("name", "Eleni"))
	require.NoError(t, f.Set("owner", "yes"))

	responses, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, "Eleni", responses["name"])
	assert.Empty(t, f.Responses())
}

func TestNewFormFromSchema(t *testing.T) {
	f := NewFormFromSchema(Serialize([]FormComponent{
		{Key: "a", Type: TextField, Label: "A"},
	}))
	widgets := f.Widgets()
	require.Len(t, widgets, 1, "the submit button is not an input")
	assert.Equal(t, "a", widgets[0].Key)
}

// TestProperty_TableCellAddressing fills every cell of an R x C table and
// checks that each (row, col) lands on its own key.
func TestProperty_TableCellAddressing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("R*C distinct cell keys", prop.ForAll(
		func(rows, cols int) bool {
			columns := make([]ColumnSpec, cols)
			for i := range columns {
				columns[i] = ColumnSpec{Key: CellKey("c", 0, i), Type: TextField}
			}
			f := NewForm([]FormComponent{{Key: "t_1", Type: Table, Rows: rows, Columns: columns}})

			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					if err := f.SetCell("t_1", r, c, [2]int{r, c}); err != nil {
						return false
					}
				}
			}
			if f.SetCell("t_1", rows, 0, "x") == nil || f.SetCell("t_1", 0, cols, "x") == nil {
				return false
			}

			responses := f.Responses()
			if len(responses) != rows*cols {
				return false
			}
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					if responses[CellKey("t_1", r, c)] != [2]int{r, c} {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 15),
		gen.IntRange(1, 15),
	))

	properties.TestingRun(t)
}
