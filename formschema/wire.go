package formschema

// FormSchema is the document persisted by the backend and consumed by the
// form-builder client library.
type FormSchema struct {
	Display    string          `json:"display"`
	Components []WireComponent `json:"components"`
}

// WireComponent is a component in the client library's format. Only the
// properties this service reads or writes are modelled; others are dropped.
type WireComponent struct {
	Type      string        `json:"type"`
	Key       string        `json:"key"`
	Label     string        `json:"label"`
	Input     bool          `json:"input"`
	TableView bool          `json:"tableView,omitempty"`
	Validate  *WireValidate `json:"validate,omitempty"`

	// radio, selectboxes
	Values []Option `json:"values,omitempty"`
	// select
	Widget string    `json:"widget,omitempty"`
	Data   *WireData `json:"data,omitempty"`

	// number
	Mask           *bool  `json:"mask,omitempty"`
	Delimiter      *bool  `json:"delimiter,omitempty"`
	RequireDecimal *bool  `json:"requireDecimal,omitempty"`
	InputFormat    string `json:"inputFormat,omitempty"`

	// datetime
	Format     string `json:"format,omitempty"`
	EnableTime *bool  `json:"enableTime,omitempty"`

	// table
	NumRows    int             `json:"numRows,omitempty"`
	NumCols    int             `json:"numCols,omitempty"`
	Components []WireComponent `json:"components,omitempty"`

	// button
	Action           string `json:"action,omitempty"`
	DisableOnInvalid bool   `json:"disableOnInvalid,omitempty"`
}

type WireValidate struct {
	Required bool   `json:"required"`
	Pattern  string `json:"pattern,omitempty"`
}

type WireData struct {
	Values []Option `json:"values"`
}

const (
	wireDateTime    = "datetime"
	wireSelectBoxes = "selectboxes"
	wireDateFormat  = "yyyy-MM-dd"
	emailPattern    = `^[^@\s]+@[^@\s]+\.[^@\s]+$`
)

func submitButton() WireComponent {
	return WireComponent{
		Type:             string(Button),
		Key:              "submit",
		Label:            "Submit",
		Input:            true,
		Action:           "submit",
		DisableOnInvalid: true,
	}
}

func boolPtr(b bool) *bool {
	return &b
}
