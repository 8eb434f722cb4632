package render

// Option is one choice of a select field.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field is a form input ready for the "field" template.
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Checked  bool
	Options  []Option
	Required bool
	Step     string
	Help     string
	Error    string
}

// FormView is a complete form ready for the "form" template.
type FormView struct {
	Action    string
	Method    string
	Submit    string
	Fields    []Field
	Hidden    map[string]string
	Error     string
	Multipart bool
}
