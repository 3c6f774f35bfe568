package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/recordlist/internal/record"
)

// FormSubmitMsg carries a validated payload from the form to its owner.
type FormSubmitMsg struct {
	Payload record.NewRecord
}

// FormCancelMsg is sent when the user leaves the form without submitting.
type FormCancelMsg struct{}

type formField struct {
	key         string
	label       string
	placeholder string
	charLimit   int
}

//nolint:gochecknoglobals // Fixed field table.
var formFields = []formField{
	{key: "firstName", label: "First name", placeholder: "Иван", charLimit: 50},
	{key: "lastName", label: "Last name", placeholder: "Петров", charLimit: 50},
	{key: "email", label: "Email", placeholder: "ivan@example.com", charLimit: 100},
	{key: "age", label: "Age", placeholder: "18-99", charLimit: 3},
	{key: "city", label: "City", placeholder: strings.Join(record.Cities, ", "), charLimit: 50},
	{key: "occupation", label: "Occupation", placeholder: "Разработчик", charLimit: 50},
	{key: "status", label: "Status", placeholder: "active | inactive", charLimit: 12},
	{key: "joinedDate", label: "Joined", placeholder: "YYYY-MM-DD (optional)", charLimit: 10},
}

const labelWidth = 12

// FormModel collects a new record. It validates locally before emitting
// FormSubmitMsg and shows the store's answer via SetError.
type FormModel struct {
	inputs     []textinput.Model
	focus      int
	errs       map[string]string
	submitErr  error
	submitting bool
	width      int
}

// NewFormModel creates an empty form.
func NewFormModel() *FormModel {
	f := &FormModel{width: defaultWidth}
	f.inputs = make([]textinput.Model, len(formFields))
	for i, field := range formFields {
		in := textinput.New()
		in.Placeholder = field.placeholder
		in.CharLimit = field.charLimit
		in.Prompt = ""
		in.Cursor.SetMode(cursor.CursorStatic)
		f.inputs[i] = in
	}
	f.Reset()
	return f
}

// Reset clears every value and error and focuses the first field.
func (f *FormModel) Reset() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.errs = nil
	f.submitErr = nil
	f.submitting = false
	f.focus = 0
	return f.inputs[0].Focus()
}

// SetWidth adapts the input width to the terminal.
func (f *FormModel) SetWidth(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = max(width-labelWidth-borderPadding-2, 10)
	}
}

// SetSubmitting marks a create call as outstanding. Keys are ignored meanwhile.
func (f *FormModel) SetSubmitting(v bool) {
	f.submitting = v
}

// Submitting reports whether a create call is outstanding.
func (f *FormModel) Submitting() bool {
	return f.submitting
}

// SetError shows a failed create. Validation errors from the store are mapped
// onto their fields.
func (f *FormModel) SetError(err error) {
	f.submitting = false
	f.submitErr = err
	var verr *record.ValidationError
	if errors.As(err, &verr) {
		f.setFieldErrors(verr)
	}
}

// Err returns the last create failure.
func (f *FormModel) Err() error {
	return f.submitErr
}

// FieldError returns the validation message of the field, or "".
func (f *FormModel) FieldError(key string) string {
	return f.errs[key]
}

// Focused returns the key of the focused field.
func (f *FormModel) Focused() string {
	return formFields[f.focus].key
}

// Update handles keys. It returns FormSubmitMsg or FormCancelMsg commands.
func (f *FormModel) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return cmd
	}
	if f.submitting {
		return nil
	}

	switch key.String() {
	case keyEsc:
		return func() tea.Msg { return FormCancelMsg{} }
	case keyCtrlS:
		return f.submit()
	case keyEnter:
		if f.focus == len(f.inputs)-1 {
			return f.submit()
		}
		return f.setFocus(f.focus + 1)
	case keyTab, keyDown:
		return f.setFocus((f.focus + 1) % len(f.inputs))
	case keyShiftTab, keyUp:
		return f.setFocus((f.focus - 1 + len(f.inputs)) % len(f.inputs))
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	delete(f.errs, formFields[f.focus].key)
	return cmd
}

func (f *FormModel) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[f.focus].Focus()
}

func (f *FormModel) submit() tea.Cmd {
	payload, err := f.Payload()
	if err != nil {
		var verr *record.ValidationError
		if errors.As(err, &verr) {
			f.setFieldErrors(verr)
			return f.setFocus(f.indexOf(verr.Fields[0].Field))
		}
		f.submitErr = err
		return nil
	}
	f.errs = nil
	f.submitErr = nil
	return func() tea.Msg { return FormSubmitMsg{Payload: payload} }
}

// Payload builds and validates the record from the current values.
func (f *FormModel) Payload() (record.NewRecord, error) {
	value := func(key string) string {
		return strings.TrimSpace(f.inputs[f.indexOf(key)].Value())
	}

	payload := record.NewRecord{
		FirstName:  value("firstName"),
		LastName:   value("lastName"),
		Email:      value("email"),
		City:       value("city"),
		Occupation: value("occupation"),
		JoinedDate: value("joinedDate"),
	}
	age, ageErr := strconv.Atoi(value("age"))
	if ageErr == nil {
		payload.Age = age
	}
	if status, err := record.ParseStatus(value("status")); err == nil {
		payload.Status = status
	}

	err := payload.Validate()
	if ageErr != nil && value("age") != "" {
		var verr *record.ValidationError
		if errors.As(err, &verr) {
			for i := range verr.Fields {
				if verr.Fields[i].Field == "age" {
					verr.Fields[i].Message = "must be a number"
				}
			}
		}
	}
	return payload, err
}

func (f *FormModel) setFieldErrors(verr *record.ValidationError) {
	f.errs = make(map[string]string, len(verr.Fields))
	for _, fe := range verr.Fields {
		f.errs[fe.Field] = fe.Message
	}
}

func (f *FormModel) indexOf(key string) int {
	for i, field := range formFields {
		if field.key == key {
			return i
		}
	}
	return 0
}

// View renders the form.
func (f *FormModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("New record"))
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Width(labelWidth).Foreground(ColorLabel)
	focused := lipgloss.NewStyle().Width(labelWidth).Foreground(ColorHighlight).Bold(true)

	for i, field := range formFields {
		l := label
		if i == f.focus {
			l = focused
		}
		b.WriteString(l.Render(field.label))
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
		if msg := f.errs[field.key]; msg != "" {
			b.WriteString(strings.Repeat(" ", labelWidth))
			b.WriteString(ErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(MutedStyle.Render("Saving..."))
	case f.submitErr != nil:
		b.WriteString(ErrorStyle.Render("Could not save: " + f.submitErr.Error()))
	default:
		b.WriteString(HelpStyle.Render("tab/↑↓: move | enter: next/submit | ctrl+s: submit | esc: cancel"))
	}

	return BoxStyle.Width(max(f.width-borderPadding, 20)).Render(b.String())
}
