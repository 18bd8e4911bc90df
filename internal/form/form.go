// Package form строит форму записи по ColumnConfig и сохраняет её через Repository.
package form

import (
	"strings"

	"cardscan/internal/record"
	"cardscan/internal/schema"
)

const AdvisoryNoData = "No contact details were automatically identified. You can enter them manually or retake the photo."

type Input struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Placeholder string `json:"placeholder"`
}

// View: то, что отдаётся клиенту для отрисовки формы.
type View struct {
	Title    string  `json:"title"`
	Editing  bool    `json:"editing"`
	RecordID string  `json:"recordId,omitempty"`
	Inputs   []Input `json:"inputs"`
	Advisory string  `json:"advisory,omitempty"`
	Submit   string  `json:"submit"`
	Cancel   string  `json:"cancel"`
}

// Render: одно текстовое поле на каждое поле конфигурации, кроме служебных.
func Render(rec record.Record, cfg schema.ColumnConfig, editing bool) View {
	v := View{
		Title:    "Verify & Save Data",
		Editing:  editing,
		RecordID: rec.ID,
		Submit:   "Save Contact",
		Cancel:   "Discard",
	}
	if editing {
		v.Title, v.Submit, v.Cancel = "Edit Contact Details", "Update Contact", "Cancel"
	}
	for _, f := range cfg.FormFields() {
		val, _ := rec.Value(f.Key)
		v.Inputs = append(v.Inputs, Input{
			Key:         f.Key,
			Label:       f.Header,
			Value:       val,
			Placeholder: "Enter " + strings.TrimSpace(f.Header) + "...",
		})
	}
	if v.Inputs == nil {
		v.Inputs = []Input{}
	}
	if !editing && rec.IsBlank() {
		v.Advisory = AdvisoryNoData
	}
	return v
}
