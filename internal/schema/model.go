package schema

// FieldDefinition описывает одну настраиваемую колонку
type FieldDefinition struct {
	Key     string `json:"key" yaml:"key"`         // неизменяемый идентификатор (lower/underscore)
	Header  string `json:"header" yaml:"header"`   // подпись, можно менять
	Visible bool   `json:"visible" yaml:"visible"` // участвует в таблице/печати/выгрузке
}

// ColumnConfig: упорядоченный список полей; порядок = порядок формы и таблицы
type ColumnConfig []FieldDefinition

// Зарезервированные и служебные ключи
const (
	KeyName      = "name"
	KeyDateAdded = "dateAdded"
	KeyShortID   = "six_digit_id"
)

// Reserved: поля, которые можно переименовать, но нельзя удалить.
var Reserved = []string{KeyName, KeyDateAdded}

// systemManaged не редактируются в форме: их проставляет система.
var systemManaged = map[string]struct{}{
	KeyDateAdded: {},
	KeyShortID:   {},
}

func IsReserved(key string) bool {
	for _, k := range Reserved {
		if k == key {
			return true
		}
	}
	return false
}

func IsSystemManaged(key string) bool {
	_, ok := systemManaged[key]
	return ok
}

// Default: набор колонок при первом запуске.
func Default() ColumnConfig {
	return ColumnConfig{
		{Key: "name", Header: "Name", Visible: true},
		{Key: "company", Header: "Company", Visible: true},
		{Key: "email", Header: "Email", Visible: true},
		{Key: "phone", Header: "Phone", Visible: true},
		{Key: KeyDateAdded, Header: "Date Added", Visible: true},
		{Key: "address", Header: "Address", Visible: false},
	}
}
