package view

// Branding: шапка и подвал печатных документов (из конфигурации).
type Branding struct {
	Letterhead []string
	Footer     []string
}

func DefaultBranding() Branding {
	return Branding{
		Letterhead: []string{"Contact Details"},
		Footer:     []string{"Thank you for using our services!"},
	}
}
