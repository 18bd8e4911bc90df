package view

import (
	"cardscan/internal/record"
	"cardscan/internal/schema"
)

// Bar: декоративная полоска под коротким id. Это не штрихкод.
type Bar struct {
	Digit int  `json:"digit"`
	Tall  bool `json:"tall"`
}

// Bars: чётная цифра даёт короткую полоску, нечётная высокую.
func Bars(padded string) []Bar {
	out := make([]Bar, 0, len(padded))
	for _, r := range padded {
		if r < '0' || r > '9' {
			continue
		}
		d := int(r - '0')
		out = append(out, Bar{Digit: d, Tall: d%2 == 1})
	}
	return out
}

type Line struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Printable struct {
	RecordID string `json:"recordId"`
	ShortID  string `json:"shortId"`
	Bars     []Bar  `json:"bars"`
	Lines    []Line `json:"lines"`
}

type Batch struct {
	Pages []Printable `json:"pages"`
}

// RenderPrintable: те же колонки и порядок, что в таблице; пустое значение печатается пустым.
func RenderPrintable(rec record.Record, cfg schema.ColumnConfig) Printable {
	p := Printable{RecordID: rec.ID, ShortID: PadShortID(rec.ShortID)}
	p.Bars = Bars(p.ShortID)
	for _, c := range columns(cfg) {
		p.Lines = append(p.Lines, Line{Label: c.Header, Value: cell(rec, c.Key, "")})
	}
	return p
}

func RenderExportBatch(records []record.Record, cfg schema.ColumnConfig) Batch {
	b := Batch{Pages: make([]Printable, 0, len(records))}
	for _, rec := range records {
		b.Pages = append(b.Pages, RenderPrintable(rec, cfg))
	}
	return b
}
