package api

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"cardscan/internal/record"
)

// ==== Типы сортировки и параметров листинга ====

type SortKey struct {
	Field string
	Desc  bool
}

type ListParams struct {
	Limit       int
	Offset      int
	Sort        []SortKey
	Q           string
	Placeholder *string // nil: из конфигурации
}

// ==== Парсинг query-параметров ====

func parseListParams(q url.Values) ListParams {
	// limit
	limit := 500
	lv := q.Get("_limit")
	if lv == "" {
		lv = q.Get("limit")
	}
	if lv != "" {
		if n, err := strconv.Atoi(lv); err == nil && n >= 0 && n <= 5000 {
			limit = n
		}
	}

	// offset
	offset := 0
	ov := q.Get("_offset")
	if ov == "" {
		ov = q.Get("offset")
	}
	if ov != "" {
		if n, err := strconv.Atoi(ov); err == nil && n >= 0 {
			offset = n
		}
	}

	// sort
	var sortKeys []SortKey
	sv := strings.TrimSpace(q.Get("_sort"))
	if sv == "" {
		sv = strings.TrimSpace(q.Get("sort"))
	}
	for _, p := range strings.Split(sv, ",") {
		p = strings.TrimSpace(p)
		desc := false
		if strings.HasPrefix(p, "-") {
			desc = true
			p = strings.TrimPrefix(p, "-")
		} else {
			p = strings.TrimPrefix(p, "+")
		}
		if p != "" {
			sortKeys = append(sortKeys, SortKey{Field: p, Desc: desc})
		}
	}

	lp := ListParams{
		Limit:  limit,
		Offset: offset,
		Sort:   sortKeys,
		Q:      strings.TrimSpace(q.Get("q")),
	}
	if vals, ok := q["placeholder"]; ok && len(vals) > 0 {
		p := vals[0]
		lp.Placeholder = &p
	}
	return lp
}

// matchQ: подстрока в любом поле, без учёта регистра.
func matchQ(rec record.Record, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, v := range rec.Fields {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// page режет уже отсортированный список.
func page(recs []record.Record, offset, limit int) []record.Record {
	if offset > len(recs) {
		offset = len(recs)
	}
	end := offset + limit
	if end > len(recs) {
		end = len(recs)
	}
	return recs[offset:end]
}

// ==== Сортировка: пустые значения всегда в конце ====

func cmpByKey(a, b record.Record, key string, desc bool) int {
	va, oka := a.Value(key)
	vb, okb := b.Value(key)
	na := !oka || va == ""
	nb := !okb || vb == ""

	if na && nb {
		return 0
	}
	if na != nb {
		if na {
			return +1
		}
		return -1
	}

	var rel int
	if key == record.KeyShortID {
		rel = a.ShortID - b.ShortID
	} else {
		rel = strings.Compare(strings.ToLower(va), strings.ToLower(vb))
	}
	if desc {
		rel = -rel
	}
	return rel
}

func sortRecords(records []record.Record, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, k := range keys {
			if c := cmpByKey(records[i], records[j], k.Field, k.Desc); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
