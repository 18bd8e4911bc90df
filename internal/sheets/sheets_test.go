package sheets

import (
	"context"
	"errors"
	"testing"

	"cardscan/internal/apperr"
	"cardscan/internal/record"
	"cardscan/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type fakeBackend struct {
	existing  string
	created   [][]string
	rows      [][]string
	finds     int
	findErr   error
	appendErr error
}

func (f *fakeBackend) FindSpreadsheet(context.Context, string) (string, bool, error) {
	f.finds++
	if f.findErr != nil {
		return "", false, f.findErr
	}
	return f.existing, f.existing != "", nil
}

func (f *fakeBackend) CreateSpreadsheet(_ context.Context, _, _ string, headers []string) (string, error) {
	f.created = append(f.created, headers)
	f.existing = "sheet-1"
	return f.existing, nil
}

func (f *fakeBackend) AppendRow(_ context.Context, _, _ string, row []string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, row)
	return nil
}

func jane() record.Record {
	r := record.New(map[string]string{"name": "Jane Doe", "email": "j@x.com", "address": "hidden"})
	r.ID = "r1"
	return r
}

func TestAppendCreatesWithHeadersOnce(t *testing.T) {
	b := &fakeBackend{}
	e := NewExporter(b, "", "", nil)
	ctx := context.Background()

	id, err := e.Append(ctx, jane(), schema.Default())
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", id)
	_, err = e.Append(ctx, jane(), schema.Default())
	require.NoError(t, err)

	require.Len(t, b.created, 1)
	assert.Equal(t, []string{"Name", "Company", "Email", "Phone", "Date Added"}, b.created[0])
	assert.Equal(t, 1, b.finds)
	require.Len(t, b.rows, 2)
	assert.Equal(t, []string{"Jane Doe", "", "j@x.com", "", ""}, b.rows[0])
}

func TestAppendUsesExistingSheet(t *testing.T) {
	b := &fakeBackend{existing: "abc"}
	id, err := NewExporter(b, "", "", nil).Append(context.Background(), jane(), schema.Default())
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
	assert.Empty(t, b.created)
}

func TestAppendNotConfigured(t *testing.T) {
	_, err := NewExporter(nil, "", "", nil).Append(context.Background(), jane(), schema.Default())
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestAppendErrorKinds(t *testing.T) {
	b := &fakeBackend{findErr: &googleapi.Error{Code: 401, Message: "Invalid Credentials"}}
	_, err := NewExporter(b, "", "", nil).Append(context.Background(), jane(), schema.Default())
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
	assert.Contains(t, apperr.Message(err), "Invalid Credentials")

	b = &fakeBackend{existing: "abc", appendErr: &googleapi.Error{Code: 500, Message: "backend"}}
	e := NewExporter(b, "", "", nil)
	_, err = e.Append(context.Background(), jane(), schema.Default())
	assert.Equal(t, apperr.KindTransport, apperr.KindOf(err))

	// после ошибки таблицу ищем заново
	b.appendErr = nil
	_, err = e.Append(context.Background(), jane(), schema.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, b.finds)

	b = &fakeBackend{findErr: errors.New("dial tcp: timeout")}
	_, err = NewExporter(b, "", "", nil).Append(context.Background(), jane(), schema.Default())
	assert.Equal(t, apperr.KindTransport, apperr.KindOf(err))
}

func TestRangeAndQueryQuoting(t *testing.T) {
	assert.Equal(t, "'Contacts'!A1", a1Range("Contacts"))
	assert.Equal(t, "'Bob''s'!A1", a1Range("Bob's"))
	assert.Equal(t, `Bob\'s`, quoteQuery("Bob's"))
}

func TestNewGoogleWithoutCredentials(t *testing.T) {
	g, err := NewGoogle(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, g)

	_, err = NewGoogle(context.Background(), "/does/not/exist.json")
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}
