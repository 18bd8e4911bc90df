package schema

import (
	"os"
	"path/filepath"
	"testing"

	"cardscan/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	cases := map[string]string{
		"Job Title":         "job_title",
		"  Job   Title  ":   "job_title",
		"LinkedIn\tProfile": "linkedin_profile",
		"Fax":               "fax",
	}
	for in, want := range cases {
		assert.Equal(t, want, DeriveKey(in), in)
	}
}

func TestRelabelKeepsKeyAndOthers(t *testing.T) {
	cfg := Default()
	for _, f := range cfg {
		out, err := cfg.Relabel(f.Key, "Renamed")
		require.NoError(t, err)
		require.Len(t, out, len(cfg))
		for i := range cfg {
			assert.Equal(t, cfg[i].Key, out[i].Key)
			assert.Equal(t, cfg[i].Visible, out[i].Visible)
			if cfg[i].Key == f.Key {
				assert.Equal(t, "Renamed", out[i].Header)
			} else {
				assert.Equal(t, cfg[i].Header, out[i].Header)
			}
		}
	}
	// исходный список не тронут
	assert.Equal(t, Default(), cfg)
}

func TestRelabelUnknownKey(t *testing.T) {
	cfg := Default()
	out, err := cfg.Relabel("fax", "Fax")
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, cfg, out)
}

func TestRemoveReservedRejected(t *testing.T) {
	cfg := Default()
	for _, k := range Reserved {
		out, err := cfg.Remove(k)
		require.Error(t, err, k)
		assert.ErrorIs(t, err, ErrReservedField)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, Default(), out)
	}
}

func TestRemoveOrdinaryField(t *testing.T) {
	out, err := Default().Remove("company")
	require.NoError(t, err)
	assert.False(t, out.Has("company"))
	assert.Equal(t, []string{"name", "email", "phone", "dateAdded", "address"}, out.Keys())
}

func TestAddDerivesKey(t *testing.T) {
	out, f, err := Default().Add("Job Title")
	require.NoError(t, err)
	assert.Equal(t, FieldDefinition{Key: "job_title", Header: "Job Title", Visible: true}, f)
	assert.Equal(t, f, out[len(out)-1])
	assert.Len(t, out, len(Default())+1)
}

func TestAddRejections(t *testing.T) {
	cfg := Default()

	out, _, err := cfg.Add("")
	assert.ErrorIs(t, err, ErrEmptyHeader)
	assert.Equal(t, cfg, out)

	out, _, err = cfg.Add("   ")
	assert.ErrorIs(t, err, ErrEmptyHeader)
	assert.Equal(t, cfg, out)

	withTitle, _, err := cfg.Add("Job Title")
	require.NoError(t, err)
	out, _, err = withTitle.Add("  job   TITLE ")
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, withTitle, out)

	out, _, err = cfg.Add("Email")
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, cfg, out)
}

func TestSetVisibleAllHidden(t *testing.T) {
	cfg := Default()
	var err error
	for _, k := range cfg.Keys() {
		cfg, err = cfg.SetVisible(k, false)
		require.NoError(t, err)
	}
	assert.Empty(t, cfg.Visible())
	assert.Len(t, cfg, len(Default()))
}

func TestFormFieldsSkipSystemManaged(t *testing.T) {
	cfg := append(Default(), FieldDefinition{Key: KeyShortID, Header: "ID", Visible: true})
	assert.Equal(t, []string{"name", "company", "email", "phone", "address"}, cfg.FormFields().Keys())
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	noName, err := Default().Remove("company")
	require.NoError(t, err)
	noName = noName[1:]
	assert.ErrorIs(t, noName.Validate(), ErrMissingCore)

	dup := append(Default(), FieldDefinition{Key: "email", Header: "E-mail"})
	assert.ErrorIs(t, dup.Validate(), ErrDuplicateKey)
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "columns.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`columns:
  - key: name
    header: Full Name
    visible: true
  - header: Job Title
    visible: true
  - key: dateAdded
    header: Added
    visible: false
`), 0o644))

	cfg, err := LoadSeed(p)
	require.NoError(t, err)
	assert.Equal(t, ColumnConfig{
		{Key: "name", Header: "Full Name", Visible: true},
		{Key: "job_title", Header: "Job Title", Visible: true},
		{Key: "dateAdded", Header: "Added", Visible: false},
	}, cfg)
}

func TestLoadSeedWithoutReserved(t *testing.T) {
	p := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(p, []byte("columns:\n  - key: email\n    header: Email\n"), 0o644))
	_, err := LoadSeed(p)
	assert.ErrorIs(t, err, ErrMissingCore)
}

func TestAddRejectsRecordIDKey(t *testing.T) {
	cfg := Default()
	out, _, err := cfg.Add("ID")
	assert.ErrorIs(t, err, ErrReservedField)
	assert.Equal(t, cfg, out)
}

func TestAddRejectsSystemManagedKey(t *testing.T) {
	cfg := Default()
	out, _, err := cfg.Add("Six Digit ID")
	require.ErrorIs(t, err, ErrReservedField)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, cfg, out)
	assert.False(t, out.Has(KeyShortID))
}
