package annotation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var participantColumns = []string{"participant_id", "age", "sex"}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestNormalize_Fixtures(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		dialect annotation.Dialect
	}{
		{name: "bids sidecar", fixture: "participants_bids.json", dialect: annotation.DialectBIDS},
		{name: "reproschema mapping", fixture: "participants_reproschema.json", dialect: annotation.DialectReproSchema},
		{name: "bids detected", fixture: "participants_bids.json", dialect: annotation.DialectAuto},
		{name: "reproschema detected", fixture: "participants_reproschema.json", dialect: annotation.DialectAuto},
	}

	age := annotation.NewDescriptor("test", "age")
	sex := annotation.NewDescriptor("test", "sex")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := annotation.Normalize(participantColumns, loadFixture(t, tt.fixture), "test", tt.dialect)
			require.NoError(t, err)

			assert.Equal(t, []annotation.Descriptor{age, sex}, m.Descriptors())

			ageRec, err := m.Lookup(age)
			require.NoError(t, err)
			require.NotEmpty(t, ageRec.IsAbout)
			assert.Equal(t, "http://uri.interlex.org/ilx_0100400", ageRec.IsAbout[0].ID)
			assert.Equal(t, "age", ageRec.SourceVariable)

			sexRec, err := m.Lookup(sex)
			require.NoError(t, err)
			require.NotEmpty(t, sexRec.IsAbout)
			assert.Equal(t, "http://uri.interlex.org/ilx_0738439", sexRec.IsAbout[0].ID)
			require.NotNil(t, sexRec.ResponseOptions)
			assert.Equal(t, "m", sexRec.ResponseOptions.Choices["Male"])
			assert.Equal(t, "f", sexRec.ResponseOptions.Choices["Female"])
			assert.Equal(t, annotation.NotApplicable, sexRec.ResponseOptions.MinValue)
			assert.Equal(t, annotation.NotApplicable, sexRec.ResponseOptions.UnitCode)
		})
	}
}

func TestNormalize_DialectsAgree(t *testing.T) {
	bids, err := annotation.Normalize(participantColumns, loadFixture(t, "participants_bids.json"), "test", annotation.DialectBIDS)
	require.NoError(t, err)
	repro, err := annotation.Normalize(participantColumns, loadFixture(t, "participants_reproschema.json"), "test", annotation.DialectReproSchema)
	require.NoError(t, err)

	require.Equal(t, bids.Descriptors(), repro.Descriptors())
	for _, d := range bids.Descriptors() {
		b, r := bids[d], repro[d]
		assert.Equal(t, b.IsAbout, r.IsAbout, d.String())
		assert.Equal(t, b.ResponseOptions.Choices, r.ResponseOptions.Choices, d.String())
		assert.Equal(t, b.Label, r.Label, d.String())
	}
}

func TestNormalize_IdentifierColumn(t *testing.T) {
	source := loadFixture(t, "participants_reproschema.json")
	pid := annotation.NewDescriptor("test", "participant_id")

	m, err := annotation.Normalize(participantColumns, source, "test", annotation.DialectReproSchema)
	require.NoError(t, err)
	_, err = m.Lookup(pid)
	assert.ErrorIs(t, err, annotation.ErrLookup)

	n := annotation.NewNormalizer(nil, annotation.WithIDColumn(""))
	m, err = n.Normalize(participantColumns, source, "test", annotation.DialectReproSchema)
	require.NoError(t, err)
	rec, err := m.Lookup(pid)
	require.NoError(t, err)
	assert.Equal(t, "src_subject_id", rec.IsAbout[0].Label)
	assert.Len(t, m, 3)
}

func TestNormalize_NoOverlap(t *testing.T) {
	m, err := annotation.Normalize([]string{"height", "weight"}, loadFixture(t, "participants_bids.json"), "test", annotation.DialectBIDS)
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestNormalize_PartialOverlap(t *testing.T) {
	m, err := annotation.Normalize([]string{"participant_id", "age"}, loadFixture(t, "participants_bids.json"), "test", annotation.DialectBIDS)
	require.NoError(t, err)
	assert.Equal(t, []string{"age"}, m.Columns())
}

func TestNormalize_RekeysUnderAssessment(t *testing.T) {
	m, err := annotation.Normalize(participantColumns, loadFixture(t, "participants_reproschema.json"), "phenotype", annotation.DialectReproSchema)
	require.NoError(t, err)
	for _, d := range m.Descriptors() {
		assert.Equal(t, "phenotype", d.Source)
	}
	_, err = m.Lookup(annotation.NewDescriptor("participants.tsv", "age"))
	assert.ErrorIs(t, err, annotation.ErrLookup)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		dialect annotation.Dialect
		assess  string
		wantErr error
	}{
		{
			name:    "invalid JSON",
			source:  `{"age": `,
			dialect: annotation.DialectBIDS,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name:    "top level array",
			source:  `[{"age": {}}]`,
			dialect: annotation.DialectBIDS,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name:    "record not an object",
			source:  `{"age": "years"}`,
			dialect: annotation.DialectBIDS,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name:    "term without id",
			source:  `{"age": {"isAbout": [{"label": "Age"}]}}`,
			dialect: annotation.DialectBIDS,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name:    "nested label",
			source:  `{"age": {"label": {"en": "age"}}}`,
			dialect: annotation.DialectBIDS,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name:    "malformed levels",
			source:  `{"sex": {"levels": ["m", "f"]}}`,
			dialect: annotation.DialectBIDS,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name:    "unparsable descriptor key",
			source:  `{"age": {"label": "age"}}`,
			dialect: annotation.DialectReproSchema,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name:    "source variable disagrees with descriptor",
			source:  `{"DD(source='p.tsv', variable='age')": {"source_variable": "sex"}}`,
			dialect: annotation.DialectReproSchema,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name: "two keys annotate one column",
			source: `{
				"DD(source='a.tsv', variable='age')": {"label": "age"},
				"DD(source='b.tsv', variable='age')": {"label": "age"}
			}`,
			dialect: annotation.DialectReproSchema,
			assess:  "test",
			wantErr: annotation.ErrValidation,
		},
		{
			name:    "empty assessment",
			source:  `{}`,
			dialect: annotation.DialectBIDS,
			assess:  "  ",
			wantErr: annotation.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := annotation.Normalize(participantColumns, []byte(tt.source), tt.assess, tt.dialect)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, m)
		})
	}
}

func TestNormalize_NumbersAreStringified(t *testing.T) {
	source := `{"age": {"minValue": 0, "maxValue": 2.5, "levels": {"young": 1}}}`
	m, err := annotation.Normalize([]string{"age"}, []byte(source), "test", annotation.DialectBIDS)
	require.NoError(t, err)

	ro := m[annotation.NewDescriptor("test", "age")].ResponseOptions
	require.NotNil(t, ro)
	assert.Equal(t, "0", ro.MinValue)
	assert.Equal(t, "2.5", ro.MaxValue)
	assert.Equal(t, "1", ro.Choices["young"])
}

func TestNormalize_BIDSStandardKeys(t *testing.T) {
	source := `{
		"sex": {
			"LongName": "Sex",
			"Description": "sex of participant",
			"Units": "NA",
			"Levels": {"m": "Male", "f": "Female"},
			"TermURL": "http://uri.interlex.org/ilx_0738439"
		}
	}`
	m, err := annotation.Normalize([]string{"sex"}, []byte(source), "test", annotation.DialectBIDS)
	require.NoError(t, err)

	rec := m[annotation.NewDescriptor("test", "sex")]
	assert.Equal(t, "Sex", rec.Label)
	assert.Equal(t, "sex of participant", rec.Description)
	assert.Equal(t, "sex", rec.SourceVariable)
	require.Len(t, rec.IsAbout, 1)
	assert.Equal(t, annotation.TermRef{ID: "http://uri.interlex.org/ilx_0738439", Label: "sex"}, rec.IsAbout[0])
	require.NotNil(t, rec.ResponseOptions)
	assert.Equal(t, "NA", rec.ResponseOptions.UnitCode)
	assert.Equal(t, map[string]string{"Male": "m", "Female": "f"}, rec.ResponseOptions.Choices)
}

func TestNormalize_BIDSLevelsSharedDescription(t *testing.T) {
	source := `{"sex": {"Levels": {"1": "Male", "2": "Male", "3": "Female"}}}`
	_, err := annotation.Normalize([]string{"sex"}, []byte(source), "test", annotation.DialectBIDS)
	require.ErrorIs(t, err, annotation.ErrValidation)
	assert.Contains(t, err.Error(), `codes "1" and "2" share the description "Male"`)
}

func TestNormalize_LowerCaseKeysWin(t *testing.T) {
	source := `{"age": {"label": "age", "LongName": "Age in years", "unitCode": "years", "Units": "y"}}`
	m, err := annotation.Normalize([]string{"age"}, []byte(source), "test", annotation.DialectBIDS)
	require.NoError(t, err)

	rec := m[annotation.NewDescriptor("test", "age")]
	assert.Equal(t, "age", rec.Label)
	assert.Equal(t, "years", rec.ResponseOptions.UnitCode)
}

func TestNormalize_SingleTermObject(t *testing.T) {
	source := `{"age": {"isAbout": {"@id": "http://uri.interlex.org/ilx_0100400", "label": "Age"}}}`
	m, err := annotation.Normalize([]string{"age"}, []byte(source), "test", annotation.DialectBIDS)
	require.NoError(t, err)
	assert.Equal(t, []annotation.TermRef{{ID: "http://uri.interlex.org/ilx_0100400", Label: "Age"}},
		m[annotation.NewDescriptor("test", "age")].IsAbout)
}

func TestNormalize_ReproSchemaChoiceArray(t *testing.T) {
	source := `{
		"DD(source='p.tsv', variable='sex')": {
			"responseOptions": {
				"choices": [{"name": "Male", "value": "m"}, {"name": "Female", "value": "f"}]
			}
		}
	}`
	m, err := annotation.Normalize([]string{"sex"}, []byte(source), "test", annotation.DialectReproSchema)
	require.NoError(t, err)

	rec := m[annotation.NewDescriptor("test", "sex")]
	assert.Equal(t, "sex", rec.SourceVariable)
	assert.Equal(t, []string{"Female", "Male"}, rec.ResponseOptions.ChoiceLabels())

	_, err = annotation.Normalize([]string{"sex"}, []byte(`{
		"DD(source='p.tsv', variable='sex')": {
			"responseOptions": {"choices": [{"name": "Male", "value": "m"}, {"name": "Male", "value": "1"}]}
		}
	}`), "test", annotation.DialectReproSchema)
	assert.ErrorIs(t, err, annotation.ErrValidation)
}

func TestNormalize_RecordWithoutResponseOptions(t *testing.T) {
	m, err := annotation.Normalize([]string{"age"}, []byte(`{"age": {"label": "age"}}`), "test", annotation.DialectBIDS)
	require.NoError(t, err)

	rec := m[annotation.NewDescriptor("test", "age")]
	assert.Nil(t, rec.ResponseOptions)
	assert.NotNil(t, rec.IsAbout)
	assert.Empty(t, rec.IsAbout)
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]annotation.Dialect{
		"":            annotation.DialectAuto,
		"auto":        annotation.DialectAuto,
		"BIDS":        annotation.DialectBIDS,
		"reproschema": annotation.DialectReproSchema,
	} {
		got, err := annotation.ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := annotation.ParseDialect("redcap")
	assert.ErrorIs(t, err, annotation.ErrConfiguration)
}

func TestDetectDialect(t *testing.T) {
	assert.Equal(t, annotation.DialectBIDS, annotation.DetectDialect(map[string]any{}))
	assert.Equal(t, annotation.DialectBIDS, annotation.DetectDialect(map[string]any{
		"DD(source='p.tsv', variable='age')": map[string]any{},
		"sex":                                map[string]any{},
	}))
	assert.Equal(t, annotation.DialectReproSchema, annotation.DetectDialect(map[string]any{
		"DD(source='p.tsv', variable='age')": map[string]any{},
	}))
}
