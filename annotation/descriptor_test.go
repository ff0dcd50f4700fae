package annotation_test

import (
	"encoding/json"
	"testing"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptor_String(t *testing.T) {
	d := annotation.NewDescriptor("test", "age")
	assert.Equal(t, "DD(source='test', variable='age')", d.String())
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    annotation.Descriptor
		wantErr bool
	}{
		{
			name:  "canonical form",
			input: "DD(source='participants.tsv', variable='sex')",
			want:  annotation.Descriptor{Source: "participants.tsv", Variable: "sex"},
		},
		{
			name:  "double quotes and padding",
			input: `  DD( source = "test" , variable = "age" )  `,
			want:  annotation.Descriptor{Source: "test", Variable: "age"},
		},
		{
			name:  "mixed quotes",
			input: `DD(source='a b', variable="c-d")`,
			want:  annotation.Descriptor{Source: "a b", Variable: "c-d"},
		},
		{name: "bare column name", input: "age", wantErr: true},
		{name: "variable before source", input: "DD(variable='age', source='test')", wantErr: true},
		{name: "unbalanced quote", input: `DD(source='test", variable='age')`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := annotation.ParseDescriptor(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, annotation.ErrValidation)
				assert.False(t, annotation.IsDescriptor(tt.input))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, annotation.IsDescriptor(tt.input))
		})
	}
}

func TestDescriptor_RoundTrip(t *testing.T) {
	d := annotation.NewDescriptor("test", "participant_id")
	parsed, err := annotation.ParseDescriptor(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)
}

func TestDescriptor_JSONMapKey(t *testing.T) {
	m := map[annotation.Descriptor]string{
		annotation.NewDescriptor("test", "age"): "x",
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"DD(source='test', variable='age')": "x"}`, string(data))

	var back map[annotation.Descriptor]string
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}
