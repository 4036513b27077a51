package hq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		input   string
		want    Attribute
		wantErr bool
	}{
		{"tissue", AttrTissue, false},
		{"Disease", AttrDisease, false},
		{"CELLTYPE", AttrCelltype, false},
		{"sex", AttrSex, false},
		{"age", AttrAge, false},
		{"organism", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAttribute(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttributeOntology(t *testing.T) {
	tests := []struct {
		attr         Attribute
		ontology     string
		hierarchical bool
	}{
		{AttrTissue, OntologyUberon, true},
		{AttrDisease, OntologyMondo, true},
		{AttrCelltype, OntologyCL, true},
		{AttrSex, "", false},
		{AttrAge, "", false},
	}

	for _, tt := range tests {
		onto, ok := tt.attr.Ontology()
		assert.Equal(t, tt.hierarchical, ok, "attribute %s", tt.attr)
		assert.Equal(t, tt.ontology, onto, "attribute %s", tt.attr)
		assert.Equal(t, tt.hierarchical, tt.attr.Hierarchical())
	}
}

func TestValidEcode(t *testing.T) {
	for _, e := range []string{"expert", "semi", "crowd", "any", "EXPERT", "Any"} {
		assert.True(t, ValidEcode(e), "ecode %q should be valid", e)
	}
	for _, e := range []string{"", "predicted", "expert-curated"} {
		assert.False(t, ValidEcode(e), "ecode %q should be invalid", e)
	}
}

func TestMetadataFieldsPerLevel(t *testing.T) {
	assert.Contains(t, MetadataFields("sample"), "series")
	assert.NotContains(t, MetadataFields("series"), "series")
	assert.Contains(t, MetadataFields("series"), "sample_count")
	assert.Nil(t, MetadataFields("platform"))
}

func TestMapSexTerm(t *testing.T) {
	assert.Equal(t, "M", MapSexTerm("male"))
	assert.Equal(t, "F", MapSexTerm("Female"))
	assert.Equal(t, "M", MapSexTerm("M"))
	assert.Equal(t, "bogus", MapSexTerm("bogus"))
}

func TestRecord(t *testing.T) {
	rec, err := Record(DefaultRecordDOI)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Version)
	assert.NotEmpty(t, rec.Filename)

	_, err = Record("00000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "00000000")
}
