package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		role   string
		want   Persona
		wantOk bool
	}{
		{"Profesor", Professor, true},
		{"professor", Professor, true},
		{"Kakak Pintar", ElderSibling, true},
		{"teman baik", Friend, true},
		{"TEMAN BAIK", Friend, true},
		{"Sang Penjelajah", Explorer, true},
		{"explorer", Explorer, true},
		{"Guru", Generic, true},
		{"Anak-anak", Generic, true},
		{"pilot", Generic, false},
		{"", Generic, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got, ok := Parse(tt.role)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOk, ok)
		})
	}
}

func TestEveryPanelLabelIsRecognised(t *testing.T) {
	for _, label := range Labels {
		p, ok := Parse(label)
		assert.True(t, ok, label)
		assert.NotEqual(t, Generic, p, label)
	}
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "Nak", Professor.Address(""))
	assert.Equal(t, "Nak Budi", Professor.Address(" Budi "))
	assert.Equal(t, "Dik Sari", ElderSibling.Address("Sari"))
	assert.Equal(t, "Sari", Friend.Address("Sari"))
	assert.Equal(t, "kawan", Friend.Address(""))
}

func TestAcknowledgment(t *testing.T) {
	for _, p := range []Persona{Professor, ElderSibling, Friend, Explorer, Generic} {
		ack := p.Acknowledgment("Budi")
		assert.Contains(t, ack, "Budi", p)
		assert.NotContains(t, ack, "%", p)
	}
}

func TestDirectivesIncludeAddress(t *testing.T) {
	directives := Explorer.Directives("")
	assert.Contains(t, directives[len(directives)-1], "penjelajah muda")
}

func TestFromRole(t *testing.T) {
	p, err := FromRole("Kakak Pintar")
	require.NoError(t, err)
	assert.Equal(t, ElderSibling, p)

	_, err = FromRole("bajak laut")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
