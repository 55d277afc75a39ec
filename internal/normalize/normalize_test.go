package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobalert/internal/normalize"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Data  Analyst", "data analyst"},
		{"\tSenior\nData\r\n Analyst  ", "senior data analyst"},
		{"Remote - US", "remote - us"},
		{"ALREADY lower", "already lower"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize.Normalize(tt.in), "input %q", tt.in)
	}
}

func TestCleanText_PreservesCase(t *testing.T) {
	assert.Equal(t, "New York, NY", normalize.CleanText("  New   York,\n NY "))
}

func TestFold_StripsDiacritics(t *testing.T) {
	assert.Equal(t, "analista de datos - sao paulo", normalize.Fold("Analista  de Datos - São Paulo"))
	assert.Equal(t, "", normalize.Fold(""))
}
