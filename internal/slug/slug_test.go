package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"plain", "Estatutos", 60, "estatutos"},
		{"accents stripped", "Librería", 60, "libreria"},
		{"spaces collapse", "La Casa de Krsna", 60, "la-casa-de-krsna"},
		{"punctuation collapses", "Prabhupada Now!", 60, "prabhupada-now"},
		{"mixed separators", "Foto_Final 2023", 60, "foto-final-2023"},
		{"leading trailing junk", "  ¿Qué es el bhakti?  ", 60, "que-es-el-bhakti"},
		{"emoji only", "🏡☎️", 60, ""},
		{"empty", "", 60, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in, tt.maxLen))
		})
	}
}

func TestMakeTruncatesAtWordBoundary(t *testing.T) {
	in := "una conferencia muy larga sobre la ciencia de la relacion con el supremo"
	got := Make(in, 30)
	assert.LessOrEqual(t, len(got), 30)
	assert.False(t, strings.HasSuffix(got, "-"))
	// The cut must land between words, not inside one.
	assert.Equal(t, "una-conferencia-muy-larga", got)
}

func TestMakeDeterministic(t *testing.T) {
	in := "Curso de Bhakti yoga — módulo 2"
	assert.Equal(t, Make(in, 60), Make(in, 60))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "My Episode", Humanize("my-episode"))
	assert.Equal(t, "Manual Del Bhakta", Humanize("manual_del_bhakta"))
	assert.Equal(t, "Archivo Final", Humanize("archivo  final"))
}
