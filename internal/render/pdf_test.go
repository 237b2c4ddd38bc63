package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/cvforge/internal/extract"
	"github.com/kiranshivaraju/cvforge/internal/render"
)

func TestPDF_ProducesValidHeader(t *testing.T) {
	out, err := render.PDF("Name: Test Candidate\n\nExperience:\n- Built things")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
	assert.Greater(t, len(out), 500)
}

func TestPDF_LongLinesAndManyPages(t *testing.T) {
	long := strings.Repeat("wordwordword ", 50) // forces hard wraps
	text := strings.Repeat(long+"\n", 120)      // forces page breaks

	out, err := render.PDF(text)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}

func TestPDF_AccentedTextSurvivesRoundTrip(t *testing.T) {
	out, err := render.PDF("José García, Ingeniero de Software\nAños de experiencia: 5")
	require.NoError(t, err)

	text, err := extract.Text(out, "cv.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "José García")
	assert.Contains(t, text, "Años de experiencia")
	assert.NotContains(t, text, "Ã©")
}

func TestPDF_EmptyText(t *testing.T) {
	out, err := render.PDF("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}
