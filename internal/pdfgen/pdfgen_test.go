package pdfgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		category string
		index    int
		want     string
	}{
		{Financial, 0, "Q1_2024_Financial_Report.pdf"},
		{Financial, 2, "Revenue_Analysis_Mar_2024.pdf"},
		{Financial, 10, "Q3_2024_Financial_Report_2.pdf"},
		{Technical, 0, "API_Documentation_v1.0.pdf"},
		{Technical, 14, "Load_Testing_Results_202403.pdf"},
		{HR, 1, "Remote_Work_Policy.pdf"},
		{HR, 16, "Remote_Work_Policy_2.pdf"},
		{Research, 6, "Technology_Assessment_Blockchain.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := Filename(tt.category, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Filename("poetry", 0)
	assert.Error(t, err)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Remote Work Policy", Title("Remote_Work_Policy.pdf"))
	assert.Equal(t, "Q1 2024 Financial Report", Title("Q1_2024_Financial_Report.pdf"))
}

func TestGrouped(t *testing.T) {
	assert.Equal(t, "7", grouped(7))
	assert.Equal(t, "999", grouped(999))
	assert.Equal(t, "1,000", grouped(1000))
	assert.Equal(t, "12,345", grouped(12345))
	assert.Equal(t, "1,234,567", grouped(1234567))
}

func TestCorpusDeterministic(t *testing.T) {
	a := Corpus(4, 42)
	b := Corpus(4, 42)
	assert.Equal(t, a, b)
	assert.Len(t, a, 4*len(Categories()))

	c := Corpus(4, 7)
	assert.NotEqual(t, a, c)
}

func TestCorpusUniqueFilenamesAndASCII(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Corpus(20, 1) {
		assert.False(t, seen[s.Filename], "duplicate %s", s.Filename)
		seen[s.Filename] = true
		assert.Equal(t, Title(s.Filename), s.Title)
		for _, p := range s.Paragraphs {
			for _, r := range p {
				require.Less(t, r, rune(128), "non-ascii text in %s", s.Filename)
			}
		}
	}
	assert.Len(t, seen, 100)
}

func TestHRPolicyMentionsItsTitle(t *testing.T) {
	for _, s := range Corpus(2, 3) {
		if s.Filename == "Remote_Work_Policy.pdf" {
			assert.Contains(t, strings.Join(s.Paragraphs, " "), "Remote Work Policy")
			return
		}
	}
	t.Fatal("Remote_Work_Policy.pdf not generated")
}

func TestRender(t *testing.T) {
	data, err := Render("Sample", []string{"First paragraph.", "Second paragraph."})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))

	blank, err := RenderBlank(2)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(blank), "%PDF-"))
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pdfs")
	paths, err := Generate(dir, 2, 42)
	require.NoError(t, err)
	assert.Len(t, paths, 10)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err = Generate(dir, 0, 42)
	assert.Error(t, err)
}
