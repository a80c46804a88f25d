package processing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lawgpt-ru/lawsearch/backend/internal/processing"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "Решение суда & определение",
		processing.CleanText("  Решение   суда &amp;\n определение "))
	require.Equal(t, "", processing.CleanText(""))

	// Punctuation and case numbers survive cleaning
	require.Equal(t, "дело № А03-13997/2019, истец: ООО «Вектор»",
		processing.CleanText("дело № А03-13997/2019,  истец:  ООО «Вектор»"))
}

func TestNormalizeDate(t *testing.T) {
	require.Equal(t, "2019-11-05", processing.NormalizeDate("2019-11-05"))
	require.Equal(t, "05.11.2019", processing.NormalizeDate("05.11.2019"))
	require.Equal(t, "не дата", processing.NormalizeDate("не дата"))
	require.Equal(t, "", processing.NormalizeDate(""))
}

func TestBuildChunkID(t *testing.T) {
	a := processing.BuildChunkID("doc-1", 0, "А03-13997/2019")
	b := processing.BuildChunkID("doc-1", 0, "А03-13997/2019")
	require.Equal(t, a, b)
	require.Len(t, a, 40)

	require.NotEqual(t, a, processing.BuildChunkID("doc-1", 1, "А03-13997/2019"))
	require.NotEqual(t, a, processing.BuildChunkID("doc-2", 0, "А03-13997/2019"))

	require.Empty(t, processing.BuildChunkID("", 0, ""))
	require.NotEmpty(t, processing.BuildChunkID("", 0, "А03-13997/2019"))
}
