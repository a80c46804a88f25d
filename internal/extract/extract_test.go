package extract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lawgpt-ru/lawsearch/backend/internal/extract"
)

func TestCaseNumber(t *testing.T) {
	require.Equal(t, "А03-13997/2019",
		extract.CaseNumber("Привет! Приведи информацию по делу А03-13997/2019"))

	// Latin look-alike prefix
	require.Equal(t, "A40-77777/2021",
		extract.CaseNumber("дело A40-77777/2021 рассмотрено"))

	// Alternative format without the court number
	require.Equal(t, "А-12345/2018",
		extract.CaseNumber("по делу А-12345/2018"))
}

func TestCaseNumberYearNormalization(t *testing.T) {
	require.Equal(t, "А40-123/2024", extract.CaseNumber("спор А40-123/24"))
	require.Equal(t, "А40-123/1973", extract.CaseNumber("архивное дело А40-123/73"))

	// Suffix after the year survives, only the year substring is rewritten
	require.Equal(t, "А03-13997/2019-55", extract.CaseNumber("дело А03-13997/19-55"))

	// Four-digit years stay untouched
	require.Equal(t, "А03-13997/2019", extract.CaseNumber("дело А03-13997/2019"))
}

func TestCaseNumberAbsent(t *testing.T) {
	require.Empty(t, extract.CaseNumber("Найди судебную практику по аренде"))
	require.Empty(t, extract.CaseNumber(""))
}

func TestCompanyNameQuoted(t *testing.T) {
	// The full matched span including the legal-form prefix comes back
	require.Equal(t, "ООО «Сахкомцентр»",
		extract.CompanyName("Найди решения по ООО «Сахкомцентр»"))

	require.Equal(t, `АО "Росагро"`,
		extract.CompanyName(`споры с АО "Росагро" за 2020 год`))
}

func TestCompanyNameRegistrationNumbers(t *testing.T) {
	require.Equal(t, "ОГРН: 1027700132195",
		extract.CompanyName("организация с ОГРН: 1027700132195"))
	require.Equal(t, "ИНН: 7701234567",
		extract.CompanyName("контрагент ИНН: 7701234567"))
}

func TestCompanyNameEntrepreneur(t *testing.T) {
	require.Equal(t, "ИП Иванов Иван Иванович",
		extract.CompanyName("иск к ИП Иванов Иван Иванович о взыскании"))
}

func TestCompanyNameAbsent(t *testing.T) {
	require.Empty(t, extract.CompanyName("практика по договорам поставки"))
}

func TestDocumentType(t *testing.T) {
	require.Equal(t, "исковое заявление", extract.DocumentType("подготовь иск о взыскании"))
	require.Equal(t, "исковое заявление", extract.DocumentType("нужно ИСКОВОЕ ЗАЯВЛЕНИЕ"))
	require.Equal(t, "заявление", extract.DocumentType("подай ходатайство об отложении"))
	require.Equal(t, "постановление", extract.DocumentType("найди постановление суда"))
	require.Empty(t, extract.DocumentType("договор аренды нежилого помещения"))
}

func TestDocumentTypeOrderIsFixed(t *testing.T) {
	// "иск" is contained in "исковое заявление"-related queries and also in
	// words triggering later entries; the first declared label must win.
	require.Equal(t, "исковое заявление",
		extract.DocumentType("отзыв на исковое заявление"))
}

func TestAll(t *testing.T) {
	entities := extract.All("Найди иск по делу А03-13997/2019 против ООО «Сахкомцентр»")
	require.Equal(t, "А03-13997/2019", entities.CaseNumber)
	require.Equal(t, "ООО «Сахкомцентр»", entities.CompanyName)
	require.Equal(t, "исковое заявление", entities.DocumentType)

	empty := extract.All("просто текст без сущностей")
	require.Empty(t, empty.CaseNumber)
	require.Empty(t, empty.CompanyName)
	require.Empty(t, empty.DocumentType)
}
