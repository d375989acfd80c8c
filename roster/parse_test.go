package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterFixture = `
<html><body><div class="data-wrap">
<div>
  <p><strong>Nursing</strong></p>
  <p>Источник финансирования: <i>Бюджетное финансирование</i></p>
  <p>Форма обучения: <i>Очная</i></p>
  <p>Количество мест: <i>2</i></p>
</div>
<table class="table-bordered">
  <thead><tr><th>#</th><th>Name</th><th>ID</th><th>Priority</th><th>Consent</th><th>Doc</th><th>Score</th><th>Subjects</th></tr></thead>
  <tbody>
    <tr class="srt"><td>1</td><td>***</td><td>123-456-789 00</td><td>1</td><td>Да</td><td>Нет</td><td>4,85</td><td>5 5 4</td></tr>
    <tr class="srt"><td>2</td><td>***</td><td>222-333-444 55</td><td>2</td><td>Нет</td><td>Да</td><td>4.10</td><td>4 4 4</td></tr>
    <tr class="srt"><td>3</td><td>***</td><td>999-888-777 66</td></tr>
  </tbody>
</table>
<div>
  <p><strong>Nursing</strong></p>
  <p>Источник финансирования: <i>Коммерческое финансирование</i></p>
  <p>Форма обучения: <i>Очная</i></p>
  <p>Количество мест: <i>5</i></p>
</div>
<table class="table-bordered">
  <tbody>
    <tr class="srt"><td>1</td><td>***</td><td>123-456-789 00</td><td>3</td><td>Да</td><td>Нет</td><td>4,85</td><td>5 5 4</td></tr>
  </tbody>
</table>
</div></body></html>`

func TestParse_SectionsAndHeaders(t *testing.T) {
	sections, err := Parse(rosterFixture, DefaultLabels())
	require.NoError(t, err)
	require.Len(t, sections, 2)

	budget := sections[0]
	assert.Equal(t, "Nursing", budget.Header.Name)
	assert.Equal(t, "Бюджетное финансирование", budget.Header.Funding)
	assert.Equal(t, "Очная", budget.Header.StudyForm)
	assert.Equal(t, 2, budget.Header.Seats)

	commercial := sections[1]
	assert.Equal(t, "Коммерческое финансирование", commercial.Header.Funding)
	assert.Equal(t, 5, commercial.Header.Seats)
}

func TestParse_RowsAndMalformedRowSkipping(t *testing.T) {
	sections, err := Parse(rosterFixture, DefaultLabels())
	require.NoError(t, err)

	budget := sections[0]
	require.Len(t, budget.Rows, 2)
	assert.Equal(t, 1, budget.SkippedRows, "the three-cell row must be skipped, not fatal")

	first := budget.Rows[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "123-456-789 00", first.CandidateID)
	assert.Equal(t, 1, first.Priority)

	labels := DefaultLabels()
	assert.True(t, first.HasConsent(labels))
	assert.False(t, first.HasOriginalDocument(labels))

	second := budget.Rows[1]
	assert.False(t, second.HasConsent(labels))
	assert.True(t, second.HasOriginalDocument(labels))
}

func TestRowScore_DecimalCommaTolerated(t *testing.T) {
	comma := Row{AverageScore: "4,85"}
	dot := Row{AverageScore: "4.10"}
	junk := Row{AverageScore: "—"}

	s, err := comma.Score()
	require.NoError(t, err)
	assert.InDelta(t, 4.85, s, 1e-9)

	s, err = dot.Score()
	require.NoError(t, err)
	assert.InDelta(t, 4.10, s, 1e-9)

	_, err = junk.Score()
	assert.Error(t, err)
}
