package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

func TestComputeIsIdempotent(t *testing.T) {
	clubs := sampleClubs()
	for _, q := range allQueries() {
		assert.Equal(t, Compute(clubs, q), Compute(clubs, q), "%+v", q)
	}
}

func TestComputeNeverGrowsOrMutatesInput(t *testing.T) {
	clubs := sampleClubs()
	before := ids(clubs)
	for _, q := range allQueries() {
		out := Compute(clubs, q)
		assert.LessOrEqual(t, len(out), len(clubs))
	}
	assert.Equal(t, before, ids(clubs))
}

func TestComputeCategoryExclusivity(t *testing.T) {
	clubs := sampleClubs()
	for _, c := range models.Categories() {
		out := Compute(clubs, models.QueryState{Category: models.FilterFor(c), Sort: models.SortByName})
		for _, club := range out {
			assert.Equal(t, c, club.Category)
		}
	}
}

func TestComputeRecruitingFilter(t *testing.T) {
	out := Compute(sampleClubs(), models.QueryState{Category: models.FilterRecruiting, Sort: models.SortByName})
	require.NotEmpty(t, out)
	for _, club := range out {
		assert.True(t, club.IsRecruiting, club.Name)
	}
}

func TestComputeSearchTargets(t *testing.T) {
	clubs := sampleClubs()

	byName := Compute(clubs, models.QueryState{Search: "dunk", Category: models.FilterAll, Sort: models.SortByName})
	assert.Equal(t, []int64{1}, ids(byName))

	byDescription := Compute(clubs, models.QueryState{Search: "해커톤에", Category: models.FilterAll})
	assert.Equal(t, []int64{13}, ids(byDescription))

	byActivity := Compute(clubs, models.QueryState{Search: "야외 등반", Category: models.FilterAll})
	assert.Equal(t, []int64{12}, ids(byActivity))

	combined := Compute(clubs, models.QueryState{Search: "훈련", Category: models.FilterFor(models.CategorySports), Sort: models.SortByName})
	assert.ElementsMatch(t, []int64{1, 12}, ids(combined))
}

func TestComputeSortByName(t *testing.T) {
	out := Compute(sampleClubs()[:5], models.QueryState{Category: models.FilterAll, Sort: models.SortByName})
	names := make([]string, len(out))
	for i, c := range out {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"농구동아리 DUNK", "연극동아리 무대", "요리동아리 맛나", "클라이밍동아리", "환경지킴이"}, names)

	again := Compute(out, models.QueryState{Category: models.FilterAll, Sort: models.SortByName})
	assert.Equal(t, ids(out), ids(again))
}

func TestComputeSortByMemberCountIsStableAndDescending(t *testing.T) {
	out := Compute(sampleClubs(), models.QueryState{Category: models.FilterAll, Sort: models.SortByMemberCount})
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].MemberCount, out[i].MemberCount)
	}
	// 연극동아리 (id 9) and 코딩동아리 (id 13) tie at 42 and keep input order.
	assert.Equal(t, []int64{11, 9, 13, 1, 12, 10}, ids(out))
}

func TestComputeSortByCategoryLabel(t *testing.T) {
	out := Compute(sampleClubs(), models.QueryState{Category: models.FilterAll, Sort: models.SortByCategory})
	labels := make([]string, len(out))
	for i, c := range out {
		labels[i] = c.Category.Label()
	}
	assert.Equal(t, []string{"봉사/종교", "예술/문화", "체육/스포츠", "체육/스포츠", "취미/여가", "학술/교육"}, labels)
	// Two sports clubs keep input order.
	assert.Equal(t, int64(1), out[2].ID)
	assert.Equal(t, int64(12), out[3].ID)
}

func TestComputeUnknownSortKeepsInputOrder(t *testing.T) {
	clubs := sampleClubs()
	out := Compute(clubs, models.QueryState{Category: models.FilterAll, Sort: "popularity"})
	assert.Equal(t, ids(clubs), ids(out))
	assert.False(t, KnownSortKey("popularity"))
}

func TestScenarioBSearchKorean(t *testing.T) {
	clubs := []models.Club{
		{ID: 1, Name: "농구동아리 DUNK", Category: models.CategorySports, Activities: []string{"경기"}},
		{ID: 2, Name: "연극동아리", Category: models.CategoryArts, Description: "공연"},
		{ID: 3, Name: "요리동아리", Category: models.CategoryHobby, Description: "요리"},
		{ID: 4, Name: "환경지킴이", Category: models.CategoryVolunteer, Description: "캠페인"},
		{ID: 5, Name: "클라이밍", Category: models.CategorySports, Description: "등반"},
		{ID: 6, Name: "사진동아리 렌즈", Category: models.CategoryArts, Description: "출사"},
	}
	out := Compute(clubs, OnSearch(models.DefaultQueryState(), "농구"))
	assert.Len(t, out, 1)
	assert.Equal(t, "농구동아리 DUNK", out[0].Name)
}

func TestScenarioCRecruiting(t *testing.T) {
	clubs := generatedClubs(7, models.CategoryHobby)
	for i := range clubs {
		clubs[i].IsRecruiting = i == 1 || i == 4 || i == 6
	}
	out := Compute(clubs, OnCategory(models.DefaultQueryState(), models.FilterRecruiting))
	require.Len(t, out, 3)
	for _, c := range out {
		assert.True(t, c.IsRecruiting)
	}
}

func TestScenarioDEstablishedYear(t *testing.T) {
	clubs := []models.Club{
		{ID: 1, Name: "a", EstablishedYear: 2013},
		{ID: 2, Name: "b", EstablishedYear: 2021},
		{ID: 3, Name: "c", EstablishedYear: 2016},
	}
	out := Compute(clubs, models.QueryState{Category: models.FilterAll, Sort: models.SortByEstablishedYear})
	years := []int{out[0].EstablishedYear, out[1].EstablishedYear, out[2].EstablishedYear}
	assert.Equal(t, []int{2021, 2016, 2013}, years)
}
