package directory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

func sampleClubs() []models.Club {
	return []models.Club{
		{
			ID: 1, Name: "농구동아리 DUNK", Category: models.CategorySports,
			Description: "농구를 사랑하는 사람들이 모여 실력을 향상시키고 친목을 도모하는 동아리입니다.",
			Activities:  []string{"농구 경기", "대회 참가", "스킬 훈련"},
			MemberCount: 38, EstablishedYear: 2013, IsRecruiting: true,
		},
		{
			ID: 9, Name: "연극동아리 무대", Category: models.CategoryArts,
			Description: "연극 공연을 통해 표현력과 창의성을 키우는 연극 동아리입니다.",
			Activities:  []string{"연극 공연", "연기 훈련", "무대 제작"},
			MemberCount: 42, EstablishedYear: 2016, IsRecruiting: true,
		},
		{
			ID: 10, Name: "요리동아리 맛나", Category: models.CategoryHobby,
			Description: "다양한 요리를 배우고 맛있는 음식을 나누는 요리 동아리입니다.",
			Activities:  []string{"요리 실습", "레시피 개발", "맛집 탐방"},
			MemberCount: 29, EstablishedYear: 2019, IsRecruiting: false,
		},
		{
			ID: 11, Name: "환경지킴이", Category: models.CategoryVolunteer,
			Description: "환경보호 캠페인과 친환경 활동을 실천하는 환경 동아리입니다.",
			Activities:  []string{"환경 캠페인", "정화 활동", "에코 프로젝트"},
			MemberCount: 56, EstablishedYear: 2018, IsRecruiting: true,
		},
		{
			ID: 12, Name: "클라이밍동아리", Category: models.CategorySports,
			Description: "실내 클라이밍과 자연암벽 등반을 즐기는 클라이밍 동아리입니다.",
			Activities:  []string{"실내 클라이밍", "야외 등반", "기술 훈련"},
			MemberCount: 31, EstablishedYear: 2021, IsRecruiting: true,
		},
		{
			ID: 13, Name: "코딩동아리 Byte", Category: models.CategoryAcademic,
			Description: "알고리즘 스터디와 해커톤에 참가하는 개발 동아리입니다.",
			Activities:  []string{"알고리즘 스터디", "해커톤", "프로젝트"},
			MemberCount: 42, EstablishedYear: 2015, IsRecruiting: false,
		},
	}
}

// generatedClubs builds n clubs with distinct ids for paging tests.
func generatedClubs(n int, category models.Category) []models.Club {
	clubs := make([]models.Club, 0, n)
	for i := 0; i < n; i++ {
		clubs = append(clubs, models.Club{
			ID:              int64(i + 1),
			Name:            fmt.Sprintf("club %02d", i+1),
			Category:        category,
			Description:     "generated",
			MemberCount:     10 + i%7,
			EstablishedYear: 2000 + i%11,
			IsRecruiting:    i%3 == 0,
		})
	}
	return clubs
}

func mustStore(t *testing.T, clubs []models.Club) *Store {
	t.Helper()
	store, err := NewStore(clubs)
	require.NoError(t, err)
	return store
}

func ids(clubs []models.Club) []int64 {
	out := make([]int64, len(clubs))
	for i, c := range clubs {
		out[i] = c.ID
	}
	return out
}

func allQueries() []models.QueryState {
	filters := []models.CategoryFilter{models.FilterAll, models.FilterRecruiting}
	for _, c := range models.Categories() {
		filters = append(filters, models.FilterFor(c))
	}
	sorts := []models.SortKey{models.SortByName, models.SortByMemberCount, models.SortByCategory, models.SortByEstablishedYear, "bogus"}
	searches := []string{"", "동아리", "DUNK", "훈련", "없는검색어"}

	var out []models.QueryState
	for _, f := range filters {
		for _, s := range sorts {
			for _, q := range searches {
				out = append(out, models.QueryState{Search: q, Category: f, Sort: s, Page: 1})
			}
		}
	}
	return out
}
