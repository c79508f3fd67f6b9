package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dcu-portal-api/internal/middleware"
	"github.com/noah-isme/dcu-portal-api/internal/models"
	"github.com/noah-isme/dcu-portal-api/internal/service"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
)

type fakeClubSrv struct {
	listReq    service.ListClubsRequest
	listRes    *service.ClubListResult
	listErr    error
	club       *models.Club
	getErr     error
	popular    []models.ClubSummary
	popularArg int
	exportReq  service.ExportClubsRequest
	exportRes  *service.ExportResult
	exportErr  error
}

func (f *fakeClubSrv) List(_ context.Context, req service.ListClubsRequest) (*service.ClubListResult, error) {
	f.listReq = req
	return f.listRes, f.listErr
}

func (f *fakeClubSrv) Get(context.Context, int64) (*models.Club, error) {
	return f.club, f.getErr
}

func (f *fakeClubSrv) Popular(_ context.Context, limit int) ([]models.ClubSummary, error) {
	f.popularArg = limit
	return f.popular, nil
}

func (f *fakeClubSrv) Stats(context.Context) (models.DirectoryStats, error) {
	return models.DirectoryStats{TotalClubs: 5, RecruitingClubs: 4}, nil
}

func (f *fakeClubSrv) Join(_ context.Context, id int64) (*models.JoinResult, error) {
	return &models.JoinResult{ClubID: id, Status: models.JoinStatusApplied}, nil
}

func (f *fakeClubSrv) Export(_ context.Context, req service.ExportClubsRequest) (*service.ExportResult, error) {
	f.exportReq = req
	return f.exportRes, f.exportErr
}

type apiEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestClubHandlerListSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeClubSrv{listRes: &service.ClubListResult{
		Clubs:      []models.Club{{ID: 1, Name: "농구동아리 DUNK", Category: models.CategorySports}},
		Pagination: models.Pagination{Page: 1, PageSize: 12, TotalCount: 1, TotalPages: 1},
		Query:      models.QueryState{Search: "농구", Category: models.FilterAll, Sort: models.SortByName, Page: 1},
		Stats:      models.DirectoryStats{TotalClubs: 12},
	}}
	handler := NewClubHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/clubs?search=%EB%86%8D%EA%B5%AC&category=all&page=1", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "농구", srv.listReq.Search)
	assert.Equal(t, 1, srv.listReq.Page)

	env := decodeEnvelope(t, rec)
	var clubs []models.Club
	require.NoError(t, json.Unmarshal(env.Data, &clubs))
	require.Len(t, clubs, 1)
	assert.Equal(t, int64(1), clubs[0].ID)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalPages)
	assert.Equal(t, false, env.Meta["empty"])
	assert.Contains(t, env.Meta, "query")
}

func TestClubHandlerListIncludesProcessingTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeClubSrv{listRes: &service.ClubListResult{Empty: true, Pagination: models.Pagination{Page: 1, TotalPages: 1}}}

	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/clubs", NewClubHandler(srv).List)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clubs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Meta, "processing_time_ms")
	assert.Equal(t, true, env.Meta["empty"])
}

func TestClubHandlerListRejectsMalformedQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewClubHandler(&fakeClubSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/clubs?page=abc", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClubHandlerListPropagatesUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewClubHandler(&fakeClubSrv{listErr: appErrors.ErrDirectoryUnavailable})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/clubs", nil)

	handler.List(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClubHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/clubs/abc", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		NewClubHandler(&fakeClubSrv{}).Get(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/clubs/99", nil)
		c.Params = gin.Params{{Key: "id", Value: "99"}}

		NewClubHandler(&fakeClubSrv{getErr: appErrors.Clone(appErrors.ErrNotFound, "club not found")}).Get(c)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/clubs/9", nil)
		c.Params = gin.Params{{Key: "id", Value: "9"}}

		NewClubHandler(&fakeClubSrv{club: &models.Club{ID: 9, Name: "연극동아리 무대"}}).Get(c)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "연극동아리 무대")
	})
}

func TestClubHandlerPopularLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeClubSrv{}
	handler := NewClubHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/clubs/popular?limit=0", nil)
	handler.Popular(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/clubs/popular?limit=3", nil)
	handler.Popular(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, srv.popularArg)
}

func TestClubHandlerJoin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/clubs/11/join", nil)
	c.Params = gin.Params{{Key: "id", Value: "11"}}

	NewClubHandler(&fakeClubSrv{}).Join(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var result models.JoinResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Equal(t, int64(11), result.ClubID)
	assert.Equal(t, models.JoinStatusApplied, result.Status)
}

func TestClubHandlerExportWritesAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeClubSrv{exportRes: &service.ExportResult{
		Filename:    "clubs-20240301-090000.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("ID,동아리명\n1,농구동아리 DUNK\n"),
		Count:       1,
	}}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/clubs/export?format=csv&category=sports", nil)

	NewClubHandler(srv).Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.exportReq.Format)
	assert.Equal(t, "sports", srv.exportReq.Category)
	assert.Equal(t, `attachment; filename="clubs-20240301-090000.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "농구동아리 DUNK")
}

func TestClubHandlerExportUnsupportedFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeClubSrv{exportErr: appErrors.Clone(appErrors.ErrUnsupportedFormat, "format xlsx is not supported")}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/clubs/export?format=xlsx", nil)

	NewClubHandler(srv).Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrUnsupportedFormat.Code, env.Error.Code)
}
