package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dcu-portal-api/internal/directory"
	"github.com/noah-isme/dcu-portal-api/internal/models"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
	"github.com/noah-isme/dcu-portal-api/pkg/export"
	"github.com/noah-isme/dcu-portal-api/pkg/jobs"
)

// JoinJobType is the job type enqueued for every join request.
const JoinJobType = "club.join"

const (
	joinAppliedMessage    = "%s에 가입 신청이 완료되었습니다!\n담당자가 연락드릴 예정입니다."
	joinWaitlistedMessage = "%s은 현재 모집이 마감되었습니다.\n다음 모집 시기에 다시 신청해주세요."
)

type clubSource interface {
	LoadClubs(ctx context.Context) ([]models.Club, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ListClubsRequest is a stateless directory query.
type ListClubsRequest struct {
	Search   string `form:"search" validate:"max=100"`
	Category string `form:"category"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// ExportClubsRequest selects the clubs to export and the output format.
type ExportClubsRequest struct {
	ListClubsRequest
	Format string `form:"format"`
}

// ClubListResult is one page of the directory with the state that produced it.
type ClubListResult struct {
	Clubs      []models.Club
	Pagination models.Pagination
	Query      models.QueryState
	Stats      models.DirectoryStats
	Empty      bool
}

// ExportResult is a rendered export ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Count       int
}

// ClubServiceConfig tunes the club service.
type ClubServiceConfig struct {
	PageSize     int
	PopularLimit int
}

// ClubService serves the club directory from an in-memory store loaded once from a club source.
type ClubService struct {
	source    clubSource
	queue     jobEnqueuer
	exporters map[string]datasetRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ClubServiceConfig
	now       func() time.Time

	mu      sync.RWMutex
	store   *directory.Store
	loadErr error
}

// NewClubService constructs a ClubService. The directory stays unavailable until Load succeeds.
func NewClubService(source clubSource, queue jobEnqueuer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ClubServiceConfig) *ClubService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = directory.DefaultPageSize
	}
	if cfg.PopularLimit <= 0 {
		cfg.PopularLimit = 4
	}
	return &ClubService{
		source:    source,
		queue:     queue,
		exporters: make(map[string]datasetRenderer),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		loadErr:   fmt.Errorf("club directory not loaded"),
	}
}

// RegisterExporter makes an export format available under its file extension.
func (s *ClubService) RegisterExporter(r datasetRenderer) {
	s.exporters[r.Extension()] = r
}

// Load replaces the store with the current contents of the club source. On failure the previous
// state is discarded and every directory call reports DIRECTORY_UNAVAILABLE.
func (s *ClubService) Load(ctx context.Context) error {
	clubs, err := s.source.LoadClubs(ctx)
	if err == nil {
		var store *directory.Store
		store, err = directory.NewStore(clubs)
		if err == nil {
			s.mu.Lock()
			s.store, s.loadErr = store, nil
			s.mu.Unlock()
			stats := store.Stats()
			s.logger.Info("club directory loaded",
				zap.Int("clubs", stats.TotalClubs),
				zap.Int("recruiting", stats.RecruitingClubs),
				zap.Int("members", stats.TotalMembers),
			)
			return nil
		}
	}

	s.mu.Lock()
	s.store, s.loadErr = nil, err
	s.mu.Unlock()
	s.logger.Error("club directory load failed", zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrDirectoryUnavailable.Code, appErrors.ErrDirectoryUnavailable.Status, appErrors.ErrDirectoryUnavailable.Message)
}

// Store returns the loaded store or DIRECTORY_UNAVAILABLE.
func (s *ClubService) Store() (*directory.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, appErrors.Wrap(s.loadErr, appErrors.ErrDirectoryUnavailable.Code, appErrors.ErrDirectoryUnavailable.Status, appErrors.ErrDirectoryUnavailable.Message)
	}
	return s.store, nil
}

// Ready reports whether the directory can serve requests.
func (s *ClubService) Ready(context.Context) error {
	_, err := s.Store()
	return err
}

// PageSize returns the number of clubs per page.
func (s *ClubService) PageSize() int { return s.cfg.PageSize }

// ParseQuery validates request parameters into a query state. An unknown category is rejected;
// an unknown sort key is kept and orders nothing.
func (s *ClubService) ParseQuery(req ListClubsRequest) (models.QueryState, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.QueryState{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid directory query")
	}

	filter, ok := models.ParseCategoryFilter(req.Category)
	if !ok {
		return models.QueryState{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}

	sortKey, ok := models.ParseSortKey(req.Sort)
	if !ok {
		s.logger.Warn("unknown sort key, keeping input order", zap.String("sort", req.Sort))
		sortKey = models.SortKey(req.Sort)
	}

	return models.QueryState{
		Search:   directory.NormalizeSearch(req.Search),
		Category: filter,
		Sort:     sortKey,
		Page:     req.Page,
	}, nil
}

// List runs a full recompute for one request. Out-of-range pages are clamped.
func (s *ClubService) List(ctx context.Context, req ListClubsRequest) (*ClubListResult, error) {
	store, err := s.Store()
	if err != nil {
		return nil, err
	}
	q, err := s.ParseQuery(req)
	if err != nil {
		return nil, err
	}

	pageSize := s.cfg.PageSize
	if req.Limit > 0 {
		pageSize = req.Limit
	}

	start := time.Now()
	q, page := directory.Recompute(store, q, pageSize)
	s.metrics.ObserveRecompute("list", time.Since(start))

	return &ClubListResult{
		Clubs:      page.Items,
		Pagination: page.Pagination(),
		Query:      q,
		Stats:      store.Stats(),
		Empty:      page.Empty(),
	}, nil
}

// Get returns a single club.
func (s *ClubService) Get(ctx context.Context, id int64) (*models.Club, error) {
	store, err := s.Store()
	if err != nil {
		return nil, err
	}
	club, ok := store.Find(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "club not found")
	}
	return &club, nil
}

// Popular returns the largest clubs for the landing page.
func (s *ClubService) Popular(ctx context.Context, limit int) ([]models.ClubSummary, error) {
	store, err := s.Store()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.PopularLimit
	}
	top := directory.Top(store, models.SortByMemberCount, limit)
	out := make([]models.ClubSummary, len(top))
	for i, c := range top {
		out[i] = models.ClubSummary{ID: c.ID, Name: c.Name, Icon: c.Icon, MemberCount: c.MemberCount}
	}
	return out, nil
}

// Stats returns directory-wide counts.
func (s *ClubService) Stats(ctx context.Context) (models.DirectoryStats, error) {
	store, err := s.Store()
	if err != nil {
		return models.DirectoryStats{}, err
	}
	return store.Stats(), nil
}

// Join records interest in a club. Nothing is persisted: the result carries the notification
// shown to the student and a club.join job is queued for the club's contact.
func (s *ClubService) Join(ctx context.Context, id int64) (*models.JoinResult, error) {
	club, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &models.JoinResult{
		ClubID:      club.ID,
		ClubName:    club.Name,
		RequestedAt: s.now().UTC(),
	}
	if club.IsRecruiting {
		result.Status = models.JoinStatusApplied
		result.Message = fmt.Sprintf(joinAppliedMessage, club.Name)
	} else {
		result.Status = models.JoinStatusWaitlisted
		result.Message = fmt.Sprintf(joinWaitlistedMessage, club.Name)
	}
	s.metrics.RecordJoin(result.Status)

	if s.queue != nil {
		job := jobs.Job{ID: uuid.NewString(), Type: JoinJobType, Payload: *result}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("join notification not queued", zap.Int64("club_id", club.ID), zap.Error(err))
		}
	}
	return result, nil
}

// NotifyJoin is the club.join job handler. Delivery is a structured log line for the club contact.
func (s *ClubService) NotifyJoin(ctx context.Context, job jobs.Job) error {
	result, ok := job.Payload.(models.JoinResult)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}
	club, err := s.Get(ctx, result.ClubID)
	if err != nil {
		return err
	}
	s.logger.Info("club join notification",
		zap.String("job_id", job.ID),
		zap.Int64("club_id", club.ID),
		zap.String("club", club.Name),
		zap.String("contact", club.Contact),
		zap.String("status", string(result.Status)),
		zap.Int("attempt", job.Attempt),
	)
	return nil
}

// Export renders the complete filtered and sorted list, without paging.
func (s *ClubService) Export(ctx context.Context, req ExportClubsRequest) (*ExportResult, error) {
	store, err := s.Store()
	if err != nil {
		return nil, err
	}
	if err := s.validator.Var(req.Format, "omitempty,oneof=csv pdf"); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, appErrors.ErrUnsupportedFormat.Message)
	}
	format := req.Format
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("export format %q is not enabled", format))
	}

	q, err := s.ParseQuery(req.ListClubsRequest)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	clubs := directory.Filtered(store, q)
	s.metrics.ObserveRecompute("export", time.Since(start))

	payload, err := renderer.Render(clubDataset(clubs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("clubs-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
		Count:       len(clubs),
	}, nil
}

func clubDataset(clubs []models.Club) export.Dataset {
	data := export.Dataset{
		Title:   "동아리 목록",
		Headers: []string{"ID", "동아리명", "분류", "회원 수", "설립연도", "모집 여부", "정기 모임", "활동 장소", "연락처"},
		Rows:    make([][]string, 0, len(clubs)),
	}
	for _, c := range clubs {
		recruiting := "모집 마감"
		if c.IsRecruiting {
			recruiting = "모집 중"
		}
		data.Rows = append(data.Rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.Category.Label(),
			strconv.Itoa(c.MemberCount),
			strconv.Itoa(c.EstablishedYear),
			recruiting,
			c.Schedule,
			c.Location,
			c.Contact,
		})
	}
	return data
}
