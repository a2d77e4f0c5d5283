package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
	"github.com/homehunt/homehunt-api/pkg/helpers"
)

var ErrPropertyNotFound = errors.New("property not found")

const listingCacheTTL = 5 * time.Minute

func listingCacheKey(id string) string {
	return "property:detail:" + id
}

// PropertyService handles listing CRUD, filtering and image storage. Image
// handling stays a thin wrapper: multipart parts go straight to GCS and only
// the public URLs are persisted.
type PropertyService struct {
	Repo      repository.PropertyRepository
	GCS       *storage.Client
	GCSBucket string
	Redis     *redis.Client
	Logger    *logrus.Logger
}

func NewPropertyService(repo repository.PropertyRepository, gcs *storage.Client, gcsBucket string, rdb *redis.Client, logger *logrus.Logger) *PropertyService {
	return &PropertyService{Repo: repo, GCS: gcs, GCSBucket: gcsBucket, Redis: rdb, Logger: logger}
}

type ListingInput struct {
	Title        string
	Description  string
	Price        float64
	Location     string
	PropertyType string
}

// ImageUpload is one multipart image part destined for GCS.
type ImageUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

type ListingPage struct {
	Items      []entity.Property `json:"properties"`
	Total      int               `json:"total"`
	Page       int               `json:"current_page"`
	TotalPages int               `json:"total_pages"`
}

func (s *PropertyService) List(ctx context.Context, f repository.ListFilter) (*ListingPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 6
	}
	items, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	pages := total / f.Limit
	if total%f.Limit != 0 {
		pages++
	}
	return &ListingPage{Items: items, Total: total, Page: f.Page, TotalPages: pages}, nil
}

// Get reads a listing, cache-aside through Redis.
func (s *PropertyService) Get(ctx context.Context, id string) (*entity.Property, error) {
	if s.Redis != nil {
		var cached entity.Property
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, listingCacheKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, listingCacheKey(id), p, listingCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("property_id", id).Warn("cache listing failed")
		}
	}
	return p, nil
}

func (s *PropertyService) Create(ctx context.Context, agentID string, in ListingInput, images []ImageUpload) (*entity.Property, error) {
	urls, err := s.uploadImages(ctx, agentID, images)
	if err != nil {
		return nil, err
	}
	p := &entity.Property{
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Location:     in.Location,
		PropertyType: in.PropertyType,
		Images:       urls,
		CreatedBy:    agentID,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"property_id": p.ID, "agent_id": agentID}).Info("listing created")
	}
	return p, nil
}

// Update edits an owned listing. New images replace the stored set; no
// images keeps it.
func (s *PropertyService) Update(ctx context.Context, agentID, id string, in ListingInput, images []ImageUpload) (*entity.Property, error) {
	urls, err := s.uploadImages(ctx, agentID, images)
	if err != nil {
		return nil, err
	}
	p := &entity.Property{
		ID:           id,
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Location:     in.Location,
		PropertyType: in.PropertyType,
		Images:       urls, // nil when no new uploads
	}
	if err := s.Repo.UpdateOwned(ctx, p, agentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	return s.Repo.GetByID(ctx, id)
}

func (s *PropertyService) Delete(ctx context.Context, agentID, id string) error {
	if err := s.Repo.DeleteOwned(ctx, id, agentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *PropertyService) MyListings(ctx context.Context, agentID string) ([]entity.Property, error) {
	return s.Repo.ListByOwner(ctx, agentID)
}

func (s *PropertyService) CountByOwner(ctx context.Context, agentID string) (int, error) {
	return s.Repo.CountByOwner(ctx, agentID)
}

func (s *PropertyService) invalidate(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, listingCacheKey(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("property_id", id).Warn("invalidate listing cache failed")
	}
}

func (s *PropertyService) uploadImages(ctx context.Context, agentID string, images []ImageUpload) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, errors.New("gcs not configured")
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		ext := strings.ToLower(filepath.Ext(img.Filename))
		objectPath := filepath.ToSlash(filepath.Join("listings", agentID, uuid.NewString()+ext))
		url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, img.ContentType, img.Reader)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
