package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homehunt/homehunt-api/internal/application"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
	"github.com/homehunt/homehunt-api/internal/interface/middleware"
	"github.com/homehunt/homehunt-api/pkg/response"
	"github.com/homehunt/homehunt-api/pkg/validation"
)

type PropertyHandler struct {
	Svc    *application.PropertyService
	Logger *logrus.Logger
}

func NewPropertyHandler(svc *application.PropertyService, logger *logrus.Logger) *PropertyHandler {
	return &PropertyHandler{Svc: svc, Logger: logger}
}

type listQuery struct {
	Search       string   `form:"search"`
	Location     string   `form:"location"`
	PropertyType string   `form:"propertyType"`
	MinPrice     *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice     *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	Sort         string   `form:"sort" binding:"omitempty,listingsort"`
	Page         int      `form:"page" binding:"omitempty,gte=1"`
	Limit        int      `form:"limit" binding:"omitempty,gte=1,lte=50"`
}

// Agents submit listings as multipart forms so images ride along.
type listingForm struct {
	Title        string  `form:"title" binding:"required"`
	Description  string  `form:"description"`
	Price        float64 `form:"price" binding:"required,gte=0"`
	Location     string  `form:"location" binding:"required"`
	PropertyType string  `form:"propertyType" binding:"required"`
}

// List GET /api/properties (public)
func (h *PropertyHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	page, err := h.Svc.List(c.Request.Context(), repository.ListFilter{
		Search:       q.Search,
		Location:     q.Location,
		PropertyType: q.PropertyType,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		Sort:         q.Sort,
		Page:         q.Page,
		Limit:        q.Limit,
	})
	if err != nil {
		h.Logger.WithError(err).Error("list properties failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch properties", nil)
		return
	}
	response.Success(c, http.StatusOK, page, "properties", nil)
}

// Get GET /api/properties/:id (public)
func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrPropertyNotFound) {
			response.Error[any](c, http.StatusNotFound, "property not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get property failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch property", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "property", nil)
}

// Create POST /api/properties (agent only, multipart)
func (h *PropertyHandler) Create(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	var form listingForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	images, closers, err := imageUploads(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image upload", nil)
		return
	}
	defer closeAll(closers)

	p, err := h.Svc.Create(c.Request.Context(), u.ID, listingInput(form), images)
	if err != nil {
		h.Logger.WithError(err).Error("create property failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create property", nil)
		return
	}
	response.Success(c, http.StatusCreated, p, "property created", nil)
}

// Update PUT /api/properties/:id (agent only, owner scoped)
func (h *PropertyHandler) Update(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	var form listingForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	images, closers, err := imageUploads(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image upload", nil)
		return
	}
	defer closeAll(closers)

	p, err := h.Svc.Update(c.Request.Context(), u.ID, c.Param("id"), listingInput(form), images)
	if err != nil {
		if errors.Is(err, application.ErrPropertyNotFound) {
			response.Error[any](c, http.StatusNotFound, "property not found", nil)
			return
		}
		h.Logger.WithError(err).Error("update property failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update property", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "property updated", nil)
}

// Delete DELETE /api/properties/:id (agent only, owner scoped)
func (h *PropertyHandler) Delete(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), u.ID, c.Param("id")); err != nil {
		if errors.Is(err, application.ErrPropertyNotFound) {
			response.Error[any](c, http.StatusNotFound, "property not found", nil)
			return
		}
		h.Logger.WithError(err).Error("delete property failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete property", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "property deleted", nil)
}

// My GET /api/agents/listings (agent only)
func (h *PropertyHandler) My(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	items, err := h.Svc.MyListings(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).Error("list own properties failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch properties", nil)
		return
	}
	response.Success(c, http.StatusOK, items, "my properties", nil)
}

func listingInput(f listingForm) application.ListingInput {
	return application.ListingInput{
		Title:        f.Title,
		Description:  f.Description,
		Price:        f.Price,
		Location:     f.Location,
		PropertyType: f.PropertyType,
	}
}

// imageUploads opens every "images" part of the multipart form. Callers must
// close the returned files after the service has consumed them.
func imageUploads(c *gin.Context) ([]application.ImageUpload, []multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all is fine: JSON-less form posts without images.
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	files := form.File["images"]
	uploads := make([]application.ImageUpload, 0, len(files))
	closers := make([]multipart.File, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, f)
		uploads = append(uploads, application.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}
	return uploads, closers, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
