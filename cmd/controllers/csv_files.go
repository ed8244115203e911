package controllers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"csvflow/internal/models"
	"csvflow/internal/services"

	"github.com/gin-gonic/gin"
)

type FilePipeline interface {
	List(ctx context.Context) ([]models.CsvFile, error)
	Get(ctx context.Context, id string) (models.CsvFile, error)
	Create(ctx context.Context, uploadPath string, originalName string) (models.CsvFile, error)
	Update(ctx context.Context, id string, filename *string, status *string) (models.CsvFile, error)
	Remove(ctx context.Context, id string) (models.CsvFile, error)
	Preview(ctx context.Context, id string) (services.Preview, error)
	RegenerateSignedURL(ctx context.Context, id string) (string, error)
}

type CsvFilesController struct {
	service   FilePipeline
	uploadDir string
}

type UpdateCsvFileRequest struct {
	Filename *string `json:"filename"`
	Status   *string `json:"status"`
}

type RegenerateURLResponse struct {
	S3URL string `json:"s3Url"`
}

func NewCsvFilesController(service FilePipeline, uploadDir string) (*CsvFilesController, error) {
	if service == nil {
		return nil, errors.New("file pipeline is nil")
	}
	if uploadDir == "" {
		return nil, errors.New("upload dir is empty")
	}

	return &CsvFilesController{service: service, uploadDir: uploadDir}, nil
}

func (c *CsvFilesController) RegisterRoutes(router *gin.Engine) error {
	if c == nil {
		return errors.New("csv files controller is nil")
	}
	if router == nil {
		return errors.New("router is nil")
	}

	router.GET("/csv-files", c.list)
	router.GET("/csv-files/:id", c.get)
	router.POST("/csv-files/upload", c.upload)
	router.GET("/csv-files/:id/preview", c.preview)
	router.POST("/csv-files/:id/regenerate-url", c.regenerateURL)
	router.PUT("/csv-files/:id", c.update)
	router.DELETE("/csv-files/:id", c.remove)
	return nil
}

func (c *CsvFilesController) list(ctx *gin.Context) {
	files, err := c.service.List(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load csv files"})
		return
	}

	ctx.JSON(http.StatusOK, files)
}

func (c *CsvFilesController) get(ctx *gin.Context) {
	file, err := c.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, "failed to load csv file")
		return
	}

	ctx.JSON(http.StatusOK, file)
}

func (c *CsvFilesController) upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart field file is required"})
		return
	}

	if !strings.HasSuffix(fileHeader.Filename, ".csv") {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "only csv files are allowed"})
		return
	}

	uploadPath := filepath.Join(c.uploadDir, uniqueUploadName(fileHeader.Filename))
	if err := ctx.SaveUploadedFile(fileHeader, uploadPath); err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to save uploaded file"})
		return
	}

	file, err := c.service.Create(ctx.Request.Context(), uploadPath, fileHeader.Filename)
	if err != nil {
		respondError(ctx, err, "failed to process csv file")
		return
	}

	ctx.JSON(http.StatusCreated, file)
}

func (c *CsvFilesController) preview(ctx *gin.Context) {
	preview, err := c.service.Preview(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, "failed to build preview")
		return
	}

	ctx.JSON(http.StatusOK, preview)
}

func (c *CsvFilesController) regenerateURL(ctx *gin.Context) {
	signedURL, err := c.service.RegenerateSignedURL(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, "failed to regenerate signed url")
		return
	}

	ctx.JSON(http.StatusOK, RegenerateURLResponse{S3URL: signedURL})
}

func (c *CsvFilesController) update(ctx *gin.Context) {
	var req UpdateCsvFileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	file, err := c.service.Update(ctx.Request.Context(), ctx.Param("id"), req.Filename, req.Status)
	if err != nil {
		respondError(ctx, err, "failed to update csv file")
		return
	}

	ctx.JSON(http.StatusOK, file)
}

func (c *CsvFilesController) remove(ctx *gin.Context) {
	file, err := c.service.Remove(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, "failed to delete csv file")
		return
	}

	ctx.JSON(http.StatusOK, file)
}

func respondError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "file not found"})
	case errors.Is(err, models.ErrInvalidState):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

// uniqueUploadName keeps the extension but replaces the client-supplied name,
// so concurrent uploads of the same file never collide on disk.
func uniqueUploadName(original string) string {
	return fmt.Sprintf("%d-%d%s", time.Now().UnixNano(), rand.Intn(1_000_000_000), filepath.Ext(original))
}
