package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"csvflow/internal/models"
)

// PipelineService sequences the upload-transform-store lifecycle of a CSV
// file and serves the derived operations (preview, signed-URL regeneration).
// Each call runs to completion inside one request; there are no background
// retries, so a record never stays PROCESSING once Create returns.
type PipelineService struct {
	records     FileRecordStore
	storage     ObjectStorage
	transformer CsvTransformer
	logService  LogWriter
	scratchDir  string
	client      *http.Client
}

func NewPipelineService(records FileRecordStore, storage ObjectStorage, transformer CsvTransformer, logService LogWriter, scratchDir string, client *http.Client) (*PipelineService, error) {
	if records == nil {
		return nil, errors.New("record store is nil")
	}
	if storage == nil {
		return nil, errors.New("object storage is nil")
	}
	if transformer == nil {
		return nil, errors.New("transformer is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}
	if scratchDir == "" {
		return nil, errors.New("scratch dir is empty")
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &PipelineService{
		records:     records,
		storage:     storage,
		transformer: transformer,
		logService:  logService,
		scratchDir:  scratchDir,
		client:      client,
	}, nil
}

func (s *PipelineService) List(ctx context.Context) ([]models.CsvFile, error) {
	if s == nil {
		return nil, errors.New("pipeline service is nil")
	}
	return s.records.List(ctx)
}

func (s *PipelineService) Get(ctx context.Context, id string) (models.CsvFile, error) {
	if s == nil {
		return models.CsvFile{}, errors.New("pipeline service is nil")
	}
	return s.records.Get(ctx, id)
}

// Create runs the full pipeline for an already-saved upload. The record is
// inserted before any external call so the pipeline always has a handle to
// mark ERROR on; both the uploaded original and the transformed scratch file
// are removed on every exit path.
func (s *PipelineService) Create(ctx context.Context, uploadPath string, originalName string) (models.CsvFile, error) {
	if s == nil {
		return models.CsvFile{}, errors.New("pipeline service is nil")
	}
	if uploadPath == "" {
		return models.CsvFile{}, errors.New("upload path is empty")
	}
	if originalName == "" {
		return models.CsvFile{}, errors.New("original name is empty")
	}

	record, err := s.records.Insert(ctx, originalName)
	if err != nil {
		return models.CsvFile{}, fmt.Errorf("insert csv file record: %w", err)
	}

	scratchPath := filepath.Join(s.scratchDir, fmt.Sprintf("processed_%s.csv", record.ID))
	defer func() {
		removeIfExists(uploadPath)
		removeIfExists(scratchPath)
	}()

	updated, err := s.process(ctx, record, uploadPath, scratchPath)
	if err != nil {
		if _, markErr := s.records.Update(ctx, record.ID, map[string]any{
			"status": models.StatusError,
			"error":  err.Error(),
		}); markErr != nil {
			failMsg := fmt.Sprintf("id=%s mark error: %v", record.ID, markErr)
			_ = s.logService.CreateLog(ctx, LogActionFileUpload, LogOutcomeFail, &failMsg)
		}

		failMsg := fmt.Sprintf("id=%s filename=%s: %v", record.ID, record.Filename, err)
		_ = s.logService.CreateLog(ctx, LogActionFileUpload, LogOutcomeFail, &failMsg)
		return models.CsvFile{}, fmt.Errorf("process csv file: %w", err)
	}

	okMsg := fmt.Sprintf("id=%s filename=%s", record.ID, record.Filename)
	_ = s.logService.CreateLog(ctx, LogActionFileUpload, LogOutcomeSuccess, &okMsg)
	return updated, nil
}

func (s *PipelineService) process(ctx context.Context, record models.CsvFile, uploadPath string, scratchPath string) (models.CsvFile, error) {
	upload, err := os.Open(uploadPath)
	if err != nil {
		return models.CsvFile{}, fmt.Errorf("open uploaded file: %w", err)
	}

	transformed, err := s.transformer.Transform(ctx, record.Filename, upload)
	closeErr := upload.Close()
	if err != nil {
		msg := fmt.Sprintf("id=%s: %v", record.ID, err)
		_ = s.logService.CreateLog(ctx, LogActionTransformCall, LogOutcomeFail, &msg)
		return models.CsvFile{}, fmt.Errorf("transform csv: %w", err)
	}
	if closeErr != nil {
		return models.CsvFile{}, fmt.Errorf("close uploaded file: %w", closeErr)
	}

	msg := fmt.Sprintf("id=%s bytes=%d", record.ID, len(transformed))
	_ = s.logService.CreateLog(ctx, LogActionTransformCall, LogOutcomeSuccess, &msg)

	if err := os.WriteFile(scratchPath, transformed, 0644); err != nil {
		return models.CsvFile{}, fmt.Errorf("write scratch file: %w", err)
	}

	logicalName := "processed_" + record.Filename
	signedURL, err := s.storage.Upload(ctx, scratchPath, logicalName)
	if err != nil {
		msg := fmt.Sprintf("id=%s: %v", record.ID, err)
		_ = s.logService.CreateLog(ctx, LogActionS3Upload, LogOutcomeFail, &msg)
		return models.CsvFile{}, fmt.Errorf("upload to object storage: %w", err)
	}

	msg = fmt.Sprintf("id=%s key=%s", record.ID, objectKeyPrefix+logicalName)
	_ = s.logService.CreateLog(ctx, LogActionS3Upload, LogOutcomeSuccess, &msg)

	updated, err := s.records.Update(ctx, record.ID, map[string]any{
		"status": models.StatusCompleted,
		"s3_url": signedURL,
	})
	if err != nil {
		return models.CsvFile{}, fmt.Errorf("mark record completed: %w", err)
	}

	return updated, nil
}

func (s *PipelineService) Update(ctx context.Context, id string, filename *string, status *string) (models.CsvFile, error) {
	if s == nil {
		return models.CsvFile{}, errors.New("pipeline service is nil")
	}
	if id == "" {
		return models.CsvFile{}, errors.New("id is empty")
	}

	fields := map[string]any{}
	if filename != nil {
		fields["filename"] = *filename
	}
	if status != nil {
		if !models.ValidStatus(*status) {
			return models.CsvFile{}, fmt.Errorf("unknown status %q: %w", *status, models.ErrInvalidState)
		}
		fields["status"] = *status
	}

	return s.records.Update(ctx, id, fields)
}

// Remove deletes the record and best-effort deletes the stored object. The
// object key is re-derived from the current filename, mirroring the upload
// key; remote failures are logged and never block record deletion.
func (s *PipelineService) Remove(ctx context.Context, id string) (models.CsvFile, error) {
	if s == nil {
		return models.CsvFile{}, errors.New("pipeline service is nil")
	}
	if id == "" {
		return models.CsvFile{}, errors.New("id is empty")
	}

	record, err := s.records.Get(ctx, id)
	if err != nil {
		return models.CsvFile{}, err
	}

	if record.S3URL != nil && *record.S3URL != "" {
		key := objectKeyPrefix + "processed_" + record.Filename
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			msg := fmt.Sprintf("id=%s key=%s: %v", record.ID, key, err)
			_ = s.logService.CreateLog(ctx, LogActionS3Delete, LogOutcomeFail, &msg)
		} else {
			msg := fmt.Sprintf("id=%s key=%s", record.ID, key)
			_ = s.logService.CreateLog(ctx, LogActionS3Delete, LogOutcomeSuccess, &msg)
		}
	}

	return s.records.Delete(ctx, id)
}

func (s *PipelineService) Preview(ctx context.Context, id string) (Preview, error) {
	if s == nil {
		return Preview{}, errors.New("pipeline service is nil")
	}
	if id == "" {
		return Preview{}, errors.New("id is empty")
	}

	record, err := s.records.Get(ctx, id)
	if err != nil {
		return Preview{}, err
	}

	if record.Status != models.StatusCompleted {
		return Preview{}, fmt.Errorf("file not processed yet: %w", models.ErrInvalidState)
	}
	if record.S3URL == nil || *record.S3URL == "" {
		return Preview{}, fmt.Errorf("file has no url available: %w", models.ErrInvalidState)
	}

	data, err := s.download(ctx, *record.S3URL)
	if err != nil {
		msg := fmt.Sprintf("id=%s: %v", record.ID, err)
		_ = s.logService.CreateLog(ctx, LogActionPreview, LogOutcomeFail, &msg)
		return Preview{}, fmt.Errorf("download stored object: %w", err)
	}

	preview, err := buildPreview(data)
	if err != nil {
		msg := fmt.Sprintf("id=%s: %v", record.ID, err)
		_ = s.logService.CreateLog(ctx, LogActionPreview, LogOutcomeFail, &msg)
		return Preview{}, err
	}

	msg := fmt.Sprintf("id=%s rows=%d", record.ID, preview.TotalRows)
	_ = s.logService.CreateLog(ctx, LogActionPreview, LogOutcomeSuccess, &msg)
	return preview, nil
}

func (s *PipelineService) RegenerateSignedURL(ctx context.Context, id string) (string, error) {
	if s == nil {
		return "", errors.New("pipeline service is nil")
	}
	if id == "" {
		return "", errors.New("id is empty")
	}

	record, err := s.records.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if record.S3URL == nil || *record.S3URL == "" {
		return "", fmt.Errorf("file has no s3 url: %w", models.ErrInvalidState)
	}

	key := "processed_" + record.Filename
	signedURL, err := s.storage.RegenerateSignedURL(ctx, key)
	if err != nil {
		msg := fmt.Sprintf("id=%s key=%s: %v", record.ID, key, err)
		_ = s.logService.CreateLog(ctx, LogActionS3Presign, LogOutcomeFail, &msg)
		return "", fmt.Errorf("regenerate signed url: %w", err)
	}

	if _, err := s.records.Update(ctx, id, map[string]any{"s3_url": signedURL}); err != nil {
		return "", fmt.Errorf("store regenerated url: %w", err)
	}

	msg := fmt.Sprintf("id=%s key=%s", record.ID, key)
	_ = s.logService.CreateLog(ctx, LogActionS3Presign, LogOutcomeSuccess, &msg)
	return signedURL, nil
}

func (s *PipelineService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	body, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close response: %w", closeErr)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("download status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

func removeIfExists(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = os.Remove(path)
}
