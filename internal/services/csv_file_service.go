package services

import (
	"context"
	"errors"
	"fmt"

	"csvflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CsvFileService is the record store for upload metadata. Partial updates go
// through column-keyed maps so that untouched fields keep their values.
type CsvFileService struct {
	db *gorm.DB
}

func NewCsvFileService(db *gorm.DB) (*CsvFileService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}

	return &CsvFileService{db: db}, nil
}

func (s *CsvFileService) List(ctx context.Context) ([]models.CsvFile, error) {
	if s == nil {
		return nil, errors.New("csv file service is nil")
	}
	if s.db == nil {
		return nil, errors.New("db is nil")
	}

	var files []models.CsvFile
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list csv files: %w", err)
	}

	return files, nil
}

func (s *CsvFileService) Get(ctx context.Context, id string) (models.CsvFile, error) {
	if s == nil {
		return models.CsvFile{}, errors.New("csv file service is nil")
	}
	if s.db == nil {
		return models.CsvFile{}, errors.New("db is nil")
	}
	if id == "" {
		return models.CsvFile{}, errors.New("id is empty")
	}

	var file models.CsvFile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CsvFile{}, fmt.Errorf("csv file %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.CsvFile{}, fmt.Errorf("get csv file: %w", err)
	}

	return file, nil
}

func (s *CsvFileService) Insert(ctx context.Context, filename string) (models.CsvFile, error) {
	if s == nil {
		return models.CsvFile{}, errors.New("csv file service is nil")
	}
	if s.db == nil {
		return models.CsvFile{}, errors.New("db is nil")
	}
	if filename == "" {
		return models.CsvFile{}, errors.New("filename is empty")
	}

	file := models.CsvFile{
		ID:       uuid.NewString(),
		Filename: filename,
		Status:   models.StatusProcessing,
	}
	if err := s.db.WithContext(ctx).Create(&file).Error; err != nil {
		return models.CsvFile{}, fmt.Errorf("insert csv file: %w", err)
	}

	return file, nil
}

func (s *CsvFileService) Update(ctx context.Context, id string, fields map[string]any) (models.CsvFile, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return models.CsvFile{}, err
	}

	if len(fields) == 0 {
		return file, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.CsvFile{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return models.CsvFile{}, fmt.Errorf("update csv file: %w", err)
	}

	return s.Get(ctx, id)
}

func (s *CsvFileService) Delete(ctx context.Context, id string) (models.CsvFile, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return models.CsvFile{}, err
	}

	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CsvFile{}).Error; err != nil {
		return models.CsvFile{}, fmt.Errorf("delete csv file: %w", err)
	}

	return file, nil
}
