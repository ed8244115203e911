package services

import (
	"context"
	"io"

	"csvflow/internal/models"
)

type FileRecordStore interface {
	List(ctx context.Context) ([]models.CsvFile, error)
	Get(ctx context.Context, id string) (models.CsvFile, error)
	Insert(ctx context.Context, filename string) (models.CsvFile, error)
	Update(ctx context.Context, id string, fields map[string]any) (models.CsvFile, error)
	Delete(ctx context.Context, id string) (models.CsvFile, error)
}

type ObjectStorage interface {
	Upload(ctx context.Context, localPath string, logicalName string) (string, error)
	RegenerateSignedURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type CsvTransformer interface {
	Transform(ctx context.Context, filename string, file io.Reader) ([]byte, error)
}

type LogWriter interface {
	CreateLog(ctx context.Context, action string, outcome string, message *string) error
}
