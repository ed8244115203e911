package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const transformDefaultBaseURL = "http://localhost:8000"

var filenameEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"", "\r", "", "\n", "")

// TransformService sends raw CSV bytes to the external processing service and
// returns the transformed bytes. Whole buffer in, whole buffer out.
type TransformService struct {
	client  *http.Client
	baseURL string
}

func NewTransformService(baseURL string, client *http.Client) (*TransformService, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = transformDefaultBaseURL
	}

	return &TransformService{client: client, baseURL: baseURL}, nil
}

func (s *TransformService) Transform(ctx context.Context, filename string, file io.Reader) ([]byte, error) {
	if s == nil {
		return nil, errors.New("transform service is nil")
	}
	if s.client == nil {
		return nil, errors.New("http client is nil")
	}
	if filename == "" {
		return nil, errors.New("filename is empty")
	}
	if file == nil {
		return nil, errors.New("file is nil")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filenameEscaper.Replace(filename)))
	header.Set("Content-Type", "text/csv")

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file into form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form writer: %w", err)
	}

	endpoint := strings.TrimRight(s.baseURL, "/") + "/processar-csv/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

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
		return nil, fmt.Errorf("transform service status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
