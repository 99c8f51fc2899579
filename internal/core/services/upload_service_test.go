package services_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/SscSPs/inkpress/internal/apperrors"
	"github.com/SscSPs/inkpress/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, objectName, contentType, data)
	return args.String(0), args.Error(1)
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadService_StoresImage(t *testing.T) {
	storage := new(MockStorage)
	svc := services.NewUploadService(storage)
	assert.True(t, svc.Enabled())

	storage.On("Put", mock.Anything,
		mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "uploads/user-1/") && strings.HasSuffix(name, ".png")
		}),
		"image/png", pngHeader,
	).Return("https://storage.googleapis.com/bucket/x.png", nil).Once()

	resp, err := svc.UploadImage(context.Background(), "user-1", "Cover.PNG", "image/png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/bucket/x.png", resp.URL)
	storage.AssertExpectations(t)
}

func TestUploadService_IgnoresClientTypeAndName(t *testing.T) {
	storage := new(MockStorage)
	svc := services.NewUploadService(storage)
	body := append(append([]byte{}, pngHeader...), []byte("<svg onload=alert(1)></svg>")...)

	storage.On("Put", mock.Anything,
		mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "uploads/user-1/") && strings.HasSuffix(name, ".png")
		}),
		"image/png", body,
	).Return("https://storage.googleapis.com/bucket/y.png", nil).Once()

	resp, err := svc.UploadImage(context.Background(), "user-1", "x.html", "image/svg+xml", int64(len(body)), bytes.NewReader(body))
	require.NoError(t, err)
	assert.NotContains(t, resp.Name, ".html")
	storage.AssertExpectations(t)
}

func TestUploadService_RejectsUnlistedImageTypes(t *testing.T) {
	storage := new(MockStorage)
	svc := services.NewUploadService(storage)
	bmp := []byte("BM\x00\x00\x00\x00\x00\x00\x00\x00")

	_, err := svc.UploadImage(context.Background(), "user-1", "a.bmp", "image/bmp", int64(len(bmp)), bytes.NewReader(bmp))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_RejectsNonImages(t *testing.T) {
	storage := new(MockStorage)
	svc := services.NewUploadService(storage)

	_, err := svc.UploadImage(context.Background(), "user-1", "a.png", "image/png", 5, strings.NewReader("hello"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UploadImage(context.Background(), "user-1", "a.png", "image/png", services.MaxUploadBytes+1, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_Unconfigured(t *testing.T) {
	svc := services.NewUploadService(nil)
	assert.False(t, svc.Enabled())
	_, err := svc.UploadImage(context.Background(), "user-1", "a.png", "image/png", 1, strings.NewReader("x"))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 503, appErr.Code)
}
