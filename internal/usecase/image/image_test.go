package image_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/internal/testutil"
	"github.com/andreyxaxa/Image-Tagger/internal/usecase/image"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const expiry = 15 * time.Minute

func newUseCase() (*image.ImageUseCase, *testutil.ImageRepo, *testutil.MetadataRepo) {
	imageRepo := &testutil.ImageRepo{}
	metadataRepo := &testutil.MetadataRepo{}

	return image.New(imageRepo, metadataRepo, expiry, logger.New("disabled")), imageRepo, metadataRepo
}

func TestImageUseCase_RequestUpload(t *testing.T) {
	uc, imageRepo, metadataRepo := newUseCase()

	var created []*entity.Image
	imageRepo.On("PresignUpload", mock.Anything, mock.Anything, "image/png", expiry).
		Return("https://bucket.s3.amazonaws.com/signed", nil)
	metadataRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(*entity.Image)) }).
		Return(nil)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		ticket, err := uc.RequestUpload(context.Background(), "my beach photo.png", "image/png")
		require.NoError(t, err)
		require.Equal(t, "https://bucket.s3.amazonaws.com/signed", ticket.PresignedURL)
		require.Equal(t, expiry, ticket.ExpiresIn)
		require.False(t, seen[ticket.ImageID], "image id reused")
		seen[ticket.ImageID] = true

		record := created[i]
		require.Equal(t, ticket.ImageID, record.ImageID)
		require.Equal(t, entity.Pending, record.Status)
		require.Equal(t, "uploads/"+ticket.ImageID+"/my_beach_photo.png", record.StorageKey)
		require.Equal(t, "my beach photo.png", record.FileName)

		id, err := entity.DecodeStorageKey(record.StorageKey)
		require.NoError(t, err)
		require.Equal(t, ticket.ImageID, id)
	}

	imageRepo.AssertNumberOfCalls(t, "PresignUpload", 3)
	metadataRepo.AssertNumberOfCalls(t, "Create", 3)
}

func TestImageUseCase_RequestUpload_Validation(t *testing.T) {
	cases := map[string][2]string{
		"empty name":        {"", "image/png"},
		"too long name":     {strings.Repeat("a", 252) + ".png", "image/png"},
		"path traversal":    {"../etc/passwd", "image/png"},
		"disallowed chars":  {"cat<script>.png", "image/png"},
		"unicode":           {"котик.png", "image/png"},
		"empty type":        {"cat.png", ""},
		"not an image":      {"cat.png", "application/pdf"},
		"svg not supported": {"cat.svg", "image/svg+xml"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			uc, imageRepo, metadataRepo := newUseCase()

			_, err := uc.RequestUpload(context.Background(), tc[0], tc[1])
			require.ErrorIs(t, err, errs.ErrValidation)

			imageRepo.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			metadataRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestImageUseCase_RequestUpload_Boundary(t *testing.T) {
	uc, imageRepo, metadataRepo := newUseCase()
	imageRepo.On("PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
	metadataRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.RequestUpload(context.Background(), strings.Repeat("a", 251)+".gif", "image/gif")
	require.NoError(t, err)
}

func TestImageUseCase_RequestUpload_ValidationMessages(t *testing.T) {
	uc, _, _ := newUseCase()

	_, err := uc.RequestUpload(context.Background(), strings.Repeat("a", 256), "image/png")
	require.ErrorContains(t, err, "maximum length of 255")

	_, err = uc.RequestUpload(context.Background(), "a|b.png", "image/png")
	require.ErrorContains(t, err, "invalid characters")

	_, err = uc.RequestUpload(context.Background(), "a.png", "text/plain")
	require.ErrorContains(t, err, "image/jpeg, image/png, image/gif, image/webp")
}

func TestImageUseCase_RequestUpload_BackendErrors(t *testing.T) {
	t.Run("presign", func(t *testing.T) {
		uc, imageRepo, metadataRepo := newUseCase()
		imageRepo.On("PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("no creds"))

		_, err := uc.RequestUpload(context.Background(), "a.png", "image/png")
		require.ErrorIs(t, err, errs.ErrStorageBackend)
		metadataRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("persist", func(t *testing.T) {
		uc, imageRepo, metadataRepo := newUseCase()
		imageRepo.On("PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
		metadataRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("ResourceNotFoundException"))

		_, err := uc.RequestUpload(context.Background(), "a.png", "image/png")
		require.ErrorIs(t, err, errs.ErrPersistence)
	})
}

func TestImageUseCase_GetStatus(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		uc, _, metadataRepo := newUseCase()
		metadataRepo.On("GetByID", mock.Anything, "abc").Return(&entity.Image{
			ImageID:    "abc",
			StorageKey: "uploads/abc/a.png",
			Status:     entity.Pending,
		}, nil)

		img, err := uc.GetStatus(context.Background(), "abc")
		require.NoError(t, err)
		require.NotNil(t, img.Tags)
		require.Equal(t, "https://cdn.test/uploads/abc/a.png", img.ImageURL)
	})

	t.Run("not found", func(t *testing.T) {
		uc, _, metadataRepo := newUseCase()
		metadataRepo.On("GetByID", mock.Anything, "nope").Return(nil, errs.ErrRecordNotFound)

		_, err := uc.GetStatus(context.Background(), "nope")
		require.ErrorIs(t, err, errs.ErrRecordNotFound)
		require.NotErrorIs(t, err, errs.ErrBackendQuery)
	})

	t.Run("backend", func(t *testing.T) {
		uc, _, metadataRepo := newUseCase()
		metadataRepo.On("GetByID", mock.Anything, "abc").Return(nil, errors.New("timeout"))

		_, err := uc.GetStatus(context.Background(), "abc")
		require.ErrorIs(t, err, errs.ErrBackendQuery)
	})
}

func TestImageUseCase_Search(t *testing.T) {
	uc, _, metadataRepo := newUseCase()
	metadataRepo.On("Search", mock.Anything, []string{"beach", "sunset"}).Return([]*entity.Image{
		{ImageID: "a", StorageKey: "uploads/a/x.jpg", Status: entity.Completed, Tags: []string{"beach", "sunset", "sea"}},
	}, nil)

	images, err := uc.Search(context.Background(), []string{" Beach", "SUNSET", "beach", ""})
	require.NoError(t, err)
	require.Len(t, images, 1)
	require.Equal(t, "https://cdn.test/uploads/a/x.jpg", images[0].ImageURL)
	metadataRepo.AssertExpectations(t)
}

func TestImageUseCase_Search_Empty(t *testing.T) {
	uc, _, metadataRepo := newUseCase()
	metadataRepo.On("Search", mock.Anything, []string{"unicorn"}).Return(nil, nil)

	images, err := uc.Search(context.Background(), []string{"unicorn"})
	require.NoError(t, err)
	require.NotNil(t, images)
	require.Empty(t, images)
}

func TestImageUseCase_Search_Validation(t *testing.T) {
	uc, _, metadataRepo := newUseCase()

	_, err := uc.Search(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = uc.Search(context.Background(), []string{"  ", ""})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = uc.Search(context.Background(), []string{"a", "b", "c", "d", "e", "f"})
	require.ErrorIs(t, err, errs.ErrValidation)

	metadataRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestImageUseCase_Search_Backend(t *testing.T) {
	uc, _, metadataRepo := newUseCase()
	metadataRepo.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("scan failed"))

	_, err := uc.Search(context.Background(), []string{"cat"})
	require.ErrorIs(t, err, errs.ErrBackendQuery)
}
