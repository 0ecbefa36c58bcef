package service

import (
	"bytes"
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"ecourse-admin/internal/testutil"
	"ecourse-admin/internal/usecase"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxPictureSize = 250 * 1024

func pngPicture(raw []byte) *entity.Picture {
	return &entity.Picture{
		Filename:    "cover.png",
		ContentType: "image/png",
		Size:        int64(len(raw)),
		RawBytes:    bytes.NewReader(raw),
	}
}

func TestUploadPictureStoresCompressedBytes(t *testing.T) {
	compressor := testutil.NewCompressor()
	blobs := testutil.NewBlobStore()
	upload := NewUpload(compressor, blobs, testMaxPictureSize)
	raw := testutil.PNG(1000)

	link, err := upload.UploadPicture(context.Background(), pngPicture(raw))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(link, blobs.BaseURL+"/"))
	assert.True(t, strings.HasSuffix(link, ".png"))
	data, contentType, ok := blobs.Get(link)
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)
	assert.Len(t, data, (len(raw)+1)/2)
}

func TestUploadPictureDetectsMissingOutputType(t *testing.T) {
	compressor := testutil.NewCompressor()
	compressor.ContentType = ""
	blobs := testutil.NewBlobStore()
	upload := NewUpload(compressor, blobs, testMaxPictureSize)

	link, err := upload.UploadPicture(context.Background(), pngPicture(testutil.PNG(1000)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(link, ".png"))
}

func TestUploadPictureRejectsBeforeAnyNetworkCall(t *testing.T) {
	big := testutil.PNG(300 * 1024)
	require.Greater(t, len(big), testMaxPictureSize)

	cases := []struct {
		name    string
		picture *entity.Picture
		wantErr error
	}{
		{"missing", nil, usecase.ErrPictureMissing},
		{"empty", pngPicture(nil), usecase.ErrPictureMissing},
		{"declared type", &entity.Picture{
			ContentType: "application/pdf", Size: 10, RawBytes: bytes.NewReader(testutil.PNG(100)),
		}, usecase.ErrPictureType},
		{"sniffed type", &entity.Picture{
			ContentType: "image/png", Size: 17, RawBytes: strings.NewReader("definitely not a png"),
		}, usecase.ErrPictureType},
		{"declared size", &entity.Picture{
			ContentType: "image/png", Size: testMaxPictureSize + 1, RawBytes: bytes.NewReader(testutil.PNG(100)),
		}, usecase.ErrPictureTooLarge},
		{"actual size", &entity.Picture{
			ContentType: "image/png", Size: 1, RawBytes: bytes.NewReader(big),
		}, usecase.ErrPictureTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			compressor := testutil.NewCompressor()
			blobs := testutil.NewBlobStore()
			upload := NewUpload(compressor, blobs, testMaxPictureSize)

			_, err := upload.UploadPicture(context.Background(), tc.picture)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Zero(t, compressor.Calls)
			assert.Zero(t, blobs.Puts)
		})
	}
}

func TestUploadPictureAcceptsTypeWithParameters(t *testing.T) {
	upload := NewUpload(testutil.NewCompressor(), testutil.NewBlobStore(), testMaxPictureSize)
	picture := pngPicture(testutil.PNG(1000))
	picture.ContentType = "IMAGE/PNG; charset=binary"

	_, err := upload.UploadPicture(context.Background(), picture)
	assert.NoError(t, err)
}

func TestUploadPictureCompressionFailureStoresNothing(t *testing.T) {
	compressor := testutil.NewCompressor()
	compressor.Err = repo.ErrCompressionFailed
	blobs := testutil.NewBlobStore()
	upload := NewUpload(compressor, blobs, testMaxPictureSize)

	_, err := upload.UploadPicture(context.Background(), pngPicture(testutil.PNG(1000)))
	assert.ErrorIs(t, err, usecase.ErrUpstream)
	assert.ErrorIs(t, err, repo.ErrCompressionFailed)
	assert.Zero(t, blobs.Puts)
	assert.Zero(t, blobs.Len())
}

func TestUploadPictureMapsTimeouts(t *testing.T) {
	compressor := testutil.NewCompressor()
	compressor.Err = repo.ErrUpstreamTimeout
	upload := NewUpload(compressor, testutil.NewBlobStore(), testMaxPictureSize)

	_, err := upload.UploadPicture(context.Background(), pngPicture(testutil.PNG(1000)))
	assert.ErrorIs(t, err, usecase.ErrUpstreamTimeout)
	assert.NotErrorIs(t, err, usecase.ErrUpstream)
}

func TestUploadPictureStoreFailure(t *testing.T) {
	blobs := testutil.NewBlobStore()
	blobs.PutErr = repo.ErrUpstream
	upload := NewUpload(testutil.NewCompressor(), blobs, testMaxPictureSize)

	_, err := upload.UploadPicture(context.Background(), pngPicture(testutil.PNG(1000)))
	assert.ErrorIs(t, err, usecase.ErrUpstream)
}

func TestDeletePicture(t *testing.T) {
	blobs := testutil.NewBlobStore()
	upload := NewUpload(testutil.NewCompressor(), blobs, testMaxPictureSize)
	link, err := upload.UploadPicture(context.Background(), pngPicture(testutil.PNG(1000)))
	require.NoError(t, err)

	require.NoError(t, upload.DeletePicture(context.Background(), link))
	assert.Zero(t, blobs.Len())

	err = upload.DeletePicture(context.Background(), "https://elsewhere.test/x.png")
	assert.ErrorIs(t, err, repo.ErrForeignBlob)
	assert.ErrorIs(t, err, usecase.ErrUpstream)
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, "png", extensionOf("image/png"))
	assert.Equal(t, "webp", extensionOf("image/webp; q=1"))
	assert.Equal(t, "bin", extensionOf("application/octet-stream"))
	assert.Equal(t, "bin", extensionOf(""))
}
