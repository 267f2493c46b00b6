package persistent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageRepo_PublicURL(t *testing.T) {
	aws := NewImageRepo(nil, "photos", "eu-west-1", "")
	require.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/uploads/abc/my_cat.jpg", aws.PublicURL("uploads/abc/my_cat.jpg"))

	minio := NewImageRepo(nil, "photos", "garage", "http://localhost:9000/")
	require.Equal(t, "http://localhost:9000/photos/uploads/abc/a%20b.png", minio.PublicURL("uploads/abc/a b.png"))
}
