package s3

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresEndpointAndBucket(t *testing.T) {
	_, err := New(Config{Bucket: "images"})
	assert.Error(t, err)

	_, err = New(Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestNew_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "derived from endpoint",
			cfg:  Config{Endpoint: "localhost:9000", Bucket: "images"},
			want: "http://localhost:9000/images",
		},
		{
			name: "derived with TLS",
			cfg:  Config{Endpoint: "s3.example.com", Bucket: "images", UseSSL: true},
			want: "https://s3.example.com/images",
		},
		{
			name: "explicit CDN url",
			cfg:  Config{Endpoint: "s3.example.com", Bucket: "images", PublicURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.publicURL)
		})
	}
}

func TestObjectKey(t *testing.T) {
	key := objectKey("Holiday.JPG")

	assert.True(t, strings.HasSuffix(key, ".jpg"), "key %q keeps the lower-cased extension", key)
	assert.Len(t, key, 36+len(".jpg"))
	assert.NotEqual(t, key, objectKey("Holiday.JPG"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", contentType("abc.png"))
	assert.Equal(t, "application/octet-stream", contentType("abc"))
}
