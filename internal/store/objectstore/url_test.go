package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit base wins",
			cfg:  Config{Endpoint: "http://minio:9000", Bucket: "media", PublicBaseURL: "https://cdn.example/"},
			want: "https://cdn.example",
		},
		{
			name: "path style",
			cfg:  Config{Endpoint: "http://localhost:9000", Bucket: "media", UsePathStyle: true},
			want: "http://localhost:9000/media",
		},
		{
			name: "virtual host style",
			cfg:  Config{Endpoint: "https://s3.eu-west-1.amazonaws.com", Bucket: "media"},
			want: "https://media.s3.eu-west-1.amazonaws.com",
		},
		{
			name: "aws default endpoint",
			cfg:  Config{Region: "ap-south-1", Bucket: "media"},
			want: "https://media.s3.ap-south-1.amazonaws.com",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := publicBaseURL(tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
