package storage

import (
	"context"
	"testing"
	"time"

	"alcyxob/routine-builder/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportKey(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		file    string
		want    string
		wantErr bool
	}{
		{name: "calendar", owner: "u1", file: "routine_schedule.ics", want: "exports/u1/routine_schedule.ics"},
		{name: "trims", owner: " u1 ", file: "b.json ", want: "exports/u1/b.json"},
		{name: "empty owner", owner: "", file: "b.json", wantErr: true},
		{name: "traversal", owner: "../u2", file: "b.json", wantErr: true},
		{name: "nested file", owner: "u1", file: "a/b.json", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExportKey(tt.owner, tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewS3StoreDisabledWithoutBucket(t *testing.T) {
	store, err := NewS3Store(context.Background(), config.S3Config{Region: "us-east-1"})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestPresignWithStaticCredentials(t *testing.T) {
	store, err := NewS3Store(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "routines",
	})
	require.NoError(t, err)
	require.NotNil(t, store)

	url, err := store.GeneratePresignedDownloadURL(context.Background(), "exports/u1/routine_schedule.ics", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/routines/exports/u1/routine_schedule.ics")
	assert.Contains(t, url, "X-Amz-Expires=60")
}
