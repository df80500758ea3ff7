package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/sql-sketcher-backend/config"
)

type fakeClient struct {
	lastPutBucket      string
	lastPutKey         string
	lastPutBody        string
	lastPutContentType string
	lastDeleteKey      string
	putErr             error
	deleteErr          error
	bucketExists       bool
	createBucketCalled bool
}

func (f *fakeClient) Put(_ context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if int64(len(body)) != size {
		return errors.New("size mismatch")
	}
	f.lastPutBucket = bucket
	f.lastPutKey = key
	f.lastPutBody = string(body)
	f.lastPutContentType = contentType
	return nil
}

func (f *fakeClient) Delete(_ context.Context, _ string, key string) error {
	f.lastDeleteKey = key
	return f.deleteErr
}

func (f *fakeClient) BucketExists(context.Context, string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeClient) CreateBucket(context.Context, string, string) error {
	f.createBucketCalled = true
	return nil
}

func TestPutSQLUsesPrefixedKey(t *testing.T) {
	fake := &fakeClient{}
	store, err := NewWithClient("bucket-a", "/sql-sketcher/", fake)
	require.NoError(t, err)

	require.NoError(t, store.PutSQL(context.Background(), "user-1", "art-1", "CREATE TABLE t (id INT);"))
	assert.Equal(t, "bucket-a", fake.lastPutBucket)
	assert.Equal(t, "sql-sketcher/user-1/art-1.sql", fake.lastPutKey)
	assert.Equal(t, "CREATE TABLE t (id INT);", fake.lastPutBody)
	assert.Equal(t, "application/sql", fake.lastPutContentType)
}

func TestKeyRejectsTraversal(t *testing.T) {
	store, err := NewWithClient("bucket-a", "", &fakeClient{})
	require.NoError(t, err)

	for _, bad := range [][2]string{{"../x", "a"}, {"u", "a/b"}, {"", "a"}, {"..", "a"}} {
		_, err := store.Key(bad[0], bad[1])
		assert.Error(t, err, "%v", bad)
	}
	key, err := store.Key("u", "a")
	require.NoError(t, err)
	assert.Equal(t, "u/a.sql", key)
}

func TestDeleteSQLIgnoresMissingObject(t *testing.T) {
	fake := &fakeClient{deleteErr: ErrObjectNotFound}
	store, err := NewWithClient("bucket-a", "p", fake)
	require.NoError(t, err)

	require.NoError(t, store.DeleteSQL(context.Background(), "user-1", "art-1"))
	assert.Equal(t, "p/user-1/art-1.sql", fake.lastDeleteKey)

	fake.deleteErr = errors.New("boom")
	assert.Error(t, store.DeleteSQL(context.Background(), "user-1", "art-1"))
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	fake := &fakeClient{bucketExists: false}
	store, err := NewWithClient("bucket-a", "", fake)
	require.NoError(t, err)

	require.NoError(t, store.ensureBucket(context.Background(), "us-east-1"))
	assert.True(t, fake.createBucketCalled)
}

func TestMapMinioErr(t *testing.T) {
	assert.NoError(t, mapMinioErr(nil))
	assert.ErrorIs(t, mapMinioErr(minio.ErrorResponse{Code: "NoSuchKey"}), ErrObjectNotFound)
	other := minio.ErrorResponse{Code: "AccessDenied"}
	assert.Equal(t, other, mapMinioErr(other))
}

func TestParseEndpoint(t *testing.T) {
	endpoint, secure, err := parseEndpoint("https://minio.example.com", false)
	require.NoError(t, err)
	assert.Equal(t, "minio.example.com", endpoint)
	assert.True(t, secure)

	endpoint, secure, err = parseEndpoint("http://localhost:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", endpoint)
	assert.False(t, secure)

	endpoint, secure, err = parseEndpoint("localhost:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", endpoint)
	assert.True(t, secure)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(context.Background(), config.ArchiveConfig{Bucket: "b"})
	assert.Error(t, err)
	_, err = New(context.Background(), config.ArchiveConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	store, err := New(context.Background(), config.ArchiveConfig{Endpoint: "localhost:9000", Bucket: "b", Prefix: "x"})
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}
