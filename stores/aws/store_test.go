package aws

import (
	"bytes"
	"context"
	"errors"
	"io"
	"notion-mini/core"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestGetMissingKey(t *testing.T) {
	store := &keyValueStore{s3Client: &fakeBucket{objects: map[string][]byte{}}, bucket: "b"}
	_, err := store.Get(context.Background(), "pages")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSetThenGet(t *testing.T) {
	ctx := context.Background()
	store := &keyValueStore{s3Client: &fakeBucket{objects: map[string][]byte{}}, bucket: "b"}

	require.NoError(t, store.Set(ctx, "pages", []byte(`[]`)))
	got, err := store.Get(ctx, "pages")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestSetError(t *testing.T) {
	store := &keyValueStore{s3Client: &fakeBucket{objects: map[string][]byte{}, putErr: errors.New("denied")}, bucket: "b"}
	err := store.Set(context.Background(), "pages", []byte(`[]`))
	assert.ErrorContains(t, err, "denied")
}
