package contentstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/sentinel"
)

type record struct {
	Wallet string `json:"walletAddress"`
	IDType string `json:"idType"`
	IDHash string `json:"idHash"`
}

func TestCanonicalizeIsKeyOrderIndependent(t *testing.T) {
	id1, data1, err := Canonicalize(record{Wallet: "0xaa", IDType: "BVN", IDHash: "ff"})
	require.NoError(t, err)
	id2, data2, err := Canonicalize(map[string]string{"idHash": "ff", "walletAddress": "0xaa", "idType": "BVN"})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, `{"idHash":"ff","idType":"BVN","walletAddress":"0xaa"}`, string(data1))
	assert.Equal(t, data1, data2)
	assert.True(t, strings.HasPrefix(id1, "sha256:"))
	assert.Len(t, id1, len("sha256:")+64)
}

func TestPublisherInMemory(t *testing.T) {
	ctx := context.Background()
	backend := NewInMemoryBackend()
	pub := NewPublisher(backend)

	id, err := pub.Put(ctx, record{Wallet: "0xaa", IDType: "NIN", IDHash: "01"})
	require.NoError(t, err)
	again, err := pub.Put(ctx, record{Wallet: "0xaa", IDType: "NIN", IDHash: "01"})
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, backend.Len())

	data, err := pub.Get(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"idType":"NIN"`)

	_, err = pub.Get(ctx, "sha256:"+strings.Repeat("0", 64))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = pub.Get(ctx, "md5:abc")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestDisabledAlwaysFails(t *testing.T) {
	_, err := Disabled{}.Put(context.Background(), record{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[*in.Bucket+"/"+*in.Key]; ok {
		return &s3.HeadObjectOutput{}, nil
	}
	return nil, &types.NotFound{}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Backend(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads once per content id", func(t *testing.T) {
		fake := newFakeS3()
		pub := NewPublisher(NewS3BackendWithClient(fake, "identity", "records/"))

		id, err := pub.Put(ctx, record{Wallet: "0xaa", IDType: "BVN", IDHash: "01"})
		require.NoError(t, err)
		_, err = pub.Put(ctx, record{Wallet: "0xaa", IDType: "BVN", IDHash: "01"})
		require.NoError(t, err)
		assert.Equal(t, 1, fake.puts)

		key := "identity/records/" + strings.TrimPrefix(id, "sha256:") + ".json"
		assert.Contains(t, fake.objects, key)

		data, err := pub.Get(ctx, id)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"walletAddress":"0xaa"`)
	})

	t.Run("missing object maps to not found", func(t *testing.T) {
		b := NewS3BackendWithClient(newFakeS3(), "identity", "")
		_, err := b.Get(ctx, "sha256:"+strings.Repeat("a", 64))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("upload failure surfaces", func(t *testing.T) {
		fake := newFakeS3()
		fake.putErr = errors.New("access denied")
		pub := NewPublisher(NewS3BackendWithClient(fake, "identity", ""))
		_, err := pub.Put(ctx, record{IDHash: "02"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}
