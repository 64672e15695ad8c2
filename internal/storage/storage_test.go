package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkinowls/recipe-app-api/config"
)

func TestRecipeImageKey(t *testing.T) {
	key := RecipeImageKey(".PNG")
	assert.Regexp(t, regexp.MustCompile(`^uploads/recipe/[0-9a-f-]{36}\.png$`), key)
	assert.NotEqual(t, key, RecipeImageKey("png"))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, validateKey("uploads/recipe/a.jpg"))
	for _, bad := range []string{"", "/etc/passwd", "../secret", "uploads/../../x", "uploads//a.jpg"} {
		assert.ErrorIs(t, validateKey(bad), ErrInvalidKey, bad)
	}
}

func TestLocalSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	key := "uploads/recipe/test.png"
	require.NoError(t, l.Save(ctx, key, []byte("pixels"), "image/png"))

	data, err := l.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), data)
	assert.Equal(t, "/media/uploads/recipe/test.png", l.URL(key))

	require.NoError(t, l.Delete(ctx, key))
	_, err = os.Stat(l.Path(key))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, l.Delete(ctx, key), "deleting twice is fine")
	assert.Error(t, l.Save(ctx, key, nil, "image/png"))
	assert.ErrorIs(t, l.Save(ctx, "../escape.png", []byte("x"), "image/png"), ErrInvalidKey)
}

func TestNewLocalRequiresRoot(t *testing.T) {
	_, err := NewLocal("", "/media")
	assert.Error(t, err)
}

type fakeS3 struct {
	puts    map[string][]byte
	deletes []string
	failPut bool
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("access denied")
	}
	body, _ := io.ReadAll(in.Body)
	f.puts[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Backend(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{puts: map[string][]byte{}}
	b := NewS3(fake, &config.S3Config{BucketName: "recipes", Region: "eu-west-1"})

	key := "uploads/recipe/a.jpg"
	require.NoError(t, b.Save(ctx, key, []byte("jpeg"), "image/jpeg"))
	assert.Equal(t, []byte("jpeg"), fake.puts[key])
	assert.Equal(t, "https://recipes.s3.eu-west-1.amazonaws.com/uploads/recipe/a.jpg", b.URL(key))

	require.NoError(t, b.Delete(ctx, key))
	assert.Equal(t, []string{key}, fake.deletes)

	fake.failPut = true
	assert.Error(t, b.Save(ctx, key, []byte("jpeg"), "image/jpeg"))
}

func TestNewSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	b, err := New(context.Background(), &config.Config{MediaBackend: config.MediaLocal, MediaRoot: dir, MediaURL: "/media"})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, b)

	_, err = New(context.Background(), &config.Config{MediaBackend: "ftp"})
	assert.Error(t, err)
}
