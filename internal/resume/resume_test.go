package resume

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/interviewmate/internal/interview"
)

func TestFromFileAndDecode(t *testing.T) {
	r := FromFile("/tmp/uploads/cv.txt", []byte("hello resume"), MimePlain)
	assert.Equal(t, "cv.txt", r.FileName)
	assert.True(t, strings.HasPrefix(r.FileData, "data:text/plain;base64,"))

	mimeType, data, err := Decode(r)
	require.NoError(t, err)
	assert.Equal(t, MimePlain, mimeType)
	assert.Equal(t, []byte("hello resume"), data)
}

func TestDecodeRejectsNonDataURL(t *testing.T) {
	for _, raw := range []string{"", "hello", "data:text/plain,hello", "data:text/plain;base64"} {
		_, _, err := Decode(interview.Resume{FileName: "a.txt", FileData: raw})
		assert.ErrorIs(t, err, ErrNotDataURL, raw)
	}

	_, _, err := Decode(interview.Resume{FileData: "data:text/plain;base64,%%%"})
	assert.Error(t, err)
}

func TestDetectMime(t *testing.T) {
	assert.Equal(t, MimePDF, DetectMime("cv.PDF", "", nil))
	assert.Equal(t, MimeDocx, DetectMime("cv.docx", "application/octet-stream", nil))
	assert.Equal(t, MimePlain, DetectMime("notes", "text/plain; charset=utf-8", nil))
	assert.Equal(t, MimePlain, DetectMime("notes", "", []byte("just words")))
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText(MimePlain, []byte("3 years at a sushi bar"))
	require.NoError(t, err)
	assert.Equal(t, "3 years at a sushi bar", text)

	_, err = ExtractText("image/png", []byte{0x89})
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = ExtractText(MimePDF, []byte("not a pdf"))
	assert.Error(t, err)
}

func TestTextOf(t *testing.T) {
	text, err := TextOf(FromFile("cv.txt", []byte("  Kim Minsu\n"), MimePlain))
	require.NoError(t, err)
	assert.Equal(t, "Kim Minsu", text)
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
	}
	return out, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeObjects) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestArchivePutAndGet(t *testing.T) {
	objects := newFakeObjects()
	a := NewArchive(objects, "bucket")
	ctx := context.Background()

	key, err := a.Put(ctx, "rec-1", FromFile("cv.txt", []byte("resume body"), MimePlain))
	require.NoError(t, err)
	assert.Equal(t, "resumes/rec-1/cv.txt", key)

	data, err := a.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("resume body"), data)
}

func TestArchiveSyncReplacesAndClears(t *testing.T) {
	objects := newFakeObjects()
	a := NewArchive(objects, "bucket")
	ctx := context.Background()

	first := FromFile("old.txt", []byte("v1"), MimePlain)
	require.NoError(t, a.Sync(ctx, interview.Record{ID: "rec-1", Resume: &first}))
	other := FromFile("keep.txt", []byte("x"), MimePlain)
	require.NoError(t, a.Sync(ctx, interview.Record{ID: "rec-2", Resume: &other}))

	second := FromFile("new.txt", []byte("v2"), MimePlain)
	require.NoError(t, a.Sync(ctx, interview.Record{ID: "rec-1", Resume: &second}))
	assert.Equal(t, []string{"resumes/rec-1/new.txt", "resumes/rec-2/keep.txt"}, objects.keys())

	require.NoError(t, a.Sync(ctx, interview.Record{ID: "rec-1"}))
	assert.Equal(t, []string{"resumes/rec-2/keep.txt"}, objects.keys())
}

func TestArchivePutRejectsBadPayload(t *testing.T) {
	a := NewArchive(newFakeObjects(), "bucket")
	_, err := a.Put(context.Background(), "rec-1", interview.Resume{FileName: "cv.txt", FileData: "plain"})
	assert.ErrorIs(t, err, ErrNotDataURL)
}
