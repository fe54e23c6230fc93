package resume

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/muhammadolammi/interviewmate/internal/config"
	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/retry"
)

// ObjectAPI is the subset of the S3 client the archive uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Archive keeps a copy of every attached resume in an R2 bucket under
// resumes/<record id>/<file name>.
type Archive struct {
	client ObjectAPI
	bucket string
}

func NewArchive(client ObjectAPI, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// NewR2Archive connects to the Cloudflare R2 bucket described by cfg.
func NewR2Archive(ctx context.Context, cfg config.R2Config) (*Archive, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})
	return NewArchive(client, cfg.Bucket), nil
}

func prefix(recordID string) string {
	return "resumes/" + recordID + "/"
}

// Key is the object key of a record's resume.
func Key(recordID, fileName string) string {
	return prefix(recordID) + path.Base(fileName)
}

// Put uploads the decoded resume and returns its key.
func (a *Archive) Put(ctx context.Context, recordID string, r interview.Resume) (string, error) {
	mimeType, data, err := Decode(r)
	if err != nil {
		return "", err
	}
	key := Key(recordID, r.FileName)
	_, err = retry.Do(ctx, 3, func() (*s3.PutObjectOutput, error) {
		return a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(mimeType),
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return key, nil
}

// Get downloads an archived object.
func (a *Archive) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// keys lists the objects archived for a record.
func (a *Archive) keys(ctx context.Context, recordID string) ([]string, error) {
	var keys []string
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix(recordID)),
	}
	for {
		out, err := a.client.ListObjectsV2(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			return keys, nil
		}
		in.ContinuationToken = out.NextContinuationToken
	}
}

// deleteExcept removes every object archived for a record except keep.
func (a *Archive) deleteExcept(ctx context.Context, recordID, keep string) error {
	keys, err := a.keys(ctx, recordID)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if key == keep {
			continue
		}
		if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", key, err)
		}
	}
	return nil
}

// Delete removes every object archived for a record.
func (a *Archive) Delete(ctx context.Context, recordID string) error {
	return a.deleteExcept(ctx, recordID, "")
}

// Sync makes the archive mirror the record's current attachment: the
// resume is uploaded and stale files are removed, or everything is
// removed when the record has no resume.
func (a *Archive) Sync(ctx context.Context, rec interview.Record) error {
	if rec.Resume == nil || rec.Resume.FileData == "" {
		return a.Delete(ctx, rec.ID)
	}
	key, err := a.Put(ctx, rec.ID, *rec.Resume)
	if err != nil {
		return err
	}
	return a.deleteExcept(ctx, rec.ID, key)
}
