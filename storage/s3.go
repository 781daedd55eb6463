package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// S3Store keeps blobs in an S3-compatible bucket (Cloudflare R2). The
// original display name travels as object metadata and the MIME type as
// the ContentType, so Get can reconstruct a full Blob from the object
// alone.
type S3Store struct {
	C      *s3.Client
	Bucket *string
}

const metaOriginalName = "original-name"

func NewS3Store() (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("cloudflare.access_key_id"),
			viper.GetString("cloudflare.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("cloudflare.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", viper.GetString("cloudflare.account_id")))
		o.Region = "auto"
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Store{
		C:      client,
		Bucket: bucket,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, b *Blob) (string, error) {
	handle := handleFor(b.ClipboardID, b.Filename)

	_, err := s.C.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(handle),
		Body:          bytes.NewReader(b.Data),
		ContentLength: aws.Int64(int64(len(b.Data))),
		ContentType:   aws.String(b.MimeType),
		Metadata: map[string]string{
			metaOriginalName: b.OriginalName,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob to S3, %w", err)
	}

	return handle, nil
}

func (s *S3Store) Get(ctx context.Context, handle string) (*Blob, error) {
	resp, err := s.C.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(handle),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrBlobNotFound
		}

		return nil, fmt.Errorf("failed to fetch blob from S3, %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob body, %w", err)
	}

	b := &Blob{
		Data:         data,
		OriginalName: resp.Metadata[metaOriginalName],
	}
	if resp.ContentType != nil {
		b.MimeType = *resp.ContentType
	}

	return b, nil
}

func (s *S3Store) Delete(ctx context.Context, handle string) error {
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob from S3, %w", err)
	}

	return nil
}

func (s *S3Store) DeleteAllForClipboard(ctx context.Context, clipboardID string) (int, error) {
	deleted := 0
	prefix := clipboardID + "/"

	p := s3.NewListObjectsV2Paginator(s.C, &s3.ListObjectsV2Input{
		Bucket: s.Bucket,
		Prefix: aws.String(prefix),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("failed to list blobs for clipboard, %w", err)
		}

		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]types.ObjectIdentifier, len(page.Contents))
		for i, obj := range page.Contents {
			objects[i] = types.ObjectIdentifier{Key: obj.Key}
		}

		resp, err := s.C.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: s.Bucket,
			Delete: &types.Delete{
				Objects: objects,
			},
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete blobs from S3, %w", err)
		}

		for _, v := range resp.Deleted {
			zap.L().Debug("Deleted blob", zap.String("key", *v.Key))
		}

		deleted += len(resp.Deleted)
	}

	return deleted, nil
}
