package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/oklog/ulid/v2"
	"go.uber.org/multierr"

	"github.com/hamed0406/deploysmoke/internal/report"
)

const (
	markerPayload     = "Test content"
	markerContentType = "text/plain"
)

// ObjectAPI is the subset of *s3.Client the storage probe calls.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client returns a constructor that resolves credentials from the
// ambient AWS chain. An empty region leaves region resolution to the chain.
func NewS3Client(region string) func(ctx context.Context) (ObjectAPI, error) {
	return func(ctx context.Context) (ObjectAPI, error) {
		var opts []func(*awsconfig.LoadOptions) error
		if region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3.NewFromConfig(cfg), nil
	}
}

// StorageChecker writes a marker object straight into the bucket and deletes
// it again. With Verify set it also lists the key before deleting.
type StorageChecker struct {
	Label     string
	Bucket    string
	Verify    bool
	Out       *report.Reporter
	NewClient func(ctx context.Context) (ObjectAPI, error)
	Now       func() time.Time
}

func NewStorageChecker(bucket string, verify bool, newClient func(ctx context.Context) (ObjectAPI, error), out *report.Reporter) *StorageChecker {
	return &StorageChecker{
		Label:     "Object storage",
		Bucket:    bucket,
		Verify:    verify,
		Out:       reporterOr(out),
		NewClient: newClient,
		Now:       time.Now,
	}
}

// MarkerKey embeds the Unix second and a ULID so concurrent runs never collide.
func MarkerKey(now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	return fmt.Sprintf("test-object-%d-%s.txt", now.Unix(), strings.ToLower(id.String()))
}

func (s *StorageChecker) Check(ctx context.Context) Result {
	start := time.Now()
	if err := s.run(ctx); err != nil {
		msg := fmt.Sprintf("Object storage operation failed: %s", describeStorageError(s.Bucket, err))
		s.Out.Error(msg)
		return failed(s.Label, msg, err, start)
	}
	msg := fmt.Sprintf("Bucket %s test successful", s.Bucket)
	s.Out.Success(msg)
	return passed(s.Label, msg, start)
}

func (s *StorageChecker) run(ctx context.Context) (err error) {
	if s.NewClient == nil {
		return errors.New("storage probe: client constructor is nil")
	}
	client, err := s.NewClient(ctx)
	if err != nil {
		return err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	key := MarkerKey(now())

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(markerPayload),
		ContentType: aws.String(markerContentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	// The object exists from here on; remove it on every path, even after cancellation.
	defer func() {
		_, derr := client.DeleteObject(context.WithoutCancel(ctx), &s3.DeleteObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		})
		if derr != nil {
			err = multierr.Append(err, fmt.Errorf("delete %s: %w", key, derr))
		}
	}()

	if s.Verify {
		return s.verifyListed(ctx, client, key)
	}
	return nil
}

func (s *StorageChecker) verifyListed(ctx context.Context, client ObjectAPI, key string) error {
	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.Bucket),
		Prefix:  aws.String(key),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("list %s: %w", key, err)
	}
	for _, obj := range out.Contents {
		if aws.ToString(obj.Key) == key {
			s.Out.Success(fmt.Sprintf("Object %s found in bucket %s", key, s.Bucket))
			return nil
		}
	}
	return fmt.Errorf("object %s missing from listing", key)
}

func describeStorageError(bucket string, err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "NotFound":
			return fmt.Sprintf("bucket %s not found: %v", bucket, err)
		case "AccessDenied", "Forbidden":
			return fmt.Sprintf("access denied to bucket %s: %v", bucket, err)
		}
	}
	return err.Error()
}
