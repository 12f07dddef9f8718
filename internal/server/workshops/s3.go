package workshops

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/server/config"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
)

const s3Scheme = "s3://"

// getObjectAPI is the part of *s3.Client used here.
type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the catalogue from an object in an S3-compatible store.
type S3Source struct {
	client getObjectAPI
	bucket string
	key    string
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3Source builds a client with static credentials and the configured
// base endpoint. Path-style addressing keeps MinIO-style endpoints working.
func NewS3Source(cfg *config.Config) (*S3Source, error) {
	bucket, key, err := parseS3URL(cfg.WorkshopsSource)
	if err != nil {
		return nil, err
	}

	awsCfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

func (s *S3Source) Load(ctx context.Context) ([]models.Workshop, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, &common.DataLoadError{Err: fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)}
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &common.DataLoadError{Err: fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)}
	}
	return decode(b)
}

func parseS3URL(u string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(u, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %q", u)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url needs bucket and key: %q", u)
	}
	return bucket, key, nil
}
