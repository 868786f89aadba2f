package filestore

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

var _ FileStore = (*S3Driver)(nil)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL overrides the object URL prefix (CDN or custom domain).
	PublicURL string
}

type S3Driver struct {
	s3        *s3.S3
	bucket    string
	publicURL string
}

func NewS3Driver(cfg S3Config) (*S3Driver, error) {
	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		// MinIO and most S3-compatible services need path-style addressing
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	if cfg.AccessKey != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""))
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create aws session")
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = joinURL(cfg.Endpoint, cfg.Bucket)
		} else {
			publicURL = "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
		}
	}

	return &S3Driver{s3: s3.New(sess), bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func (sd *S3Driver) Put(ctx context.Context, key string, r io.ReadSeeker, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(sd.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := sd.s3.PutObjectWithContext(ctx, input); err != nil {
		return "", errors.Wrapf(err, "put object %s", key)
	}
	return joinURL(sd.publicURL, key), nil
}

// Delete checks the object first since S3 reports success for deleting a
// missing key.
func (sd *S3Driver) Delete(ctx context.Context, key string) error {
	_, err := sd.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(sd.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.RequestFailure
		if errors.As(err, &aerr) && aerr.StatusCode() == 404 {
			return ErrNotFound
		}
		return errors.Wrapf(err, "head object %s", key)
	}

	if _, err := sd.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(sd.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return errors.Wrapf(err, "delete object %s", key)
	}
	return nil
}
