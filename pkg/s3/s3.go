package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"KeikoHub/pkg/log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const (
	exportPrefix      = "passages"
	DefaultPresignTTL = 15 * time.Minute
)

var ErrBucketNotConfigured = errors.New("AWS_BUCKET_NAME not set")

type ItfS3 interface {
	UploadExport(ctx context.Context, fileName string, body []byte, contentType string) (string, error)
	PresignUrl(fileUrl string) (string, error)
	DeleteFile(fileUrl string) error
}

type s3Client struct {
	client     *s3.S3
	session    *session.Session
	bucketName string
}

func New() (ItfS3, error) {
	bucket := os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		return nil, ErrBucketNotConfigured
	}

	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		session:    sess,
		bucketName: bucket,
	}, nil
}

// UploadExport stores an exported passage under passages/<date>/<fileName> and
// returns the object location.
func (s *s3Client) UploadExport(ctx context.Context, fileName string, body []byte, contentType string) (string, error) {
	uploader := s3manager.NewUploader(s.session)

	out, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(exportKey(fileName, time.Now())),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", fileName, err)
	}

	return out.Location, nil
}

func (s *s3Client) PresignUrl(fileUrl string) (string, error) {
	decodedKey, err := url.QueryUnescape(extractKeyFromS3Url(fileUrl))
	if err != nil {
		return "", fmt.Errorf("failed to decode S3 key: %w", err)
	}

	_, err = s.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(decodedKey),
	})
	if err != nil {
		return "", fmt.Errorf("file does not exist: %w", err)
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(decodedKey),
	})

	return req.Presign(DefaultPresignTTL)
}

func (s *s3Client) DeleteFile(fileUrl string) error {
	decodedKey, err := url.QueryUnescape(extractKeyFromS3Url(fileUrl))
	if err != nil {
		return fmt.Errorf("failed to decode filename: %w", err)
	}

	_, err = s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(decodedKey),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", decodedKey, err)
	}

	log.Debug(log.Fields{"bucket": s.bucketName, "key": decodedKey}, "Export deleted")
	return nil
}

func extractKeyFromS3Url(fileUrl string) string {
	if _, after, ok := strings.Cut(fileUrl, ".com/"); ok {
		return after
	}
	return fileUrl
}

func exportKey(fileName string, at time.Time) string {
	return path.Join(exportPrefix, at.UTC().Format("2006-01-02"), path.Base(fileName))
}

func newSession() (*session.Session, error) {
	return session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
}
