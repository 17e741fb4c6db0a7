package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/joho/godotenv"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 30 * time.Second

var ErrMissingBucket = errors.New("RT_S3_BUCKET is not set")

// Config holds the object store settings, read from RT_S3_* environment variables
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // Optional, for S3-compatible stores
	AccessKey string
	SecretKey string
	Prefix    string // Key prefix for uploaded renders
	ACL       string // Canned ACL; empty sends none
}

// getEnv returns the value of key or fallback when it is unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// LoadConfig reads publish settings from the environment after loading
// envFile. A missing env file is not an error.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Bucket:    os.Getenv("RT_S3_BUCKET"),
		Region:    getEnv("RT_S3_REGION", "us-east-1"),
		Endpoint:  os.Getenv("RT_S3_ENDPOINT"),
		AccessKey: os.Getenv("RT_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("RT_S3_SECRET_KEY"),
		Prefix:    getEnv("RT_S3_PREFIX", "renders"),
		ACL:       os.Getenv("RT_S3_ACL"),
	}
	if cfg.Bucket == "" {
		return cfg, ErrMissingBucket
	}
	return cfg, nil
}

// objectPutter is the subset of the S3 client used for uploads
type objectPutter interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Publisher uploads encoded renders to an S3 bucket
type Publisher struct {
	config Config
	client objectPutter
}

// NewPublisher creates an S3 session from cfg
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}

	s3Config := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.Endpoint != ""),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		s3Config.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return newPublisher(cfg, s3.New(sess)), nil
}

func newPublisher(cfg Config, client objectPutter) *Publisher {
	return &Publisher{config: cfg, client: client}
}

// Key returns the object key for name under the configured prefix
func (p *Publisher) Key(name string) string {
	return path.Join(strings.Trim(p.config.Prefix, "/"), name)
}

// Upload stores data under Key(name) and returns its s3:// location
func (p *Publisher) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := p.Key(name)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if p.config.ACL != "" {
		input.ACL = aws.String(p.config.ACL)
	}

	if _, err := p.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.config.Bucket, key), nil
}
