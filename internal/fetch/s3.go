package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

type s3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
}

type s3Fetcher struct {
	cfg *s3Config
}

func init() {
	Register("s3", createS3Fetcher)
}

func createS3Fetcher(args interface{}) (Fetcher, error) {
	cfg := &s3Config{}
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return &s3Fetcher{cfg: cfg}, nil
}

// Fetch downloads s3://bucket/key to a file in destDir.
func (f *s3Fetcher) Fetch(ctx context.Context, rawURL string, destDir string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, &apperr.FetchError{URL: rawURL, Err: fmt.Errorf("s3 url must be s3://bucket/key")}
	}

	client, err := f.newClient(ctx)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	obj, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	defer obj.Body.Close()

	ext := ExtensionOf(key)
	dest := filepath.Join(destDir, "document-"+uuid.NewString()+dotted(ext))
	out, err := os.Create(dest)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	if _, err := io.Copy(out, obj.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	return &Result{Path: dest, Extension: ext}, nil
}

func (f *s3Fetcher) newClient(ctx context.Context) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(f.cfg.Region),
	}
	if f.cfg.SecretID != "" && f.cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.cfg.SecretID, f.cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if f.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(f.cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
