package loaders

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// downloadS3 fetches an s3://bucket/key object to a temp file and
// returns its path together with a cleanup func. The temp file keeps
// the object's extension chain so that format and compression
// detection work on the local copy.
func downloadS3(ctx context.Context, rawURL string, opts S3Options) (string, func(), error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse S3 URL: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", nil, fmt.Errorf("invalid S3 URL %q: want s3://bucket/key", rawURL)
	}

	cfg := &aws.Config{
		S3ForcePathStyle: aws.Bool(true),
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
	}
	if opts.Region != "" {
		cfg.Region = aws.String(opts.Region)
	}
	if opts.AccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	downloader := s3manager.NewDownloader(sess)

	tempFile, err := os.CreateTemp("", "sheetdiff-*"+extensionChain(path.Base(key)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { os.Remove(tempFile.Name()) }

	_, err = downloader.DownloadWithContext(ctx, tempFile, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	closeErr := tempFile.Close()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	if closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp file: %w", closeErr)
	}

	return tempFile.Name(), cleanup, nil
}

// extensionChain returns everything from the first dot of name on,
// e.g. "orders.csv.gz" yields ".csv.gz".
func extensionChain(name string) string {
	if i := strings.Index(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
