package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"newsroom/types"
)

// S3Config configures the audit-archive client. Values are optional
// and fall back to the standard AWS config/credential chain.
type S3Config struct {
	Region       string
	Profile      string
	UsePathStyle bool
	Bucket       string
	Prefix       string
}

// Archive stores raw sweep output and batch results to S3 for offline
// audit/replay. Archival is always best-effort: a failure here is
// logged by the caller and never fails a sweep or batch.
type Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchive builds an Archive using the default AWS configuration
// chain, with optional overrides from cfg. Returns (nil, nil) if no
// bucket is configured, so callers can treat archival as cleanly
// disabled.
func NewArchive(ctx context.Context, cfg S3Config) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	prefix := cfg.Prefix
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}

	return &Archive{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// ArchiveSweep stores the raw articles captured by one sweep of source.
func (a *Archive) ArchiveSweep(ctx context.Context, sourceID string, articles []types.Article) error {
	if a == nil {
		return nil
	}
	key := a.prefix + "sweeps/" + sourceID + "/" + time.Now().UTC().Format(time.RFC3339) + ".json"
	return a.putJSON(ctx, key, articles)
}

// ArchiveBatch stores a completed batch's ProcessingResult.
func (a *Archive) ArchiveBatch(ctx context.Context, result types.ProcessingResult) error {
	if a == nil {
		return nil
	}
	key := a.prefix + "batches/" + time.Now().UTC().Format(time.RFC3339) + ".json"
	return a.putJSON(ctx, key, result)
}

func (a *Archive) putJSON(ctx context.Context, key string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	uctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return a.put(uctx, key, bytes.NewReader(b))
}

func (a *Archive) put(ctx context.Context, key string, body io.Reader) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	return err
}
