package markup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/ripple/internal/errors"
)

// MaxSize bounds the size of loaded markup.
const MaxSize = 16 << 20

// ObjectGetter is the subset of the S3 client used by Loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads markup from files, http(s) URLs and S3 objects.
type Loader struct {
	// HTTPClient is used for http(s) sources.
	// Default: http.DefaultClient
	HTTPClient *http.Client

	// S3 is used for s3:// sources. When nil a client is built from the
	// AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
	// AWS_SESSION_TOKEN environment variables on first use.
	S3 ObjectGetter
}

// NewLoader creates a Loader with default clients.
func NewLoader() *Loader {
	return &Loader{HTTPClient: http.DefaultClient}
}

// Load returns the markup found at source.
func (l *Loader) Load(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		path := source
		if err == nil && u.Scheme == "file" {
			path = u.Path
		}
		return l.loadFile(path)
	}

	switch u.Scheme {
	case "http", "https":
		return l.loadHTTP(ctx, u)
	case "s3":
		return l.loadS3(ctx, u)
	default:
		return nil, errors.New("E012").WithDetail("unsupported scheme %q", u.Scheme)
	}
}

func (l *Loader) loadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("E012").WithDetail("%s", path).Wrap(err)
	}
	defer f.Close()
	return readLimited(path, f)
}

func (l *Loader) loadHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.New("E012").WithDetail("%s", u).Wrap(err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.New("E012").WithDetail("%s", u).Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("E012").WithDetail("%s: %s", u, resp.Status)
	}
	return readLimited(u.String(), resp.Body)
}

func (l *Loader) loadS3(ctx context.Context, u *url.URL) ([]byte, error) {
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, errors.New("E012").WithDetail("want s3://bucket/key, got %q", u)
	}
	if l.S3 == nil {
		l.S3 = newS3FromEnv()
	}

	out, err := l.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("E012").WithDetail("%s", u).Wrap(err)
	}
	defer out.Body.Close()
	return readLimited(u.String(), out.Body)
}

func newS3FromEnv() *s3.Client {
	creds := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(creds),
	})
}

func readLimited(name string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, errors.New("E012").WithDetail("%s", name).Wrap(err)
	}
	if len(data) > MaxSize {
		return nil, errors.New("E012").WithDetail("%s is larger than %d bytes", name, MaxSize)
	}
	return data, nil
}
