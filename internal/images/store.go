package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const prefix = "trucks/"

var (
	ErrDisabled           = errors.New("image storage is not configured")
	ErrUnsupportedType    = errors.New("only JPEG, PNG and WebP images are supported")
	ErrInvalidVIN         = errors.New("invalid VIN")
	ErrInvalidKey         = errors.New("invalid image key")
	vinPattern            = regexp.MustCompile(`^[A-Za-z0-9-]{1,32}$`)
	extensionsByMediaType = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
)

// s3API is the subset of the S3 client used by Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Image is a stored truck photo.
type Image struct {
	Key          string
	VIN          string
	URL          string
	Size         int64
	LastModified time.Time
}

// Store keeps truck images in an S3 bucket under trucks/{vin}/.
type Store struct {
	client    s3API
	bucket    string
	publicURL string
}

// Options configures an S3-backed Store.
type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL is the base URL browsers load images from. Defaults to the
	// path-style bucket URL on Endpoint.
	PublicURL string
}

// NewStore returns an S3-backed store. It does not contact S3.
func NewStore(opts Options) *Store {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(opts.Endpoint),
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	})
	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}
	return newStore(client, opts.Bucket, publicURL)
}

func newStore(client s3API, bucket, publicURL string) *Store {
	return &Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// NewDisabledStore returns a store whose operations all fail with ErrDisabled.
func NewDisabledStore() *Store {
	return &Store{}
}

func (s *Store) Enabled() bool {
	return s.client != nil
}

// URL returns the public URL of key.
func (s *Store) URL(key string) string {
	if !s.Enabled() {
		return ""
	}
	return s.publicURL + "/" + key
}

// Upload stores body as a new image of the truck with the given VIN.
func (s *Store) Upload(ctx context.Context, vin, filename, contentType string, body io.Reader) (*Image, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if !vinPattern.MatchString(vin) {
		return nil, ErrInvalidVIN
	}
	ext, ok := extensionsByMediaType[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	key := prefix + vin + "/" + uuid.New().String() + ext
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"original-filename": path.Base(filename)},
	})
	if err != nil {
		return nil, fmt.Errorf("put image %s: %w", key, err)
	}
	return &Image{Key: key, VIN: vin, URL: s.URL(key)}, nil
}

// List returns the images of one truck, newest first.
func (s *Store) List(ctx context.Context, vin string) ([]Image, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if !vinPattern.MatchString(vin) {
		return nil, ErrInvalidVIN
	}
	imgs, err := s.list(ctx, prefix+vin+"/")
	if err != nil {
		return nil, err
	}
	return imgs, nil
}

// ListAll returns every truck image grouped by VIN.
func (s *Store) ListAll(ctx context.Context) (map[string][]Image, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	imgs, err := s.list(ctx, prefix)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]Image)
	for _, img := range imgs {
		grouped[img.VIN] = append(grouped[img.VIN], img)
	}
	return grouped, nil
}

func (s *Store) list(ctx context.Context, keyPrefix string) ([]Image, error) {
	var imgs []Image
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list images under %s: %w", keyPrefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			vin, ok := vinFromKey(key)
			if !ok {
				continue
			}
			imgs = append(imgs, Image{
				Key:          key,
				VIN:          vin,
				URL:          s.URL(key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	sort.SliceStable(imgs, func(i, j int) bool {
		return imgs[i].LastModified.After(imgs[j].LastModified)
	})
	return imgs, nil
}

// Delete removes the image stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	if _, ok := vinFromKey(key); !ok {
		return ErrInvalidKey
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image %s: %w", key, err)
	}
	return nil
}

// vinFromKey extracts the VIN from trucks/{vin}/{file}.
func vinFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return "", false
	}
	vin, file, ok := strings.Cut(rest, "/")
	if !ok || file == "" || strings.Contains(file, "/") || !vinPattern.MatchString(vin) {
		return "", false
	}
	return vin, true
}
