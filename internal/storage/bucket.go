package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrInvalidObjectName = errors.New("invalid object name")
	ErrInvalidSignature  = errors.New("invalid or expired signature")
)

// ObjectsPath is where signed object URLs are served. The object key travels
// in the signed query string.
const ObjectsPath = "/api/storage/objects"

// fileblob keeps attributes in "<key>.attrs" next to each object.
const attrsSuffix = ".attrs"

// Metadata describes a stored object.
type Metadata struct {
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Bucket is a directory-backed blob bucket with HMAC signed download URLs.
type Bucket struct {
	bucket *blob.Bucket
	signer *fileblob.URLSignerHMAC
}

func NewBucket(root string, secret []byte, baseURL string) (*Bucket, error) {
	if len(secret) == 0 {
		return nil, errors.New("storage signing secret is empty")
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + ObjectsPath)
	if err != nil {
		return nil, fmt.Errorf("parsing public base url: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating bucket dir: %w", err)
	}

	signer := fileblob.NewURLSignerHMAC(base, secret)
	b, err := fileblob.OpenBucket(root, &fileblob.Options{URLSigner: signer})
	if err != nil {
		return nil, fmt.Errorf("opening bucket: %w", err)
	}
	return &Bucket{bucket: b, signer: signer}, nil
}

func (b *Bucket) Close() error {
	return b.bucket.Close()
}

// validName rejects keys that are not already in clean slash form.
func validName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") || strings.HasSuffix(name, attrsSuffix) {
		return ErrInvalidObjectName
	}
	cleaned := path.Clean(name)
	if cleaned != name || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ErrInvalidObjectName
	}
	return nil
}

// Save writes r under name, replacing any existing object. An empty
// contentType is detected from the content.
func (b *Bucket) Save(ctx context.Context, name string, r io.Reader, contentType string) error {
	if err := validName(name); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := b.bucket.NewWriter(ctx, name, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("opening object %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		// cancelling before Close discards the partial object
		cancel()
		_ = w.Close()
		return fmt.Errorf("writing object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("committing object %s: %w", name, err)
	}
	return nil
}

// Open returns the object body and its metadata. Callers close the reader.
func (b *Bucket) Open(ctx context.Context, name string) (io.ReadCloser, Metadata, error) {
	if err := validName(name); err != nil {
		return nil, Metadata{}, err
	}

	rd, err := b.bucket.NewReader(ctx, name, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, Metadata{}, ErrObjectNotFound
		}
		return nil, Metadata{}, err
	}
	return rd, Metadata{ContentType: rd.ContentType(), Size: rd.Size(), ModTime: rd.ModTime()}, nil
}

// SignedURL returns a GET URL for name valid for ttl.
func (b *Bucket) SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return b.bucket.SignedURL(ctx, name, &blob.SignedURLOptions{Expiry: ttl, Method: http.MethodGet})
}

// Resolve checks a URL produced by SignedURL and returns the object name.
func (b *Bucket) Resolve(ctx context.Context, u *url.URL) (string, error) {
	if u.Query().Get("method") != http.MethodGet {
		return "", ErrInvalidSignature
	}
	name, err := b.signer.KeyFromURL(ctx, u)
	if err != nil {
		return "", ErrInvalidSignature
	}
	return name, nil
}
