// Package publish uploads a written cloud assembly to S3.
//
// Every file of the assembly lands under <prefix>/<digest>/, where digest is
// the SHA-256 of the assembly's file names and contents. Templates keep
// their relative names, so the uploaded manifest still resolves them.
package publish

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/go-logr/logr"

	"github.com/coderco/eks-platform/internal/assembly"
)

var (
	// ErrNoSuchBucket is returned when the target bucket does not exist.
	ErrNoSuchBucket = errors.New("bucket does not exist")
	// ErrAccessDenied is returned when the credentials may not write to the bucket.
	ErrAccessDenied = errors.New("access denied")
)

// S3API is the subset of the S3 client used by the publisher.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Object is one file of a published assembly.
type Object struct {
	File string `json:"file"`
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// Result describes a publish run.
type Result struct {
	Bucket string `json:"bucket"`
	Digest string `json:"digest"`
	// ManifestURI is the s3:// location of the uploaded manifest.
	ManifestURI string   `json:"manifestUri"`
	Objects     []Object `json:"objects"`
	// Unchanged is set when the assembly was already published.
	Unchanged bool `json:"unchanged"`
}

// Publisher uploads assemblies to one bucket.
type Publisher struct {
	client S3API
	bucket string
	prefix string
}

// New returns a publisher writing to bucket under prefix.
func New(client S3API, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Publish uploads the assembly in dir. Nothing is written when the
// manifest of an identical assembly is already present.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Result, error) {
	log := logr.FromContextOrDiscard(ctx)

	files, err := assemblyFiles(dir)
	if err != nil {
		return nil, err
	}
	digest := Digest(files)

	result := &Result{
		Bucket:      p.bucket,
		Digest:      digest,
		ManifestURI: fmt.Sprintf("s3://%s/%s", p.bucket, p.key(digest, assembly.ManifestFile)),
	}
	names := sortedNames(files)
	for _, name := range names {
		result.Objects = append(result.Objects, Object{File: name, Key: p.key(digest, name), Size: len(files[name])})
	}

	exists, err := p.exists(ctx, p.key(digest, assembly.ManifestFile))
	if err != nil {
		return nil, err
	}
	if exists {
		log.V(1).Info("assembly already published", "bucket", p.bucket, "digest", digest)
		result.Unchanged = true
		return result, nil
	}

	// the manifest goes last so a present manifest implies a complete upload
	for _, obj := range manifestLast(result.Objects) {
		log.V(1).Info("uploading", "bucket", p.bucket, "key", obj.Key, "size", obj.Size)
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(p.bucket),
			Key:           aws.String(obj.Key),
			Body:          bytes.NewReader(files[obj.File]),
			ContentLength: aws.Int64(int64(obj.Size)),
			ContentType:   aws.String(contentType(obj.File)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to put object %s in bucket %s: %w", obj.Key, p.bucket, classify(err))
		}
	}
	log.Info("published assembly", "uri", result.ManifestURI)
	return result, nil
}

func (p *Publisher) key(digest, name string) string {
	if p.prefix == "" {
		return path.Join(digest, name)
	}
	return path.Join(p.prefix, digest, name)
}

func (p *Publisher) exists(ctx context.Context, key string) (bool, error) {
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFoundError(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check object %s in bucket %s: %w", key, p.bucket, classify(err))
}

// assemblyFiles reads the manifest and the templates it lists.
func assemblyFiles(dir string) (map[string][]byte, error) {
	manifest, _, err := assembly.Read(dir)
	if err != nil {
		return nil, err
	}

	names := []string{assembly.ManifestFile}
	for _, artifact := range manifest.Artifacts {
		names = append(names, artifact.TemplateFile)
	}

	files := make(map[string][]byte, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		files[name] = data
	}
	return files, nil
}

// Digest returns the hex SHA-256 over the sorted file names and contents.
func Digest(files map[string][]byte) string {
	h := sha256.New()
	for _, name := range sortedNames(files) {
		fmt.Fprintf(h, "%s\x00%d\x00", name, len(files[name]))
		h.Write(files[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func manifestLast(objects []Object) []Object {
	out := make([]Object, 0, len(objects))
	var manifest *Object
	for i := range objects {
		if objects[i].File == assembly.ManifestFile {
			manifest = &objects[i]
			continue
		}
		out = append(out, objects[i])
	}
	if manifest != nil {
		out = append(out, *manifest)
	}
	return out
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	return "application/octet-stream"
}

// classify maps bucket and permission failures to the package's sentinel
// errors, keeping the original error in the chain.
func classify(err error) error {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %w", ErrNoSuchBucket, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return fmt.Errorf("%w: %w", ErrNoSuchBucket, err)
		case "AccessDenied", "Forbidden", "403":
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		}
	}
	return err
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	// S3-compatible stores may not return the SDK error types
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey" || code == "404"
	}
	return false
}
