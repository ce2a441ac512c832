package publish

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/resources/ec2"
)

// fakeS3 stores objects in memory.
type fakeS3 struct {
	objects map[string][]byte
	puts    []string
	headErr error
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.puts = append(f.puts, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func writeAssembly(t *testing.T, cidr string) string {
	t.Helper()
	app := assembly.NewApp(eksplatform.Environment{Account: "111111111111", Region: "us-east-1"})
	network := app.NewStack("NetworkingStack", "network")
	vpc := network.Add("Vpc", ec2.VPC{CidrBlock: cidr})
	network.Export("VpcId", vpc.Ref())

	asm, err := app.Synth()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, asm.Write(dir, assembly.FormatJSON))
	return dir
}

func TestPublish(t *testing.T) {
	dir := writeAssembly(t, "10.0.0.0/16")
	fake := newFakeS3()

	result, err := New(fake, "artifacts", "/platform/").Publish(context.Background(), dir)
	require.NoError(t, err)

	assert.False(t, result.Unchanged)
	assert.Len(t, result.Digest, 64)
	require.Len(t, result.Objects, 2)
	for _, obj := range result.Objects {
		assert.Equal(t, "platform/"+result.Digest+"/"+obj.File, obj.Key)
		assert.Contains(t, fake.objects, "artifacts/"+obj.Key)
		assert.Len(t, fake.objects["artifacts/"+obj.Key], obj.Size)
	}
	assert.Equal(t, "s3://artifacts/platform/"+result.Digest+"/manifest.json", result.ManifestURI)

	// manifest last
	require.Len(t, fake.puts, 2)
	assert.True(t, strings.HasSuffix(fake.puts[1], "/manifest.json"))
}

func TestPublish_Unchanged(t *testing.T) {
	dir := writeAssembly(t, "10.0.0.0/16")
	fake := newFakeS3()
	p := New(fake, "artifacts", "")

	first, err := p.Publish(context.Background(), dir)
	require.NoError(t, err)
	second, err := p.Publish(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, second.Unchanged)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Len(t, fake.puts, 2)
	assert.True(t, strings.HasPrefix(first.Objects[0].Key, first.Digest+"/"))
}

func TestPublish_DigestFollowsContent(t *testing.T) {
	fake := newFakeS3()
	p := New(fake, "artifacts", "")

	a, err := p.Publish(context.Background(), writeAssembly(t, "10.0.0.0/16"))
	require.NoError(t, err)
	b, err := p.Publish(context.Background(), writeAssembly(t, "10.1.0.0/16"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Digest, b.Digest)
	assert.False(t, b.Unchanged)
}

func TestPublish_Errors(t *testing.T) {
	dir := writeAssembly(t, "10.0.0.0/16")

	t.Run("no such bucket", func(t *testing.T) {
		fake := newFakeS3()
		fake.putErr = &types.NoSuchBucket{}
		_, err := New(fake, "missing", "").Publish(context.Background(), dir)
		assert.ErrorIs(t, err, ErrNoSuchBucket)
	})

	t.Run("access denied", func(t *testing.T) {
		fake := newFakeS3()
		fake.headErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
		_, err := New(fake, "locked", "").Publish(context.Background(), dir)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("other", func(t *testing.T) {
		fake := newFakeS3()
		fake.putErr = errors.New("connection reset")
		_, err := New(fake, "artifacts", "").Publish(context.Background(), dir)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrAccessDenied)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("not an assembly", func(t *testing.T) {
		_, err := New(newFakeS3(), "artifacts", "").Publish(context.Background(), t.TempDir())
		assert.Error(t, err)
	})
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, isNotFoundError(&types.NotFound{}))
	assert.True(t, isNotFoundError(&types.NoSuchKey{}))
	assert.True(t, isNotFoundError(&smithy.GenericAPIError{Code: "404"}))
	assert.False(t, isNotFoundError(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFoundError(errors.New("boom")))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("manifest.json"))
	assert.Equal(t, "application/yaml", contentType("NetworkingStack.template.yaml"))
	assert.Equal(t, "application/octet-stream", contentType("README"))
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(context.Background(), ClientOptions{
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		PathStyle: true,
		AccessKey: "test-key",
		SecretKey: "test-secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
