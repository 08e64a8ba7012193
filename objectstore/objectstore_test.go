package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

func TestAssetKey(t *testing.T) {
	tests := []struct {
		image string
		key   string
		ok    bool
	}{
		{image: "avatars/u123.png?v=2", key: "avatars/u123.png", ok: true},
		{image: "avatars/u123.png", key: "avatars/u123.png", ok: true},
		{image: "https://cdn.example.com/x.png", ok: false},
		{image: "http://cdn.example.com/x.png?v=1", ok: false},
		{image: "", ok: false},
		{image: "?v=2", ok: false},
	}
	for _, tt := range tests {
		key, ok := AssetKey(tt.image)
		if key != tt.key || ok != tt.ok {
			t.Errorf("AssetKey(%q) = %q, %v; want %q, %v", tt.image, key, ok, tt.key, tt.ok)
		}
	}
}

func TestDeleteUserImageStripsQuery(t *testing.T) {
	store := &MemoryStore{}

	issued, err := DeleteUserImage(context.Background(), store, "avatars/u123.png?v=2")
	if err != nil || !issued {
		t.Fatalf("DeleteUserImage = %v, %v", issued, err)
	}
	got := store.Deleted()
	if len(got) != 1 || got[0] != "avatars/u123.png" {
		t.Fatalf("expected exactly one delete of avatars/u123.png, got %v", got)
	}
}

func TestDeleteUserImageSkipsExternalAndEmpty(t *testing.T) {
	store := &MemoryStore{}

	for _, image := range []string{"https://cdn.example.com/x.png", ""} {
		issued, err := DeleteUserImage(context.Background(), store, image)
		if err != nil || issued {
			t.Fatalf("image %q: DeleteUserImage = %v, %v", image, issued, err)
		}
	}
	if n := len(store.Deleted()); n != 0 {
		t.Fatalf("expected zero deletes, got %d", n)
	}
}

func TestDeleteUserImagePropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	store := &MemoryStore{FailWith: boom}

	issued, err := DeleteUserImage(context.Background(), store, "avatars/a.png")
	if !issued || !errors.Is(err, boom) {
		t.Fatalf("expected issued delete with error, got %v, %v", issued, err)
	}
}

type fakeS3 struct {
	s3iface.S3API
	inputs []*s3.DeleteObjectInput
	err    error
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreDelete(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3StoreFromClient(fake, "avatars-bucket")

	if err := store.Delete(context.Background(), "avatars/u1.png"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(fake.inputs) != 1 {
		t.Fatalf("expected one call, got %d", len(fake.inputs))
	}
	in := fake.inputs[0]
	if aws.StringValue(in.Bucket) != "avatars-bucket" || aws.StringValue(in.Key) != "avatars/u1.png" {
		t.Fatalf("unexpected input %+v", in)
	}
}

func TestS3StoreDeleteMissingIsNotError(t *testing.T) {
	fake := &fakeS3{err: awserr.New(s3.ErrCodeNoSuchKey, "gone", nil)}
	store := NewS3StoreFromClient(fake, "b")

	if err := store.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("missing object must not error: %v", err)
	}
}

func TestS3StoreDeleteWrapsFailures(t *testing.T) {
	fake := &fakeS3{err: awserr.New("InternalError", "oops", nil)}
	store := NewS3StoreFromClient(fake, "b")

	if err := store.Delete(context.Background(), "k"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	if _, err := NewS3Store(S3Config{}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
