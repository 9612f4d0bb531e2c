package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type apiError struct {
	code string
}

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(m.types[*in.Key]),
	}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	m.types[*in.Key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func fileStores(t *testing.T) (map[string]FileStore, *mockS3) {
	t.Helper()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mock := newMockS3()
	return map[string]FileStore{
		"local": local,
		"s3":    NewS3(mock, "bucket", "clips"),
	}, mock
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	stores, _ := fileStores(t)
	for name, fs := range stores {
		t.Run(name, func(t *testing.T) {
			if _, err := fs.Get(ctx, "tts/ab/abcd.mp3"); !errors.Is(err, ErrNotExist) {
				t.Fatalf("Get missing = %v, want ErrNotExist", err)
			}
			obj := &Object{Data: []byte("ID3..."), ContentType: "audio/mpeg"}
			if err := fs.Put(ctx, "tts/ab/abcd.mp3", obj); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := fs.Get(ctx, "tts/ab/abcd.mp3")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !bytes.Equal(got.Data, obj.Data) || got.ContentType != "audio/mpeg" {
				t.Errorf("Get = %q (%s)", got.Data, got.ContentType)
			}
			if err := fs.Delete(ctx, "tts/ab/abcd.mp3"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := fs.Delete(ctx, "tts/ab/abcd.mp3"); err != nil {
				t.Fatalf("Delete missing: %v", err)
			}
			if _, err := fs.Get(ctx, "tts/ab/abcd.mp3"); !errors.Is(err, ErrNotExist) {
				t.Errorf("Get after delete = %v", err)
			}
		})
	}
}

func TestS3Store_Prefix(t *testing.T) {
	mock := newMockS3()
	s := NewS3(mock, "bucket", "clips")
	if err := s.Put(context.Background(), "a.mp3", &Object{Data: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	if _, ok := mock.objects["clips/a.mp3"]; !ok {
		t.Errorf("objects = %v, want key clips/a.mp3", mock.objects)
	}
	if mock.types["clips/a.mp3"] != "audio/mpeg" {
		t.Errorf("content type = %q, want guessed audio/mpeg", mock.types["clips/a.mp3"])
	}
}

func TestS3Store_PutError(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("access denied")
	s := NewS3(mock, "bucket", "")
	if err := s.Put(context.Background(), "a.mp3", &Object{}); err == nil {
		t.Error("expected error")
	}
}

func TestNewS3FromConfig(t *testing.T) {
	if _, err := NewS3FromConfig(S3Config{}); err == nil {
		t.Error("expected error without bucket")
	}
	s, err := NewS3FromConfig(S3Config{
		Bucket:          "clips",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.bucket != "clips" {
		t.Errorf("bucket = %q", s.bucket)
	}
}

func TestLocal_RejectsEscapingNames(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Put(context.Background(), "../outside.mp3", &Object{Data: []byte("x")}); err == nil {
		t.Error("expected error for name escaping root")
	}
}
