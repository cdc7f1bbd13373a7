package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"call-summary-service/internal/service/storage"
)

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	})
	return NewWithClient(client)
}

func TestStore_GetNoSuchKey(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
	})

	_, err := s.Get(context.Background(), "bucket", "missing.json")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetBody(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bucket/a/b.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	body, err := s.Get(context.Background(), "bucket", "a/b.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body %q", body)
	}
}

func TestStore_ListBounded(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("max-keys") != "5" {
			t.Errorf("expected max-keys=5, got %q", q.Get("max-keys"))
		}
		if q.Get("prefix") != "calls/" {
			t.Errorf("expected prefix calls/, got %q", q.Get("prefix"))
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>bucket</Name><Prefix>calls/</Prefix><KeyCount>2</KeyCount><MaxKeys>5</MaxKeys><IsTruncated>false</IsTruncated>
<Contents><Key>calls/R1.opus</Key></Contents>
<Contents><Key>calls/R1.transcript.json</Key></Contents>
</ListBucketResult>`)
	})

	keys, err := s.List(context.Background(), "bucket", "calls/", 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"calls/R1.opus", "calls/R1.transcript.json"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("List = %v, want %v", keys, want)
	}
}

func TestStore_Put(t *testing.T) {
	var gotBody, gotType string
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})

	if err := s.Put(context.Background(), "out", "summary/x.json", []byte(`{"a":1}`), "application/json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.Contains(gotBody, `{"a":1}`) {
		t.Errorf("unexpected body %q", gotBody)
	}
	if gotType != "application/json" {
		t.Errorf("expected application/json, got %q", gotType)
	}
}

func TestObjectKeys(t *testing.T) {
	got := objectKeys([]string{"a"}, []types.Object{{Key: aws.String("b")}, {Key: nil}})
	want := []string{"a", "b", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("objectKeys = %v, want %v", got, want)
	}
}
