package markup

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/ripple/internal/errors"
)

type fakeS3 struct {
	objects map[string]string
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader()

	for _, source := range []string{path, "file://" + path} {
		data, err := l.Load(context.Background(), source)
		if err != nil {
			t.Fatalf("Load(%q): %v", source, err)
		}
		if string(data) != "<p>hi</p>" {
			t.Errorf("Load(%q) = %q", source, data)
		}
	}

	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	if errors.Code(err) != "E012" {
		t.Errorf("Load(missing) = %v, want E012", err)
	}
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "<main>served</main>")
	}))
	defer srv.Close()

	l := &Loader{HTTPClient: srv.Client()}
	data, err := l.Load(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != "<main>served</main>" {
		t.Errorf("Load = %q", data)
	}

	_, err = l.Load(context.Background(), srv.URL+"/missing")
	if errors.Code(err) != "E012" {
		t.Errorf("Load(404) = %v, want E012", err)
	}
}

func TestLoadS3(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"site/pages/index.html": "<div>s3</div>"}}
	l := &Loader{S3: fake}

	data, err := l.Load(context.Background(), "s3://site/pages/index.html")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != "<div>s3</div>" {
		t.Errorf("Load = %q", data)
	}
	if len(fake.calls) != 1 || fake.calls[0] != "site/pages/index.html" {
		t.Errorf("calls = %v", fake.calls)
	}

	for _, source := range []string{"s3://site/absent", "s3://site", "s3:///key"} {
		if _, err := l.Load(context.Background(), source); errors.Code(err) != "E012" {
			t.Errorf("Load(%q) = %v, want E012", source, err)
		}
	}
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "ftp://host/page")
	if errors.Code(err) != "E012" {
		t.Errorf("Load = %v, want E012", err)
	}
}
