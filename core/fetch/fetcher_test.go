package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gaurav-prasanna/brochuregen/core"
)

func TestNormalizeURL(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare host", in: "example.com", want: "https://example.com"},
		{name: "https kept", in: "https://example.com/a", want: "https://example.com/a"},
		{name: "http kept", in: "http://example.com", want: "http://example.com"},
		{name: "scheme case-insensitive", in: "HTTPS://Example.com", want: "HTTPS://Example.com"},
		{name: "whitespace trimmed", in: "  example.com/x \n", want: "https://example.com/x"},
		{name: "other scheme gets prefix", in: "ftp.example.com", want: "https://ftp.example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeURL(tc.in); got != tc.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFetchSendsUserAgentAndDecodes(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><title>Acme</title></html>"))
	}))
	defer server.Close()

	result, err := New().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotUA != "CompanyBrochureGenerator/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
	if !strings.Contains(result.HTML, "<title>Acme</title>") {
		t.Errorf("HTML = %q", result.HTML)
	}
	if result.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want utf-8", result.Encoding)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New().Fetch(context.Background(), server.URL)
	var fetchErr *core.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *core.FetchError, got %T: %v", err, err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", fetchErr.StatusCode)
	}
	if !strings.Contains(fetchErr.Error(), "404") {
		t.Errorf("error text %q does not mention the status", fetchErr.Error())
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := New(WithTimeout(50 * time.Millisecond)).Fetch(context.Background(), server.URL)
	var fetchErr *core.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *core.FetchError, got %T: %v", err, err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a transport failure", fetchErr.StatusCode)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New().Fetch(context.Background(), url)
	var fetchErr *core.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *core.FetchError, got %T: %v", err, err)
	}
	if fetchErr.Unwrap() == nil {
		t.Error("expected the transport error to be wrapped")
	}
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name        string
		body        []byte
		contentType string
		want        string
		encoding    string
	}{
		{
			name:        "utf-8 header",
			body:        []byte("caf\xc3\xa9"),
			contentType: "text/html; charset=utf-8",
			want:        "café",
			encoding:    "utf-8",
		},
		{
			name:        "latin-1 header",
			body:        []byte("caf\xe9"),
			contentType: "text/html; charset=iso-8859-1",
			want:        "café",
			encoding:    "windows-1252",
		},
		{
			name:        "meta charset",
			body:        []byte(`<meta charset="windows-1252"><p>caf` + "\xe9"),
			contentType: "text/html",
			want:        `<meta charset="windows-1252"><p>café`,
			encoding:    "windows-1252",
		},
		{
			name:        "declared utf-8 but invalid bytes",
			body:        []byte("ok\xff\xfeok"),
			contentType: "text/html; charset=utf-8",
			encoding:    "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, enc := Decode(tc.body, tc.contentType)
			if tc.want != "" && got != tc.want {
				t.Errorf("Decode = %q, want %q", got, tc.want)
			}
			if tc.encoding != "" && enc != tc.encoding {
				t.Errorf("encoding = %q, want %q", enc, tc.encoding)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result is not valid UTF-8: %q", got)
			}
			if !strings.HasPrefix(got, string(tc.body[:2])) {
				t.Errorf("result %q lost the valid prefix", got)
			}
		})
	}
}

func TestDecodeReplacesInvalidBytes(t *testing.T) {
	got, _ := Decode([]byte("ok\xff\xfeok"), "text/html; charset=utf-8")
	if !strings.Contains(got, "\uFFFD") {
		t.Errorf("Decode = %q, want invalid bytes replaced with U+FFFD", got)
	}
	if !strings.HasPrefix(got, "ok") || !strings.HasSuffix(got, "ok") {
		t.Errorf("Decode = %q lost valid text", got)
	}
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	for _, f := range []*HTTPFetcher{
		New(WithHTTPClient(shared), WithTimeout(3*time.Second)),
		New(WithTimeout(3*time.Second), WithHTTPClient(shared)),
	} {
		if f.client == shared {
			t.Error("fetcher must not use the shared client when overriding its timeout")
		}
		if f.client.Timeout != 3*time.Second {
			t.Errorf("fetcher timeout = %v, want 3s", f.client.Timeout)
		}
	}
	if shared.Timeout != time.Minute {
		t.Errorf("shared client timeout changed to %v", shared.Timeout)
	}

	if f := New(WithHTTPClient(shared)); f.client != shared {
		t.Error("without WithTimeout the given client is used unchanged")
	}
}
