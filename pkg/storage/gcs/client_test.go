package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticTokenSource(token string, calls *int) *tokenSource {
	return &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			*calls++
			return token, time.Now().Add(time.Hour), nil
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	calls := 0
	return &Client{
		httpClient:  srv.Client(),
		bucket:      "cartline-media",
		tokenSource: staticTokenSource("tok", &calls),
		apiBase:     srv.URL,
		publicBase:  "https://cdn.example.com",
	}, &calls
}

func TestUploadSendsMediaRequest(t *testing.T) {
	var gotPath, gotQueryName, gotUploadType, gotAuth, gotType, gotBody string
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQueryName = r.URL.Query().Get("name")
		gotUploadType = r.URL.Query().Get("uploadType")
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"users/profile/a b.png"}`))
	})

	u, err := client.Upload(context.Background(), "/users/profile/a b.png", "image/png", strings.NewReader("pngbytes"))
	require.NoError(t, err)

	assert.Equal(t, "/upload/storage/v1/b/cartline-media/o", gotPath)
	assert.Equal(t, "users/profile/a b.png", gotQueryName)
	assert.Equal(t, "media", gotUploadType)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "pngbytes", gotBody)
	assert.Equal(t, "https://cdn.example.com/cartline-media/users/profile/a%20b.png", u)

	_, err = client.Upload(context.Background(), "users/profile/second.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, *calls, "token should be cached between requests")
}

func TestUploadSurfacesAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden bucket", http.StatusForbidden)
	})
	_, err := client.Upload(context.Background(), "x.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden bucket")

	_, err = client.Upload(context.Background(), "", "image/png", strings.NewReader("x"))
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/b/cartline-media/o" || r.URL.Query().Get("maxResults") != "1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	require.NoError(t, client.Ping(context.Background()))

	var nilClient *Client
	assert.Error(t, nilClient.Ping(context.Background()))
}

func TestParsePrivateKeyFormats(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	parsed, err := parsePrivateKey(string(pkcs1))
	require.NoError(t, err)
	assert.True(t, key.Equal(parsed))

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pkcs8 := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	parsed, err = parsePrivateKey(string(pkcs8))
	require.NoError(t, err)
	assert.True(t, key.Equal(parsed))

	_, err = parsePrivateKey("garbage")
	assert.Error(t, err)
}

func TestServiceAccountTokenSourceRejectsBadCredentials(t *testing.T) {
	_, err := newServiceAccountTokenSource(http.DefaultClient, `{"client_email":""}`)
	assert.Error(t, err)
	_, err = newServiceAccountTokenSource(http.DefaultClient, `not json`)
	assert.Error(t, err)
}
