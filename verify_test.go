package s3req_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/s3req/s3req"
	"github.com/s3req/s3req/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(region string) *s3req.Verifier {
	v := s3req.NewVerifier(region, keystore.NewMapStore(map[string]string{
		testCreds.AccessKey: testCreds.SecretKey,
	}))
	v.Now = func() time.Time { return testInstant }
	return v
}

// httpRequestFrom turns a SignedRequest into the http.Request a server
// would see.
func httpRequestFrom(t *testing.T, signed s3req.SignedRequest) *http.Request {
	t.Helper()

	var body *bytes.Reader
	if signed.Body != nil {
		body = bytes.NewReader(signed.Body)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(signed.Method, signed.URL, body)
	for _, h := range signed.Headers {
		if h.Name == "host" {
			req.Host = h.Value
			continue
		}
		req.Header.Set(h.Name, h.Value)
	}
	return req
}

func TestVerifier_RoundTrip(t *testing.T) {
	target := s3req.Target{Region: "us-west-1", Bucket: "cleverelephant-west-1", Key: "META.json"}

	tests := []struct {
		name    string
		payload s3req.Payload
	}{
		{name: "GET no body", payload: s3req.Payload{Method: "GET"}},
		{name: "PUT with body", payload: s3req.Payload{Method: "PUT", Body: []byte("this is a test"), MimeType: "text/plain"}},
		{name: "DELETE no body", payload: s3req.Payload{Method: "DELETE"}},
	}

	verifier := newTestVerifier("us-west-1")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed := s3req.Sign(testCreds, target, tt.payload, testInstant)
			req := httpRequestFrom(t, signed)

			assert.NoError(t, verifier.Verify(req))
		})
	}
}

func TestVerifier_Rejections(t *testing.T) {
	target := s3req.Target{Region: "us-west-1", Bucket: "cleverelephant-west-1", Key: "META.json"}
	signedGet := func() s3req.SignedRequest {
		return s3req.Sign(testCreds, target, s3req.Payload{Method: "GET"}, testInstant)
	}

	tests := []struct {
		name    string
		mutate  func(req *http.Request)
		region  string
		wantMsg string
	}{
		{
			name:    "missing authorization header",
			mutate:  func(req *http.Request) { req.Header.Del("Authorization") },
			wantMsg: "missing authorization header",
		},
		{
			name: "wrong algorithm",
			mutate: func(req *http.Request) {
				req.Header.Set("Authorization", "AWS4-HMAC-SHA1 Credential=x/y/z/s3/aws4_request, SignedHeaders=host, Signature=ab")
			},
			wantMsg: "invalid algorithm",
		},
		{
			name:    "missing x-amz-date",
			mutate:  func(req *http.Request) { req.Header.Del("X-Amz-Date") },
			wantMsg: "missing x-amz-date",
		},
		{
			name:    "tampered payload hash",
			mutate:  func(req *http.Request) { req.Header.Set("X-Amz-Content-Sha256", s3req.SHA256Hex([]byte("evil"))) },
			wantMsg: "signature mismatch",
		},
		{
			name:    "tampered path",
			mutate:  func(req *http.Request) { req.URL.Path = "/OTHER.json" },
			wantMsg: "signature mismatch",
		},
		{
			name:    "region mismatch",
			region:  "eu-central-1",
			mutate:  func(req *http.Request) {},
			wantMsg: "region mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region := tt.region
			if region == "" {
				region = "us-west-1"
			}
			verifier := newTestVerifier(region)

			req := httpRequestFrom(t, signedGet())
			tt.mutate(req)

			err := verifier.Verify(req)
			require.Error(t, err)
			assert.ErrorIs(t, err, s3req.ErrUnauthorized)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestVerifier_ClockSkew(t *testing.T) {
	target := s3req.Target{Region: "us-west-1", Bucket: "cleverelephant-west-1", Key: "META.json"}
	verifier := newTestVerifier("us-west-1")

	t.Run("within window", func(t *testing.T) {
		signed := s3req.Sign(testCreds, target, s3req.Payload{Method: "GET"}, testInstant.Add(-14*time.Minute))
		err := verifier.Verify(httpRequestFrom(t, signed))
		assert.NoError(t, err)
	})

	t.Run("too old", func(t *testing.T) {
		signed := s3req.Sign(testCreds, target, s3req.Payload{Method: "GET"}, testInstant.Add(-16*time.Minute))
		err := verifier.Verify(httpRequestFrom(t, signed))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "skewed")
	})

	t.Run("too far in future", func(t *testing.T) {
		signed := s3req.Sign(testCreds, target, s3req.Payload{Method: "GET"}, testInstant.Add(16*time.Minute))
		err := verifier.Verify(httpRequestFrom(t, signed))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "skewed")
	})
}

func TestVerifier_UnknownAccessKey(t *testing.T) {
	target := s3req.Target{Region: "us-west-1", Bucket: "cleverelephant-west-1", Key: "META.json"}
	verifier := newTestVerifier("us-west-1")

	otherCreds := s3req.Credentials{AccessKey: "AKIAUNKNOWN", SecretKey: "whatever"}
	signed := s3req.Sign(otherCreds, target, s3req.Payload{Method: "GET"}, testInstant)

	err := verifier.Verify(httpRequestFrom(t, signed))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid access key")
}
