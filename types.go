package s3req

import (
	"net/http"
	"net/url"
	"strings"
)

// Credentials holds an access key pair for signing.
// The secret key is consumed only as HMAC key material; it never appears
// in the signed request or in log output.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Target identifies an object on an S3-compatible store.
//
// With an empty Endpoint the request is addressed virtual-hosted style at
// "{bucket}.s3.{region}.amazonaws.com" over HTTPS. Endpoint overrides the
// scheme and host for S3-compatible servers (MinIO, a fakes3.Server, ...);
// Region is still used for the credential scope either way.
type Target struct {
	Region   string
	Bucket   string
	Key      string
	Endpoint string
}

// Host returns the host the request is signed for.
func (t Target) Host() string {
	if t.Endpoint != "" {
		if u, err := url.Parse(t.Endpoint); err == nil && u.Host != "" {
			return u.Host
		}
		return strings.TrimSuffix(t.Endpoint, "/")
	}
	return t.Bucket + ".s3." + t.Region + ".amazonaws.com"
}

// URI returns the canonical URI for the object. The key is used verbatim;
// the caller is responsible for any percent-encoding the key needs.
func (t Target) URI() string {
	return "/" + t.Key
}

// URL returns the full request URL for the object.
func (t Target) URL() string {
	if t.Endpoint != "" {
		return strings.TrimSuffix(t.Endpoint, "/") + t.URI()
	}
	return "https://" + t.Host() + t.URI()
}

// Payload describes the method and body of a request to be signed.
//
// A nil Body means the empty-payload signing path: the payload hash is the
// fixed SHA-256 of the empty string and content-type is not signed.
// MimeType defaults to "text/plain" and only matters when Body is set.
type Payload struct {
	Method   string
	Body     []byte
	MimeType string
}

// NormalizedMethod returns the uppercased method, defaulting to GET.
// Non-standard methods pass through unrestricted.
func (p Payload) NormalizedMethod() string {
	if p.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(p.Method)
}

// NormalizedMimeType returns the lowercased mime type, defaulting to
// DefaultMimeType.
func (p Payload) NormalizedMimeType() string {
	if p.MimeType == "" {
		return DefaultMimeType
	}
	return strings.ToLower(p.MimeType)
}

// Hash returns the hex-encoded SHA-256 of the body, or EmptyPayloadHash
// when no body is present.
func (p Payload) Hash() string {
	if p.Body == nil {
		return EmptyPayloadHash
	}
	return SHA256Hex(p.Body)
}

// Header is a single request header. SignedRequest carries headers as an
// ordered slice because emission order mirrors the canonical order they
// were signed in.
type Header struct {
	Name  string
	Value string
}

// SignedRequest is a fully assembled request ready for dispatch, along
// with the signing intermediates that produced it. It is constructed
// fresh per call and never reused; signatures are time-bound by
// server-side policy.
type SignedRequest struct {
	Method  string
	URL     string
	Host    string
	Headers []Header
	Body    []byte

	// Signing intermediates, exposed for debugging and exact-byte tests.
	CanonicalRequest string
	StringToSign     string
	CredentialScope  string
	SignedHeaders    string
	Signature        string
}

// Response is the raw result of dispatching a signed request. The client
// performs no interpretation: callers inspect StatusCode and Body
// themselves, including S3 XML error bodies.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// OK reports whether the response status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ETag returns the response ETag with surrounding quotes stripped.
func (r *Response) ETag() string {
	return strings.Trim(r.Headers.Get("ETag"), `"`)
}
