package s3req

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	// SignatureAlgorithm is the SigV4 signing algorithm identifier.
	SignatureAlgorithm = "AWS4-HMAC-SHA256"

	// EmptyPayloadHash is the hex encoded SHA-256 of the empty string,
	// used as x-amz-content-sha256 for requests with no body.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// DateTimeFormat is the x-amz-date timestamp layout (YYYYMMDDTHHMMSSZ).
	DateTimeFormat = "20060102T150405Z"
	// DateFormat is the credential-scope date layout (YYYYMMDD).
	DateFormat = "20060102"

	// ServiceS3 is the only service this package signs for.
	ServiceS3 = "s3"

	// DefaultMimeType is the content type signed when none is given.
	DefaultMimeType = "text/plain"
)

// Sign builds a fully signed request for the target at the given instant.
//
// It is a pure function: the same inputs and instant always produce an
// identical canonical request, string to sign, and signature. Both the
// x-amz-date timestamp and the credential-scope date stamp derive from
// the single instant passed in, so a caller wanting reproducible output
// injects a fixed clock rather than wall time.
//
// Sign never fails. Empty or malformed inputs still produce a signed
// request; the server rejects it, and the rejection surfaces through the
// dispatched response, not here.
func Sign(creds Credentials, target Target, payload Payload, at time.Time) SignedRequest {
	t := at.UTC()
	amzDate := t.Format(DateTimeFormat)
	dateStamp := t.Format(DateFormat)

	method := payload.NormalizedMethod()
	payloadHash := payload.Hash()
	host := target.Host()

	// The signed header set is fixed. content-type sorts before host, so
	// prepending it when a body is present keeps the block alphabetical
	// without a generic sorted-map abstraction.
	var headers []Header
	if payload.Body != nil {
		headers = append(headers, Header{"content-type", payload.NormalizedMimeType()})
	}
	headers = append(headers,
		Header{"host", host},
		Header{"x-amz-content-sha256", payloadHash},
		Header{"x-amz-date", amzDate},
	)

	canonicalHeaders, signedHeaders := BuildCanonicalHeaders(headers)

	// Query-string signing is unsupported; the canonical query is always
	// empty.
	canonicalRequest := BuildCanonicalRequest(
		method,
		target.URI(),
		"",
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	)

	credentialScope := BuildCredentialScope(dateStamp, target.Region, ServiceS3)
	stringToSign := BuildStringToSign(amzDate, credentialScope, canonicalRequest)

	signingKey := DeriveSigningKey(creds.SecretKey, dateStamp, target.Region, ServiceS3)
	signature := hex.EncodeToString(HMACSHA256(signingKey, []byte(stringToSign)))

	authorization := BuildAuthorizationHeader(creds.AccessKey, credentialScope, signedHeaders, signature)

	return SignedRequest{
		Method:  method,
		URL:     target.URL(),
		Host:    host,
		Headers: append(headers, Header{"authorization", authorization}),
		Body:    payload.Body,

		CanonicalRequest: canonicalRequest,
		StringToSign:     stringToSign,
		CredentialScope:  credentialScope,
		SignedHeaders:    signedHeaders,
		Signature:        signature,
	}
}

// BuildCanonicalHeaders serializes headers into the canonical headers
// block and the semicolon-joined signed-headers list. Headers must
// already be lowercase and in canonical (alphabetical) order; each line
// is "name:value\n", so the block always ends with a newline.
func BuildCanonicalHeaders(headers []Header) (canonicalHeaders, signedHeaders string) {
	var block strings.Builder
	names := make([]string, len(headers))
	for i, h := range headers {
		block.WriteString(h.Name)
		block.WriteString(":")
		block.WriteString(strings.TrimSpace(h.Value))
		block.WriteString("\n")
		names[i] = h.Name
	}
	return block.String(), strings.Join(names, ";")
}

// BuildCanonicalRequest serializes the six-line canonical request:
// method, URI, query string, canonical headers, signed headers, payload
// hash. The canonical headers block carries its own trailing newline, so
// joining on "\n" yields exactly one blank line before the signed-headers
// list, as AWS documents. Any deviation produces a signature S3 rejects
// with a mismatch, not a format error.
func BuildCanonicalRequest(method, uri, query, canonicalHeaders, signedHeaders, payloadHash string) string {
	return strings.Join([]string{
		method,
		uri,
		query,
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")
}

// BuildCredentialScope builds the scope string narrowing a signature to a
// date, region, and service. Format: date/region/service/aws4_request.
func BuildCredentialScope(dateStamp, region, service string) string {
	return strings.Join([]string{dateStamp, region, service, "aws4_request"}, "/")
}

// BuildStringToSign builds the final signing input from the algorithm
// identifier, timestamp, credential scope, and the canonical request
// digest.
func BuildStringToSign(amzDate, credentialScope, canonicalRequest string) string {
	return strings.Join([]string{
		SignatureAlgorithm,
		amzDate,
		credentialScope,
		SHA256Hex([]byte(canonicalRequest)),
	}, "\n")
}

// DeriveSigningKey runs the four-stage SigV4 key derivation chain:
//
//	kDate    = HMAC("AWS4"+secret, dateStamp)
//	kRegion  = HMAC(kDate, region)
//	kService = HMAC(kRegion, service)
//	kSigning = HMAC(kService, "aws4_request")
//
// Each stage narrows the key's validity, so a leaked request signature
// cannot be replayed to derive signatures for other dates, regions, or
// services.
func DeriveSigningKey(secretKey, dateStamp, region, service string) []byte {
	kDate := HMACSHA256([]byte("AWS4"+secretKey), []byte(dateStamp))
	kRegion := HMACSHA256(kDate, []byte(region))
	kService := HMACSHA256(kRegion, []byte(service))
	return HMACSHA256(kService, []byte("aws4_request"))
}

// BuildAuthorizationHeader assembles the Authorization header value.
func BuildAuthorizationHeader(accessKey, credentialScope, signedHeaders, signature string) string {
	return SignatureAlgorithm +
		" Credential=" + accessKey + "/" + credentialScope +
		", SignedHeaders=" + signedHeaders +
		", Signature=" + signature
}

// HMACSHA256 computes HMAC-SHA256 of data with the given key.
func HMACSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// SHA256Hex returns the hex-encoded SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
