// Package fakes3 provides a local S3-compatible object server for
// development and end-to-end testing of signed requests.
//
// The server speaks the minimal S3 wire surface the s3req client
// produces: GET, PUT, and DELETE on object keys, SHA-256 hex ETags, and
// XML <Error> bodies. Authentication uses header-based AWS Signature V4
// verification via s3req.Verifier; read and write access can be
// independently public or authenticated.
//
// # Usage
//
//	store, err := fakes3.NewStore(root)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	verifier := s3req.NewVerifier("us-east-1", keystore.NewMapStore(keys))
//	handler := fakes3.NewHandler(&fakes3.Config{
//	    ReadVerifier:  verifier, // nil for public read
//	    WriteVerifier: verifier, // nil for public write
//	}, store)
//	http.ListenAndServe(":5708", handler.Router())
//
// The object store is a sandboxed directory (*os.Root): writes are
// atomic via temp file and rename, and path traversal is rejected both
// by key validation and by the root itself.
package fakes3
