// Package clientcli provides the operations layer for the s3req command
// line tool.
//
// It wraps the s3req signing client with file-oriented operations (fetch,
// store, remove) and profile-based configuration for managing credentials
// for multiple stores.
//
// # Basic Usage
//
// Create a client and store a file:
//
//	cfg := &clientcli.Config{
//		Region:    "us-west-1",
//		Bucket:    "cleverelephant-west-1",
//		AccessKey: "your-access-key",
//		SecretKey: "your-secret-key",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Store(ctx, clientcli.StoreOptions{
//		LocalPath: "./testfile.txt",
//		Key:       "testfile.txt",
//	})
//
// # Profile Configuration
//
// Use profiles to manage multiple stores:
//
//	configFile, err := clientcli.LoadConfigFile("~/.s3req/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := clientcli.ConfigFromProfile(profile)
//	client, err := clientcli.New(cfg)
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatStore(os.Stdout, results)
package clientcli
