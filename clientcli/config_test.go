package clientcli_test

import (
	"path/filepath"
	"testing"

	"github.com/s3req/s3req/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfigFile() *clientcli.ConfigFile {
	return &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "dev", Region: "us-west-1", Bucket: "dev-bucket", Endpoint: "http://localhost:9000", AccessKey: "dev-access", SecretKey: "dev-secret"},
			{Name: "prod", Region: "eu-central-1", Bucket: "prod-bucket", AccessKey: "prod-access", SecretKey: "prod-secret", Default: true},
		},
	}
}

func TestConfigFile_GetProfile(t *testing.T) {
	cfg := sampleConfigFile()

	t.Run("by name", func(t *testing.T) {
		p, err := cfg.GetProfile("dev")
		require.NoError(t, err)
		assert.Equal(t, "dev-bucket", p.Bucket)
	})

	t.Run("empty name returns default", func(t *testing.T) {
		p, err := cfg.GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, "prod", p.Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := cfg.GetProfile("staging")
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("no profiles", func(t *testing.T) {
		empty := &clientcli.ConfigFile{}
		_, err := empty.GetProfile("dev")
		assert.ErrorIs(t, err, clientcli.ErrNoProfiles)
	})
}

func TestConfigFile_GetDefaultProfile(t *testing.T) {
	t.Run("marked default", func(t *testing.T) {
		p, err := sampleConfigFile().GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "prod", p.Name)
	})

	t.Run("falls back to first", func(t *testing.T) {
		cfg := sampleConfigFile()
		cfg.Profiles[1].Default = false
		p, err := cfg.GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "dev", p.Name)
	})
}

func TestConfigFile_AddUpdateRemove(t *testing.T) {
	cfg := sampleConfigFile()

	err := cfg.AddProfile(clientcli.Profile{Name: "dev"})
	assert.ErrorIs(t, err, clientcli.ErrProfileExists)

	require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "staging", Region: "us-east-1", Bucket: "staging-bucket"}))
	assert.Equal(t, []string{"dev", "prod", "staging"}, cfg.ProfileNames())

	require.NoError(t, cfg.UpdateProfile(clientcli.Profile{Name: "staging", Region: "us-east-2", Bucket: "staging-bucket"}))
	p, err := cfg.GetProfile("staging")
	require.NoError(t, err)
	assert.Equal(t, "us-east-2", p.Region)

	err = cfg.UpdateProfile(clientcli.Profile{Name: "missing"})
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)

	require.NoError(t, cfg.RemoveProfile("staging"))
	assert.ErrorIs(t, cfg.RemoveProfile("staging"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SetDefault(t *testing.T) {
	cfg := sampleConfigFile()

	require.NoError(t, cfg.SetDefault("dev"))
	assert.True(t, cfg.Profiles[0].Default)
	assert.False(t, cfg.Profiles[1].Default)

	assert.ErrorIs(t, cfg.SetDefault("missing"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := sampleConfigFile()

	require.NoError(t, cfg.Save(path))

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Profiles, loaded.Profiles)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     clientcli.Config
		wantErr error
	}{
		{"valid", clientcli.Config{Region: "us-west-1", Bucket: "b"}, nil},
		{"missing region", clientcli.Config{Bucket: "b"}, clientcli.ErrRegionRequired},
		{"missing bucket", clientcli.Config{Region: "us-west-1"}, clientcli.ErrBucketRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("S3REQ_REGION", "ap-south-1")
	t.Setenv("S3REQ_BUCKET", "env-bucket")
	t.Setenv("S3REQ_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3REQ_ACCESS_KEY", "env-access")
	t.Setenv("S3REQ_SECRET_KEY", "env-secret")

	cfg := clientcli.ConfigFromEnv()
	assert.Equal(t, "ap-south-1", cfg.Region)
	assert.Equal(t, "env-bucket", cfg.Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.Endpoint)
	assert.Equal(t, "env-access", cfg.AccessKey)
	assert.Equal(t, "env-secret", cfg.SecretKey)
}

func TestMergeConfig(t *testing.T) {
	base := &clientcli.Config{Region: "us-west-1", Bucket: "base-bucket", AccessKey: "base-access", SecretKey: "base-secret"}
	override := &clientcli.Config{Bucket: "override-bucket", Endpoint: "http://localhost:9000"}

	merged := clientcli.MergeConfig(base, nil, override)
	assert.Equal(t, "us-west-1", merged.Region)
	assert.Equal(t, "override-bucket", merged.Bucket)
	assert.Equal(t, "http://localhost:9000", merged.Endpoint)
	assert.Equal(t, "base-access", merged.AccessKey)
	assert.Equal(t, "base-secret", merged.SecretKey)
}

func TestConfigFromProfile(t *testing.T) {
	t.Run("nil profile", func(t *testing.T) {
		cfg := clientcli.ConfigFromProfile(nil)
		assert.Equal(t, &clientcli.Config{}, cfg)
	})

	t.Run("copies fields", func(t *testing.T) {
		p := &clientcli.Profile{Name: "dev", Region: "us-west-1", Bucket: "b", Endpoint: "http://x", AccessKey: "a", SecretKey: "s"}
		cfg := clientcli.ConfigFromProfile(p)
		assert.Equal(t, "us-west-1", cfg.Region)
		assert.Equal(t, "b", cfg.Bucket)
		assert.Equal(t, "http://x", cfg.Endpoint)
		assert.Equal(t, "a", cfg.AccessKey)
		assert.Equal(t, "s", cfg.SecretKey)
	})
}
