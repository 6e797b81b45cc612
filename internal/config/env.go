package config

import (
	"fmt"

	"github.com/vvka-141/edseed/pkg/edseed"
)

// Environment variable names read by SinkFromEnv.
const (
	EnvDatabaseURL       = "EDSEED_DATABASE_URL"
	EnvDatabaseURLCompat = "DATABASE_URL"
	EnvServiceKey        = "EDSEED_SERVICE_KEY"
	EnvServiceKeyCompat  = "PGPASSWORD"
	EnvAuth              = "EDSEED_AUTH"
	EnvAWSRegion         = "AWS_REGION"
	EnvGoogleInstance    = "EDSEED_GOOGLE_INSTANCE"
	EnvAzureTenantID     = "AZURE_TENANT_ID"
	EnvAzureClientID     = "AZURE_CLIENT_ID"
	EnvAzureClientSecret = "AZURE_CLIENT_SECRET"
)

// SinkFromEnv builds the sink settings from the environment, falling back
// to the file's connection section. getenv is normally os.Getenv.
func SinkFromEnv(conn Connection, getenv func(string) string) (edseed.SinkConfig, error) {
	first := func(vals ...string) string {
		for _, v := range vals {
			if v != "" {
				return v
			}
		}
		return ""
	}

	authName := first(getenv(EnvAuth), conn.AuthMethod)
	method, err := edseed.ParseAuthMethod(authName)
	if err != nil {
		return edseed.SinkConfig{}, fmt.Errorf("%s: %w", EnvAuth, err)
	}

	return edseed.SinkConfig{
		URL:               first(getenv(EnvDatabaseURL), getenv(EnvDatabaseURLCompat)),
		ServiceKey:        first(getenv(EnvServiceKey), getenv(EnvServiceKeyCompat)),
		AuthMethod:        method,
		AWSRegion:         first(getenv(EnvAWSRegion), conn.AWSRegion),
		GoogleInstance:    first(getenv(EnvGoogleInstance), conn.GoogleInstance),
		AzureTenantID:     first(getenv(EnvAzureTenantID), conn.AzureTenantID),
		AzureClientID:     first(getenv(EnvAzureClientID), conn.AzureClientID),
		AzureClientSecret: getenv(EnvAzureClientSecret),
	}, nil
}
