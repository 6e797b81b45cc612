package edseed

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RunConfig contains all parameters needed for one domain load.
type RunConfig struct {
	// Domain is the data domain being loaded (attendance, enrollment, ...)
	Domain string

	// Sources are the input paths. Every domain but the school directory
	// takes exactly one; the directory folds several in priority order,
	// later sources winning.
	Sources []string

	// BatchSize is the number of records per sink upsert
	BatchSize int

	// DryRun validates and previews records without touching the sink
	DryRun bool

	// Verbose enables detailed logging
	Verbose bool

	// Timeout bounds the whole run (0 = no limit)
	Timeout time.Duration

	// LogDir receives seed_<domain>.log
	LogDir string

	// Sink describes how to reach the relational store.
	// Ignored for dry runs.
	Sink SinkConfig
}

// Validate checks if the RunConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RunConfig) Validate() error {
	var errs []error

	if c.Domain == "" {
		errs = append(errs, fmt.Errorf("Domain is required: %w", ErrInvalidConfig))
	}

	if len(c.Sources) == 0 {
		errs = append(errs, fmt.Errorf("at least one source is required: %w", ErrInvalidConfig))
	}

	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if !c.DryRun {
		if err := c.Sink.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// SinkConfig holds the two process-level settings needed to reach the
// store (endpoint URL and privileged credential) plus the optional
// cloud authentication parameters.
type SinkConfig struct {
	// URL is the PostgreSQL connection string (URI or ADO.NET format)
	URL string

	// ServiceKey is the privileged credential. When set it replaces any
	// password embedded in URL.
	ServiceKey string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// AWSRegion is required for AuthMethodAWSIAM
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance), required for AuthMethodGoogleIAM
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Validate reports missing sink settings.
func (c *SinkConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, fmt.Errorf("database URL is required: %w", ErrInvalidConfig))
	}

	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}

	if c.AuthMethod == AuthMethodAWSIAM && c.AWSRegion == "" {
		errs = append(errs, fmt.Errorf("AWS IAM auth requires a region: %w", ErrInvalidConfig))
	}

	if c.AuthMethod == AuthMethodGoogleIAM && c.GoogleInstance == "" {
		errs = append(errs, fmt.Errorf("Google Cloud SQL IAM auth requires an instance name: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	AWSRegion      string
	GoogleInstance string

	// If all three are provided, Service Principal authentication is used.
	// Otherwise the DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password (service key)
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a configuration value to an AuthMethod.
// The empty string selects AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}
