package objstore

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds the connection settings of an S3-compatible store
type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
}

// Validate checks that every field is set and the endpoint is an absolute URL
func (c Config) Validate() error {
	missing := []string{}
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.Region == "" {
		missing = append(missing, "region")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if c.AccessKeyID == "" {
		missing = append(missing, "accessKeyId")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "secretAccessKey")
	}
	if len(missing) != 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: parse endpoint: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint %q must use http or https", ErrInvalidConfig, c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: endpoint %q has no host", ErrInvalidConfig, c.Endpoint)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%w: endpoint %q must not carry a query", ErrInvalidConfig, c.Endpoint)
	}
	if strings.Contains(c.Bucket, "/") {
		return fmt.Errorf("%w: bucket %q must not contain '/'", ErrInvalidConfig, c.Bucket)
	}
	return nil
}
