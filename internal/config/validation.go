package config

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/minio/minio-go/v7/pkg/s3utils"
)

var validate = validator.New()

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	b := cfg.Bucket

	if b.URL == "" && b.Region == "" {
		return fmt.Errorf("bucket: one of url or region must be set")
	}
	if b.URL == "" && b.Name == "" {
		return fmt.Errorf("bucket: name is required when only region is set")
	}
	if b.Name != "" {
		if err := s3utils.CheckValidBucketName(b.Name); err != nil {
			return fmt.Errorf("bucket.name: %w", err)
		}
	}

	for i, pattern := range b.ExcludeFiles {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("bucket.exclude_files[%d]: invalid pattern %q", i, pattern)
		}
	}

	return nil
}

// formatValidationError reports the first failing field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
