package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// KeySpec describes one settable config key
type KeySpec struct {
	Description string
	validate    func(string) error
}

// KeySpecs maps config keys to their descriptions and validators
var KeySpecs = map[string]KeySpec{
	"api_base": {
		Description: "Kaggle API root URL",
		validate:    validateURL,
	},
	"cli_path": {
		Description: "path or name of the kaggle CLI binary",
	},
	"default_output": {
		Description: "output format when --output is not given (auto, json, plain, rich)",
		validate:    oneOf("auto", "json", "plain", "rich"),
	},
	"download_dir": {
		Description: "default directory for pulls and downloads",
	},
	"page_size": {
		Description: "default page size for listings",
		validate:    validatePositiveInt,
	},
}

// Keys returns a sorted list of valid config keys
func Keys() []string {
	keys := make([]string, 0, len(KeySpecs))
	for k := range KeySpecs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks value against the rules for key. Empty values are allowed.
func Validate(key, value string) error {
	spec, ok := KeySpecs[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	if value == "" || spec.validate == nil {
		return nil
	}
	if err := spec.validate(value); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func validateURL(v string) error {
	u, err := url.Parse(v)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", v)
	}
	return nil
}

func validatePositiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%q is not a positive integer", v)
	}
	return nil
}

func oneOf(allowed ...string) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("%q must be one of %v", v, allowed)
	}
}
