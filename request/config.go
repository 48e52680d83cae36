// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of the environment variables read by
// LoadHTTPConfig, e.g. CLASSKIT_HTTP_TIMEOUT.
const EnvPrefix = `CLASSKIT_HTTP`

// HTTPConfig models optional configuration, for NewHTTPClient.
type HTTPConfig struct {
	// HostRates limits the exchanges per host, within sliding windows, e.g.
	// "1s:5,1m:100" from the environment. Longer windows must allow more
	// events, at a lower average rate, than shorter ones.
	// **Defaults to unlimited.**
	HostRates map[time.Duration]int `envconfig:"HOST_RATES"`

	// UserAgent is the default User-Agent header.
	UserAgent string `envconfig:"USER_AGENT" default:"classkit"`

	// Timeout bounds each exchange, including retries, if positive.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`

	// RetryMax is the maximum number of retries, of connection errors and
	// server errors. Retries are transparent to the Request.
	// **Defaults to 0, no retries.**
	RetryMax int `envconfig:"RETRY_MAX" default:"0"`

	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	RetryWaitMin time.Duration `envconfig:"RETRY_WAIT_MIN" default:"1s"`
	RetryWaitMax time.Duration `envconfig:"RETRY_WAIT_MAX" default:"30s"`

	// Rate is the global rate limit, in exchanges per second, if positive.
	// **Defaults to 0, unlimited.**
	Rate float64 `envconfig:"RATE" default:"0"`

	// Burst is the global rate limit burst, used if Rate is positive.
	Burst int `envconfig:"BURST" default:"1"`
}

// LoadHTTPConfig loads HTTPConfig from the environment, see EnvPrefix.
func LoadHTTPConfig() (*HTTPConfig, error) {
	var cfg HTTPConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("request: failed to load http config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for values NewHTTPClient would reject.
func (x *HTTPConfig) Validate() error {
	if x.RetryMax < 0 {
		return errors.New(`request: negative retry max`)
	}
	if x.Rate > 0 && x.Burst <= 0 {
		return errors.New(`request: rate limit requires a positive burst`)
	}
	return validateHostRates(x.HostRates)
}

func validateHostRates(rates map[time.Duration]int) error {
	windows := make([]time.Duration, 0, len(rates))
	for d, n := range rates {
		if d <= 0 || n <= 0 {
			return fmt.Errorf("request: invalid host rate: %d per %s", n, d)
		}
		windows = append(windows, d)
	}
	slices.Sort(windows)
	for i := 1; i < len(windows); i++ {
		shorter, longer := windows[i-1], windows[i]
		if rates[shorter] >= rates[longer] ||
			float64(rates[longer])/float64(longer) >= float64(rates[shorter])/float64(shorter) {
			return fmt.Errorf("request: host rate %d per %s is redundant with %d per %s", rates[longer], longer, rates[shorter], shorter)
		}
	}
	return nil
}
