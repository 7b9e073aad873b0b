package config

import (
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/felixgeelhaar/sessionkit/internal/credentials"
	"github.com/felixgeelhaar/sessionkit/internal/log"
)

// Validate reports the first group of invalid settings.
func (c *Config) Validate() error {
	err := validation.Errors{
		"api": validation.ValidateStruct(&c.API,
			validation.Field(&c.API.URL, validation.Required, is.RequestURL, validation.By(httpURL)),
			validation.Field(&c.API.Timeout, validation.Min(0)),
			validation.Field(&c.API.RateLimit, validation.Min(0.0)),
			validation.Field(&c.API.RateBurst, validation.Min(0)),
		),
		"session": validation.ValidateStruct(&c.Session,
			validation.Field(&c.Session.OperationTimeout, validation.Min(0)),
		),
		"credentials": validation.ValidateStruct(&c.Credentials,
			validation.Field(&c.Credentials.Backend, validation.Required,
				validation.In(credentials.BackendFile, credentials.BackendRedis, credentials.BackendMemory)),
			validation.Field(&c.Credentials.Path,
				requiredWhen(c.Credentials.Backend == credentials.BackendFile)),
			validation.Field(&c.Credentials.RedisAddr,
				requiredWhen(c.Credentials.Backend == credentials.BackendRedis)),
		),
		"history": validation.ValidateStruct(&c.History,
			validation.Field(&c.History.Path, requiredWhen(c.History.Enabled)),
		),
		"logging": validation.ValidateStruct(&c.Logging,
			validation.Field(&c.Logging.Level, validation.By(logLevel)),
			validation.Field(&c.Logging.Format, validation.In("", "text", "json", "console")),
		),
		"telemetry": validation.ValidateStruct(&c.Telemetry,
			validation.Field(&c.Telemetry.Endpoint, requiredWhen(c.Telemetry.Enabled)),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func requiredWhen(cond bool) validation.Rule {
	if cond {
		return validation.Required
	}
	return validation.Skip
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http or https URL")
	}
	return nil
}

func logLevel(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := log.LookupLevel(s); !ok {
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}

// CredentialsOptions converts the credentials section for credentials.Open.
func (c *Config) CredentialsOptions() credentials.Options {
	return credentials.Options{
		Backend:       c.Credentials.Backend,
		Path:          c.Credentials.Path,
		RedisAddr:     c.Credentials.RedisAddr,
		RedisPassword: c.Credentials.RedisPassword,
		RedisDB:       c.Credentials.RedisDB,
		RedisKey:      c.Credentials.RedisKey,
		TTL:           c.Credentials.TTL,
	}
}
