package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ErrInvalidConfig matches every *InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

// InvalidConfigError lists the problems found per environment key.
type InvalidConfigError struct {
	Problems map[string][]string
}

func (e *InvalidConfigError) add(key, format string, args ...any) {
	if e.Problems == nil {
		e.Problems = make(map[string][]string)
	}
	e.Problems[key] = append(e.Problems[key], fmt.Sprintf(format, args...))
}

// Keys returns the offending keys in sorted order.
func (e *InvalidConfigError) Keys() []string {
	keys := make([]string, 0, len(e.Problems))
	for k := range e.Problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *InvalidConfigError) Error() string {
	var b strings.Builder
	b.WriteString("invalid config:")
	for _, k := range e.Keys() {
		for _, p := range e.Problems[k] {
			fmt.Fprintf(&b, " %s %s;", k, p)
		}
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (e *InvalidConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// MissingKey reports a single required key left empty.
func MissingKey(key string) error {
	e := &InvalidConfigError{}
	e.add(key, "is required")
	return e
}

// Validate checks what a run needs before any connection is made.
func Validate(cfg Config) error {
	errs := &InvalidConfigError{}
	required := func(key, value string) {
		if value == "" {
			errs.add(key, "is required")
		}
	}

	required("DB_DSN", cfg.DBDSN)
	required("GENESYS_CLOUD_CLIENT_ID", cfg.GenesysClientID)
	required("GENESYS_CLOUD_CLIENT_SECRET", cfg.GenesysClientSecret)
	required("GENESYS_QUEUE_ID", cfg.GenesysQueueID)
	required("NOTIFY_URL", cfg.NotifyURL)

	switch cfg.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		errs.add("DB_DRIVER", "must be postgres, mysql or sqlite, got %q", cfg.DBDriver)
	}

	if cfg.NotifyURL != "" {
		if u, err := url.Parse(cfg.NotifyURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs.add("NOTIFY_URL", "must be an absolute URL")
		}
	}

	if len(cfg.Recipients()) == 0 {
		errs.add("EMAILS", "needs at least one recipient")
	}

	if cfg.BatchSize <= 0 {
		errs.add("BATCH_SIZE", "must be positive")
	}
	if cfg.ResolveWorkers <= 0 {
		errs.add("RESOLVE_WORKERS", "must be positive")
	}
	if cfg.GenesysRateLimit < 0 {
		errs.add("GENESYS_RATE_LIMIT", "must not be negative")
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs.add("TIMEZONE", "is not a known location: %v", err)
	}

	if cfg.RedisAddr != "" && cfg.LockTTL <= 0 {
		errs.add("LOCK_TTL", "must be positive when REDIS_ADDR is set")
	}

	if len(errs.Problems) > 0 {
		return errs
	}
	return nil
}
