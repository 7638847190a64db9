package ports

import "context"

type HealthPort interface {
	// Check reports whether the named provider can serve requests; msg explains why not.
	Check(ctx context.Context, name string) (healthy bool, msg string)
}
