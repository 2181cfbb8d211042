// Package featureflags wraps Rollout flags used for ops controls: an Offline
// kill switch and the runtime log level.
package featureflags

import (
	"context"
	"fmt"
	"os"

	"github.com/rollout/rox-go/v5/core/model"
	"github.com/rollout/rox-go/v5/server"
)

// Flags holds the flag container registered with Rollout.
type Flags struct {
	// Offline blocks every non-health route while enabled.
	Offline model.Flag

	// LogLevel drives the leveled logger at runtime.
	LogLevel model.RoxString
}

var flags = &Flags{
	Offline:  server.NewRoxFlag(false),
	LogLevel: server.NewRoxString("info", []string{"debug", "info", "warn", "error"}),
}

var rox *server.Rox

// Init registers the flag container and connects to Rollout. The flags keep
// serving their defaults when the connection is never established, so a
// missing key is a warning upstream, not a failure.
func Init(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ROLLOUT_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("ROLLOUT_API_KEY not set, using flag defaults")
	}

	rox = server.NewRox()
	rox.Register("", flags)

	options := server.NewRoxOptions(server.RoxOptionsBuilder{})
	select {
	case <-rox.Setup(apiKey, options):
	case <-ctx.Done():
		return fmt.Errorf("feature flags setup: %w", ctx.Err())
	}

	return nil
}

// Values returns the registered flag container.
func Values() *Flags {
	return flags
}

// Shutdown flushes and disconnects the Rollout client.
func Shutdown() {
	if rox != nil {
		<-rox.Shutdown()
	}
}
