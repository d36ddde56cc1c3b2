package remind

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sandeepkv93/remindd/internal/delivery"
	"github.com/sandeepkv93/remindd/internal/model"
)

// Detector reports whether the environment can register background-fired
// triggers. Detection is re-entrant and mutates nothing; the Scheduler owns
// caching and refresh of the result.
type Detector interface {
	Detect(ctx context.Context) model.CapabilityStatus
}

// restrictedPlatforms lists platforms where a sandboxed process cannot
// register background triggers at all, regardless of permission.
var restrictedPlatforms = map[string]bool{
	"darwin": true,
	"ios":    true,
}

// MechanismDetector derives capability from the delivery mechanism itself:
// missing or unhealthy mechanism means unsupported, a restricted sandbox
// blocks scheduling outright, otherwise permission decides.
type MechanismDetector struct {
	Mechanism delivery.Mechanism
	// Sandboxed marks a restricted sandbox execution mode (set from
	// configuration or environment at startup).
	Sandboxed bool
	// Platform overrides runtime.GOOS, for tests.
	Platform string
}

func (d MechanismDetector) Detect(ctx context.Context) model.CapabilityStatus {
	platform := d.Platform
	if platform == "" {
		platform = runtime.GOOS
	}
	status := model.CapabilityStatus{
		Platform:  platform,
		Sandboxed: d.Sandboxed,
	}

	if d.Mechanism == nil {
		status.Message = "notification delivery is not available in this build"
		status.Recommendations = []string{
			"rebuild or reinstall with notification support enabled",
		}
		return status
	}
	if err := d.Mechanism.Healthy(ctx); err != nil {
		status.Message = fmt.Sprintf("notification delivery is unavailable: %v", err)
		status.Recommendations = []string{
			"check that the trigger store is present and writable",
			"restart the daemon and re-check the status",
		}
		return status
	}
	status.Supported = true

	if d.Sandboxed && restrictedPlatforms[platform] {
		status.SandboxBlocked = true
		status.Message = fmt.Sprintf("background reminders are blocked in sandboxed mode on %s", platform)
		status.Recommendations = []string{
			"run outside the restricted sandbox mode",
			"reminders will appear as in-app notices until then",
		}
		return status
	}

	granted, err := d.Mechanism.RequestPermission(ctx)
	if err != nil {
		status.Message = fmt.Sprintf("could not determine notification permission: %v", err)
		status.Recommendations = []string{
			"re-check the status once the trigger store is reachable",
		}
		return status
	}
	status.HasPermission = granted
	if !granted {
		status.Message = "notification permission has not been granted"
		status.Recommendations = []string{
			"grant permission (remindd grant) and refresh the status",
		}
		return status
	}

	status.Message = "reminders can be scheduled"
	return status
}
