package model

// CapabilityStatus is a snapshot of the host's current ability to register
// background-fired triggers. It is computed lazily on first use, cached,
// and only replaced by an explicit refresh; an in-flight scheduling pass
// always reads the snapshot taken at its start.
type CapabilityStatus struct {
	// Supported reports whether the delivery mechanism is present and
	// healthy at all.
	Supported bool
	// HasPermission reports whether the user granted notification
	// permission.
	HasPermission bool
	// Sandboxed reports whether the process runs in a restricted sandbox
	// execution mode.
	Sandboxed bool
	// SandboxBlocked is set when the sandbox on this platform disallows
	// background triggers regardless of permission.
	SandboxBlocked bool
	// Platform is the host platform tag (GOOS unless overridden).
	Platform string
	// Message is a human-readable summary of the status.
	Message string
	// Recommendations are actionable remediation steps shown to the user
	// when scheduling is unavailable.
	Recommendations []string
}

func (c CapabilityStatus) CanSchedule() bool {
	return c.Supported && c.HasPermission && !c.SandboxBlocked
}
