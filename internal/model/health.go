package model

// HealthState is the coarse three-tier condition of a structure, plus the
// terminal destroyed state
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"   // above the warning threshold
	HealthStateWarning   HealthState = "warning"   // at or below the warning threshold
	HealthStateCritical  HealthState = "critical"  // at or below the critical threshold
	HealthStateDestroyed HealthState = "destroyed" // health reached zero, terminal
)

// NotificationLevel is the severity of an owner-facing structure alert
type NotificationLevel string

const (
	NotificationWarning  NotificationLevel = "warning"
	NotificationCritical NotificationLevel = "critical"
)

// HealthStateOf maps a health value onto the state machine using the global
// (not per-material) thresholds. Zero is terminal regardless of thresholds.
func HealthStateOf(health, warningThreshold, criticalThreshold float64) HealthState {
	switch {
	case health <= 0:
		return HealthStateDestroyed
	case health <= criticalThreshold:
		return HealthStateCritical
	case health <= warningThreshold:
		return HealthStateWarning
	default:
		return HealthStateHealthy
	}
}
