// Package scoring holds the two score contracts of a worker account.
//
// The employment risk score is derived from completed jobs. The attendance
// trust contribution is produced per check-in by the geofence. They are never
// interchangeable.
package scoring

import (
	"fmt"

	dErrors "surety/pkg/domain-errors"
)

const (
	MaxScore = 100
	// PointsPerJob is the risk score gained per completed job.
	PointsPerJob = 10
	// CheckInThreshold is the number of verified check-ins that makes a cycle wage eligible.
	CheckInThreshold = 5
)

// RiskScore returns min(100, jobsCompleted*10). Negative input scores 0.
func RiskScore(jobsCompleted int) int {
	if jobsCompleted <= 0 {
		return 0
	}
	if jobsCompleted >= MaxScore/PointsPerJob {
		return MaxScore
	}
	return jobsCompleted * PointsPerJob
}

// TrustContribution is the per-event trust value of a check-in.
func TrustContribution(insideFence bool) int {
	if insideFence {
		return MaxScore
	}
	return 0
}

// ValidateTrustScore checks an oracle-asserted trust score.
func ValidateTrustScore(score int) error {
	if score < 0 || score > MaxScore {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("trust score %d must be within [0, %d]", score, MaxScore))
	}
	return nil
}
