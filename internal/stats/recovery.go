package stats

import (
	"sort"

	"github.com/2beens/liftdash/internal/fitapi"
)

type RecoveryBucket string

const (
	RecoveryFresh    RecoveryBucket = "fresh"
	RecoveryModerate RecoveryBucket = "moderate"
	RecoveryFatigued RecoveryBucket = "fatigued"
)

// ClassifyRecovery buckets a cooldown percent:
// >= 100 fresh, [50, 100) moderate, < 50 fatigued.
func ClassifyRecovery(cooldownPercent float64) RecoveryBucket {
	switch {
	case cooldownPercent >= 100:
		return RecoveryFresh
	case cooldownPercent >= 50:
		return RecoveryModerate
	default:
		return RecoveryFatigued
	}
}

// RecoveryStatus is one muscle group's recovery state with its bucket.
type RecoveryStatus struct {
	fitapi.MuscleRecovery
	Bucket RecoveryBucket `json:"bucket"`
}

// RecoveryDisplayOrder classifies and orders muscle groups for display:
// still-recovering muscles first, ascending by cooldown percent,
// fully recovered ones after, in their incoming order.
func RecoveryDisplayOrder(recoveryList []fitapi.MuscleRecovery) []RecoveryStatus {
	statuses := make([]RecoveryStatus, 0, len(recoveryList))
	for _, recovery := range recoveryList {
		statuses = append(statuses, RecoveryStatus{
			MuscleRecovery: recovery,
			Bucket:         ClassifyRecovery(recovery.CooldownPercent),
		})
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		iRecovering := statuses[i].Bucket != RecoveryFresh
		jRecovering := statuses[j].Bucket != RecoveryFresh
		if iRecovering != jRecovering {
			return iRecovering
		}
		if iRecovering && jRecovering {
			return statuses[i].CooldownPercent < statuses[j].CooldownPercent
		}
		return false
	})

	return statuses
}
