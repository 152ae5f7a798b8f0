package stats

import (
	"strings"

	"github.com/2beens/liftdash/internal/fitapi"
)

// TrendDirection is the closed form of the backend trend direction tag.
type TrendDirection string

const (
	TrendImproving        TrendDirection = "improving"
	TrendRegressing       TrendDirection = "regressing"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficientData"
	TrendUnknown          TrendDirection = "unknown"
)

func ParseTrendDirection(direction string) TrendDirection {
	switch strings.ToLower(direction) {
	case "improving":
		return TrendImproving
	case "regressing":
		return TrendRegressing
	case "stable":
		return TrendStable
	case "insufficient_data", "insufficient-data", "insufficientdata":
		return TrendInsufficientData
	default:
		return TrendUnknown
	}
}

type CanonicalLift string

const (
	LiftSquat      CanonicalLift = "squat"
	LiftBenchPress CanonicalLift = "benchPress"
	LiftDeadlift   CanonicalLift = "deadlift"
)

// CanonicalLifts is the fixed order of the big three slots in the UI.
var CanonicalLifts = []CanonicalLift{LiftSquat, LiftBenchPress, LiftDeadlift}

var liftDisplayNames = map[CanonicalLift]string{
	LiftSquat:      "Squat",
	LiftBenchPress: "Bench Press",
	LiftDeadlift:   "Deadlift",
}

// liftNameVariants are matched in order against catalog names,
// case-insensitively, first match wins.
var liftNameVariants = map[CanonicalLift][]string{
	LiftSquat: {
		"barbell back squat",
		"back squat",
		"barbell squat",
		"squat (barbell)",
		"squat",
	},
	LiftBenchPress: {
		"barbell bench press",
		"flat bench press",
		"bench press (barbell)",
		"bench press",
		"bench",
	},
	LiftDeadlift: {
		"barbell deadlift",
		"conventional deadlift",
		"deadlift (barbell)",
		"deadlift",
	},
}

func (l CanonicalLift) DisplayName() string {
	return liftDisplayNames[l]
}

// ResolveLift scans the exercise catalog for a case-insensitive exact match
// against the lift's ordered variant list. The variant list order decides,
// not the catalog order.
func ResolveLift(catalog []fitapi.ExerciseType, lift CanonicalLift) (fitapi.ExerciseType, bool) {
	for _, variant := range liftNameVariants[lift] {
		for _, exerciseType := range catalog {
			if strings.EqualFold(exerciseType.Name, variant) {
				return exerciseType, true
			}
		}
	}
	return fitapi.ExerciseType{}, false
}

// LiftRecord is the display-ready state of one big three slot.
type LiftRecord struct {
	ExerciseID    string         `json:"exerciseId"`
	CanonicalName string         `json:"canonicalName"`
	E1RM          float64        `json:"e1rm"`
	Trend         TrendDirection `json:"trend"`
	PercentChange *float64       `json:"percentChange,omitempty"`
}

// BigThree joins resolved catalog exercises with their trend records.
// The result always has exactly one record per canonical lift, in the
// canonical order. An unresolved lift yields a zero-valued placeholder,
// a resolved lift without a loaded trend has e1rm 0 and insufficient data.
func BigThree(catalog []fitapi.ExerciseType, trends map[string]fitapi.TrendRecord) []LiftRecord {
	records := make([]LiftRecord, 0, len(CanonicalLifts))
	for _, lift := range CanonicalLifts {
		record := LiftRecord{
			CanonicalName: lift.DisplayName(),
			Trend:         TrendInsufficientData,
		}
		if exerciseType, ok := ResolveLift(catalog, lift); ok {
			record.ExerciseID = exerciseType.ID
			if trend, ok := trends[exerciseType.ID]; ok {
				record.E1RM = trend.E1RM
				record.Trend = ParseTrendDirection(trend.Direction)
				record.PercentChange = trend.PercentChange
			}
		}
		records = append(records, record)
	}
	return records
}
