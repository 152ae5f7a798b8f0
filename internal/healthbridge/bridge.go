package healthbridge

import (
	"context"
	"errors"
	"time"
)

// ErrBridgeUnavailable means no device health bridge is attached to this
// deployment.
var ErrBridgeUnavailable = errors.New("health bridge unavailable")

type AuthorizationStatus string

const (
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationDenied        AuthorizationStatus = "denied"
	AuthorizationNotDetermined AuthorizationStatus = "notDetermined"
	AuthorizationUnknown       AuthorizationStatus = "unknown"
)

// DailyActivity holds today's device-observed counters. The bridge only
// reads them, they are computed on the device side.
type DailyActivity struct {
	Date            time.Time `json:"date"`
	Steps           int       `json:"steps"`
	ActiveCalories  float64   `json:"activeCalories"`
	ExerciseMinutes int       `json:"exerciseMinutes"`
	StandHours      int       `json:"standHours"`
}

type WeeklyActivity struct {
	Steps           int     `json:"steps"`
	ActiveCalories  float64 `json:"activeCalories"`
	ExerciseMinutes int     `json:"exerciseMinutes"`
}

// Bridge is the device health-data boundary: read counters and trigger a
// one-way sync of them to the backend.
type Bridge interface {
	AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error)
	TodayActivity(ctx context.Context) (*DailyActivity, error)
	WeeklyActivity(ctx context.Context) (*WeeklyActivity, error)
	SyncToBackend(ctx context.Context) error
}

// UnavailableBridge is used on deployments with no device attached.
type UnavailableBridge struct{}

var _ Bridge = (*UnavailableBridge)(nil)

func NewUnavailableBridge() *UnavailableBridge {
	return &UnavailableBridge{}
}

func (b *UnavailableBridge) AuthorizationStatus(_ context.Context) (AuthorizationStatus, error) {
	return AuthorizationUnknown, ErrBridgeUnavailable
}

func (b *UnavailableBridge) TodayActivity(_ context.Context) (*DailyActivity, error) {
	return nil, ErrBridgeUnavailable
}

func (b *UnavailableBridge) WeeklyActivity(_ context.Context) (*WeeklyActivity, error) {
	return nil, ErrBridgeUnavailable
}

func (b *UnavailableBridge) SyncToBackend(_ context.Context) error {
	return ErrBridgeUnavailable
}
