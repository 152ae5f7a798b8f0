package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/liftdash/internal/fitapi"
	"github.com/2beens/liftdash/internal/healthbridge"
	"github.com/2beens/liftdash/internal/stats"
	"github.com/2beens/liftdash/internal/telemetry/tracing"
	"github.com/2beens/liftdash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=dashboard_test

type snapshotProvider interface {
	Snapshot() Snapshot
	Refresh(ctx context.Context) Snapshot
	ClaimQuest(ctx context.Context, questID string) (*stats.ProgressionState, error)
}

type ClaimQuestResponse struct {
	QuestID     string                  `json:"questId"`
	Progression *stats.ProgressionState `json:"progression"`
}

type Handler struct {
	aggregator   snapshotProvider
	healthBridge healthbridge.Bridge
}

func NewHandler(aggregator snapshotProvider, healthBridge healthbridge.Bridge) *Handler {
	return &Handler{
		aggregator:   aggregator,
		healthBridge: healthBridge,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-dashboard")
	router.HandleFunc("/dashboard/refresh", handler.HandleRefresh).Methods("POST", "OPTIONS").Name("refresh-dashboard")
	router.HandleFunc("/dashboard/quests/{id}/claim", handler.HandleClaimQuest).Methods("POST", "OPTIONS").Name("claim-quest")
	router.HandleFunc("/dashboard/health/today", handler.HandleHealthToday).Methods("GET", "OPTIONS").Name("health-today")
	router.HandleFunc("/dashboard/health/weekly", handler.HandleHealthWeekly).Methods("GET", "OPTIONS").Name("health-weekly")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.get")
	defer span.End()

	handler.writeSnapshot(w, handler.aggregator.Snapshot())
}

func (handler *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.refresh")
	defer span.End()

	snapshot := handler.aggregator.Refresh(ctx)
	if snapshot.AuthRequired {
		snapshotJson, err := json.Marshal(snapshot)
		if err != nil {
			log.Errorf("failed to marshal snapshot: %s", err)
			http.Error(w, "failed to marshal snapshot", http.StatusInternalServerError)
			return
		}
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, snapshotJson, http.StatusUnauthorized)
		return
	}

	handler.writeSnapshot(w, snapshot)
}

func (handler *Handler) HandleClaimQuest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.claimQuest")
	defer span.End()

	vars := mux.Vars(r)
	questID := vars["id"]
	if questID == "" {
		http.Error(w, "error, quest id empty", http.StatusBadRequest)
		return
	}

	progression, err := handler.aggregator.ClaimQuest(ctx, questID)
	if err != nil {
		switch {
		case errors.Is(err, fitapi.ErrUnauthorized):
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		case errors.Is(err, fitapi.ErrNotFound):
			http.Error(w, "quest not found", http.StatusNotFound)
		default:
			log.Errorf("failed to claim quest %s: %s", questID, err)
			http.Error(w, "error, failed to claim quest", http.StatusInternalServerError)
		}
		return
	}

	respJson, err := json.Marshal(ClaimQuestResponse{
		QuestID:     questID,
		Progression: progression,
	})
	if err != nil {
		log.Errorf("failed to marshal claim quest response: %s", err)
		http.Error(w, "failed to marshal claim quest response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleHealthToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.healthToday")
	defer span.End()

	activity, err := handler.healthBridge.TodayActivity(ctx)
	if err != nil {
		if errors.Is(err, healthbridge.ErrBridgeUnavailable) {
			http.Error(w, "health bridge unavailable", http.StatusServiceUnavailable)
			return
		}
		log.Errorf("failed to get today activity: %s", err)
		http.Error(w, "error, failed to get today activity", http.StatusInternalServerError)
		return
	}

	activityJson, err := json.Marshal(activity)
	if err != nil {
		log.Errorf("failed to marshal today activity: %s", err)
		http.Error(w, "failed to marshal today activity", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, activityJson)
}

func (handler *Handler) HandleHealthWeekly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.healthWeekly")
	defer span.End()

	activity, err := handler.healthBridge.WeeklyActivity(ctx)
	if err != nil {
		if errors.Is(err, healthbridge.ErrBridgeUnavailable) {
			http.Error(w, "health bridge unavailable", http.StatusServiceUnavailable)
			return
		}
		log.Errorf("failed to get weekly activity: %s", err)
		http.Error(w, "error, failed to get weekly activity", http.StatusInternalServerError)
		return
	}

	activityJson, err := json.Marshal(activity)
	if err != nil {
		log.Errorf("failed to marshal weekly activity: %s", err)
		http.Error(w, "failed to marshal weekly activity", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, activityJson)
}

func (handler *Handler) writeSnapshot(w http.ResponseWriter, snapshot Snapshot) {
	snapshotJson, err := json.Marshal(snapshot)
	if err != nil {
		log.Errorf("failed to marshal snapshot: %s", err)
		http.Error(w, "failed to marshal snapshot", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, snapshotJson)
}
