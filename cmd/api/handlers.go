package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/quote"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
	"github.com/PortsideHQ/portside-engine/pkg/metrics"
	"github.com/PortsideHQ/portside-engine/pkg/repo"
	"github.com/PortsideHQ/portside-engine/pkg/vehiclenlp"
)

// maxBatchSize bounds a single batch request.
const maxBatchSize = 100

type api struct {
	svc         *quote.Service
	store       *refdata.Store
	vehicleRepo *repo.Neo4jRepo[domain.CanonicalVehicle, string]
	logger      *slog.Logger
	reg         *metrics.Registry

	quotesTotal  *metrics.Counter
	quoteErrors  *metrics.Counter
	quoteLatency *metrics.Histogram
}

func newAPI(svc *quote.Service, store *refdata.Store, vehicleRepo *repo.Neo4jRepo[domain.CanonicalVehicle, string], reg *metrics.Registry, logger *slog.Logger) *api {
	return &api{
		svc:          svc,
		store:        store,
		vehicleRepo:  vehicleRepo,
		logger:       logger,
		reg:          reg,
		quotesTotal:  reg.Counter("portside_quotes_total", "Quotes issued"),
		quoteErrors:  reg.Counter("portside_quote_errors_total", "Quote requests rejected or failed"),
		quoteLatency: reg.Histogram("portside_quote_duration_seconds", "Quote latency", nil),
	}
}

func (a *api) recordOutcome(q *quote.Quote) {
	a.quotesTotal.Inc()
	name := metrics.WithLabels("portside_eligibility_total",
		"classification", string(q.Eligibility.Classification))
	a.reg.Counter(name, "Eligibility outcomes").Inc()
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := a.store.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"dataset_version": snap.Version(),
		"dataset_as_of":   snap.AsOf(),
	})
}

// jurisdictionInfo is the public summary of one jurisdiction's regulation.
type jurisdictionInfo struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	Currency          string `json:"currency"`
	AgeExemptionYears int    `json:"age_exemption_years,omitempty"`
	SchemeName        string `json:"scheme_name,omitempty"`
	AllowListSize     int    `json:"allow_list_size"`
}

func (a *api) handleJurisdictions(w http.ResponseWriter, _ *http.Request) {
	snap := a.store.Current()
	codes := snap.JurisdictionCodes()
	out := make([]jurisdictionInfo, 0, len(codes))
	for _, code := range codes {
		reg, ok := snap.Regulation(code)
		if !ok {
			continue
		}
		out = append(out, jurisdictionInfo{
			Code:              reg.Code,
			Name:              reg.Name,
			Currency:          reg.Currency,
			AgeExemptionYears: reg.AgeExemptionYears,
			SchemeName:        reg.SchemeName,
			AllowListSize:     len(reg.AllowList),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dataset_version": snap.Version(),
		"jurisdictions":   out,
	})
}

func (a *api) handleQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer a.quoteLatency.Since(start)

	var req quote.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.quoteErrors.Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	enrichDescriptor(&req.Vehicle)

	q, err := a.svc.Quote(r.Context(), req)
	if err != nil {
		a.quoteErrors.Inc()
		status := http.StatusInternalServerError
		if isRequestError(err) {
			status = http.StatusBadRequest
		} else {
			a.logger.Error("quote failed", "err", err)
		}
		writeError(w, status, err.Error())
		return
	}

	a.recordOutcome(&q)
	writeJSON(w, http.StatusOK, q)
}

func (a *api) handleQuoteBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []quote.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "empty batch")
		return
	}
	if len(reqs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "batch exceeds "+strconv.Itoa(maxBatchSize)+" requests")
		return
	}
	for i := range reqs {
		enrichDescriptor(&reqs[i].Vehicle)
	}

	items := a.svc.QuoteBatch(r.Context(), reqs)
	for _, it := range items {
		if it.Error != "" {
			a.quoteErrors.Inc()
		} else {
			a.recordOutcome(it.Quote)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

func (a *api) handleVehicleList(w http.ResponseWriter, r *http.Request) {
	opts := repo.ListOpts{Limit: 100}
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && n > 0 {
		opts.Offset = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		opts.Limit = n
	}

	vehicles, err := a.vehicleRepo.List(r.Context(), opts)
	if err != nil {
		a.logger.Error("vehicle list failed", "err", err)
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

func (a *api) handleVehicleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := a.vehicleRepo.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// enrichDescriptor fills structured fields from free text when the caller
// supplied only a prose description, e.g. "1999 Nissan Skyline GT-R R34".
func enrichDescriptor(d *domain.VehicleDescriptor) {
	if d.FreeText == "" {
		return
	}
	ex := vehiclenlp.Extract(d.FreeText)
	if d.Make == "" {
		d.Make = ex.Make
	}
	if d.Model == "" {
		d.Model = ex.Model
	}
	if d.Chassis == "" {
		d.Chassis = ex.Chassis
	}
	if d.ModelYear == 0 {
		d.ModelYear = ex.Year
	}
}

func isRequestError(err error) bool {
	return errors.Is(err, domain.ErrInvalidDescriptor) ||
		errors.Is(err, domain.ErrUnknownJurisdiction) ||
		errors.Is(err, domain.ErrInvalidVIN) ||
		errors.Is(err, domain.ErrYearOutOfRange) ||
		errors.Is(err, domain.ErrNegativeAmount)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
