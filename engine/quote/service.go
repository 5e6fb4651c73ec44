package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PortsideHQ/portside-engine/engine/audit"
	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/eligibility"
	"github.com/PortsideHQ/portside-engine/engine/landedcost"
	"github.com/PortsideHQ/portside-engine/engine/modplan"
	"github.com/PortsideHQ/portside-engine/engine/normalize"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
	"github.com/PortsideHQ/portside-engine/pkg/fn"
)

// quoteNamespace seeds deterministic quote IDs: the same request against the
// same dataset version always yields the same UUID.
var quoteNamespace = uuid.MustParse("8f1c9a42-0b3d-4e6f-9a71-2c5d8e04b613")

// Service produces quotes against the currently published snapshot.
type Service struct {
	store        *refdata.Store
	norm         *normalize.Normalizer
	logger       *slog.Logger
	now          func() time.Time
	batchWorkers int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithBatchWorkers bounds batch concurrency.
func WithBatchWorkers(n int) ServiceOption {
	return func(s *Service) { s.batchWorkers = n }
}

// NewService creates a quote service over a snapshot store and normalizer.
func NewService(store *refdata.Store, norm *normalize.Normalizer, opts ...ServiceOption) *Service {
	s := &Service{
		store:        store,
		norm:         norm,
		logger:       slog.Default(),
		now:          time.Now,
		batchWorkers: 8,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// state threads one request through the quote pipeline.
type state struct {
	req  Request
	snap *refdata.Snapshot
	now  time.Time

	origin *domain.Regulation
	dest   *domain.Regulation

	candidates []normalize.Candidate
	modelYear  int
	caveats    []string

	eligibility domain.Eligibility
	plan        modplan.Plan
	breakdown   landedcost.Breakdown
}

// Quote runs the full pipeline. The only hard error is an unknown origin or
// destination jurisdiction: without a fee schedule there is no meaningful
// partial answer. Everything else degrades into the quote itself.
func (s *Service) Quote(ctx context.Context, req Request) (Quote, error) {
	pipeline := fn.Pipeline(
		fn.TracedStage("quote.validate", fn.Stage[*state, *state](s.validate)),
		fn.TracedStage("quote.jurisdictions", fn.Stage[*state, *state](s.resolveJurisdictions)),
		fn.TracedStage("quote.normalize", fn.Stage[*state, *state](s.normalizeVehicle)),
		fn.TracedStage("quote.classify", fn.Stage[*state, *state](s.classify)),
		fn.TracedStage("quote.cost", fn.Stage[*state, *state](s.computeCost)),
	)

	st := &state{req: req, snap: s.store.Current(), now: s.now()}
	if _, err := pipeline(ctx, st).Unwrap(); err != nil {
		s.logger.Warn("quote failed",
			"origin", req.OriginRegion, "destination", req.DestinationRegion, "err", err)
		return Quote{}, err
	}
	q := s.assemble(st)
	s.logger.Info("quote generated",
		"id", q.ID,
		"destination", req.DestinationRegion,
		"classification", q.Eligibility.Classification,
		"total", int64(q.CostBreakdown.Total))
	return q, nil
}

// QuoteBatch quotes several requests with bounded concurrency. Each item
// succeeds or fails independently.
func (s *Service) QuoteBatch(ctx context.Context, reqs []Request) []BatchItem {
	results := fn.ParMapResult(reqs, s.batchWorkers, func(r Request) fn.Result[Quote] {
		return fn.FromPair(s.Quote(ctx, r))
	})
	return fn.Map(results, func(r fn.Result[Quote]) BatchItem {
		q, err := r.Unwrap()
		if err != nil {
			return BatchItem{Error: err.Error()}
		}
		return BatchItem{Quote: &q}
	})
}

func (s *Service) validate(_ context.Context, st *state) fn.Result[*state] {
	if err := domain.ValidateDescriptor(st.req.Vehicle); err != nil {
		return fn.Err[*state](err)
	}
	if err := domain.ValidateAmounts(st.req.VehiclePrice, st.req.ShippingCost); err != nil {
		return fn.Err[*state](err)
	}
	return fn.Ok(st)
}

func (s *Service) resolveJurisdictions(_ context.Context, st *state) fn.Result[*state] {
	origin, ok := st.snap.Regulation(st.req.OriginRegion)
	if !ok {
		return fn.Errf[*state]("origin %q: %w", st.req.OriginRegion, domain.ErrUnknownJurisdiction)
	}
	dest, ok := st.snap.Regulation(st.req.DestinationRegion)
	if !ok {
		return fn.Errf[*state]("destination %q: %w", st.req.DestinationRegion, domain.ErrUnknownJurisdiction)
	}
	st.origin, st.dest = origin, dest
	return fn.Ok(st)
}

func (s *Service) normalizeVehicle(ctx context.Context, st *state) fn.Result[*state] {
	st.candidates = s.norm.Normalize(ctx, st.req.Vehicle, st.snap)

	best := st.candidates[0]
	st.modelYear = st.req.Vehicle.ModelYear
	if st.modelYear == 0 && !best.Unresolved {
		// Without a stated year, assume the last production year: the most
		// conservative choice for age-based rules.
		st.modelYear = best.Vehicle.YearTo
		st.caveats = append(st.caveats,
			fmt.Sprintf("model year not supplied; assumed %d (end of production)", st.modelYear))
	}
	return fn.Ok(st)
}

func (s *Service) classify(_ context.Context, st *state) fn.Result[*state] {
	best := st.candidates[0]
	if best.Unresolved {
		st.eligibility = domain.Eligibility{
			Classification: domain.ClassUndetermined,
			RulePath: []domain.RuleCheck{
				{Rule: "vehicle_match", Note: "no catalog match for the supplied descriptor"},
			},
		}
		return fn.Ok(st)
	}

	st.eligibility = eligibility.Resolve(eligibility.Input{
		Vehicle:    best.Vehicle,
		ModelYear:  st.modelYear,
		Regulation: st.dest,
		Confidence: best.Confidence,
		Now:        st.now,
	})

	st.plan = modplan.Build(st.eligibility.Classification, st.eligibility.SafetyCheckRequired, st.origin, st.dest)

	// A general import with mandatory work outstanding is really a
	// requires-modification import; the plan itself is unchanged.
	if st.eligibility.Classification == domain.ClassGeneralEligible && st.plan.HasMandatory() {
		st.eligibility.Classification = domain.ClassRequiresModification
		st.eligibility.RulePath = append(st.eligibility.RulePath, domain.RuleCheck{
			Rule:   "mandatory_modifications",
			Passed: true,
			Note:   "general import downgraded: mandatory compliance modifications outstanding",
		})
	}
	return fn.Ok(st)
}

func (s *Service) computeCost(_ context.Context, st *state) fn.Result[*state] {
	b, err := landedcost.Compute(st.req.VehiclePrice, st.req.ShippingCost, st.dest, st.plan)
	if err != nil {
		return fn.Err[*state](err)
	}
	st.breakdown = b
	return fn.Ok(st)
}

func (s *Service) assemble(st *state) Quote {
	best := st.candidates[0]
	q := Quote{
		ID:             s.quoteID(st),
		MatchedVehicle: matched(best),
		Eligibility:    st.eligibility,
		Modifications:  st.plan,
		CostBreakdown:  st.breakdown,
		Caveats:        append(st.caveats, audit.Caveats(st.now, st.dest.AsOf, best.Confidence)...),
		DatasetVersion: st.snap.Version(),
		GeneratedAt:    st.now,
	}
	for _, c := range st.candidates[1:] {
		q.Alternatives = append(q.Alternatives, matched(c))
	}
	return q
}

// quoteID derives a stable UUID from the request and the dataset version, so
// repeating a request against unchanged data reproduces the same quote.
func (s *Service) quoteID(st *state) string {
	payload, _ := json.Marshal(st.req)
	payload = append(payload, []byte(fmt.Sprintf("|v%d", st.snap.Version()))...)
	return uuid.NewSHA1(quoteNamespace, payload).String()
}

func matched(c normalize.Candidate) MatchedVehicle {
	return MatchedVehicle{
		ID:         c.Vehicle.ID,
		Make:       c.Vehicle.Make,
		Model:      c.Vehicle.Model,
		Chassis:    c.Vehicle.Chassis,
		YearFrom:   c.Vehicle.YearFrom,
		YearTo:     c.Vehicle.YearTo,
		Confidence: c.Confidence,
		Tier:       c.Tier,
		Unresolved: c.Unresolved,
	}
}
