package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"nilgate/internal/attestation"
	compliancemetrics "nilgate/internal/compliance/metrics"
	"nilgate/pkg/domain"
	dErrors "nilgate/pkg/domain-errors"
)

const gatherTimeout = 5 * time.Second

// AttestationSource is the slice of the attestation store the evaluator needs.
type AttestationSource interface {
	Query(ctx context.Context, subject domain.Subject, typ domain.AttestationType) ([]*attestation.Attestation, error)
}

// Evaluator checks a deal's attestation set against its jurisdiction's policy.
//
// For each required type it takes the union of deal-scoped and athlete-scoped
// attestations (deliverables are deal-scoped only) and the requirement is
// satisfied when at least one record is currently valid and issued by a
// trusted authority. Validity is always checked against the evaluation time,
// never issuance time, so lapsed deliverables and expired KYC both fail.
type Evaluator struct {
	policies *PolicySet
	source   AttestationSource
	logger   *slog.Logger
	metrics  *compliancemetrics.Metrics
	now      func() time.Time
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithClock overrides the evaluation clock for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *compliancemetrics.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

func NewEvaluator(policies *PolicySet, source AttestationSource, logger *slog.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		policies: policies,
		source:   source,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// gathered holds the attestation union for one required type.
type gathered struct {
	typ     domain.AttestationType
	records []*attestation.Attestation
}

// Evaluate returns the compliance verdict for a deal. It errors only on store
// failure (UpstreamUnavailable); a non-compliant deal is a normal result.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	policy := e.policies.For(in.Jurisdiction)
	evalTime := e.now().UTC()

	sets, err := e.gather(ctx, in, policy.Required)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUpstreamUnavailable, "attestation lookup failed", err)
	}

	result := &Result{
		Compliant:     true,
		PolicyVersion: e.policies.Version,
		EvaluatedAt:   evalTime,
	}
	for _, set := range sets {
		if reason := e.check(set, policy, in.Jurisdiction, evalTime); reason != "" {
			result.Compliant = false
			result.Missing = append(result.Missing, set.typ)
			result.Reasons = append(result.Reasons, reason)
		}
	}

	e.metrics.ObserveEvaluateLatency(time.Since(start))
	e.metrics.IncrementVerdict(in.Jurisdiction.String(), result.Compliant)
	if e.logger != nil {
		e.logger.InfoContext(ctx, "compliance evaluated",
			"chain_deal_id", in.ChainDealID.String(),
			"jurisdiction", in.Jurisdiction.String(),
			"compliant", result.Compliant,
			"missing", len(result.Missing),
			"policy_version", e.policies.Version,
		)
	}
	return result, nil
}

// gather fans out one lookup per required type with shared cancellation.
func (e *Evaluator) gather(ctx context.Context, in Input, required []domain.AttestationType) ([]gathered, error) {
	ctx, cancel := context.WithTimeout(ctx, gatherTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	sets := make([]gathered, len(required))

	for i, typ := range required {
		g.Go(func() error {
			start := time.Now()
			defer func() {
				e.metrics.ObserveLookupLatency(typ.String(), time.Since(start))
			}()

			dealScoped, err := e.source.Query(ctx, domain.DealSubject(in.ChainDealID), typ)
			if err != nil {
				return err
			}
			records := dealScoped
			if !typ.DealScopedOnly() {
				athleteScoped, err := e.source.Query(ctx, domain.AthleteSubject(in.Vault), typ)
				if err != nil {
					return err
				}
				records = append(records, athleteScoped...)
			}
			sets[i] = gathered{typ: typ, records: records}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

// check returns an empty string when the requirement is satisfied, otherwise a
// human-readable reason. When several records fail for different causes the
// most actionable one wins: untrusted issuer beats expiry beats absence.
func (e *Evaluator) check(set gathered, policy JurisdictionPolicy, j domain.Jurisdiction, at time.Time) string {
	if len(set.records) == 0 {
		return fmt.Sprintf("%s: no attestation on file", set.typ)
	}

	// Deterministic reason selection regardless of store ordering: within each
	// failure cause the most recent record speaks for it.
	records := append([]*attestation.Attestation(nil), set.records...)
	sort.Slice(records, func(a, b int) bool { return records[a].IssuedAt.After(records[b].IssuedAt) })

	var untrusted, invalid string
	for _, rec := range records {
		if !policy.Trusts(rec.Issuer) {
			if untrusted == "" {
				untrusted = fmt.Sprintf("%s: issuer %q is not trusted for jurisdiction %s", set.typ, rec.Issuer, j)
			}
			continue
		}
		if !rec.ValidAt(at) {
			if invalid == "" {
				if rec.ValidUntil != nil && !at.Before(*rec.ValidUntil) {
					invalid = fmt.Sprintf("%s expired %s", set.typ, rec.ValidUntil.Format("2006-01-02"))
				} else {
					invalid = fmt.Sprintf("%s: not yet valid", set.typ)
				}
			}
			continue
		}
		return ""
	}
	if untrusted != "" {
		return untrusted
	}
	return invalid
}
