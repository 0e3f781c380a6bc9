package prometheusadapter

import (
	"strings"

	"govengine/contexts/governance/proposal-engine/domain/entities"
	"govengine/contexts/governance/proposal-engine/ports"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace     = "governance"
	otherCategory = "other"
)

// Metrics is the Prometheus MetricsSink. Proposal categories are free text,
// so only the categories named at construction get their own label value.
type Metrics struct {
	categories         map[string]struct{}
	membersRegistered  *prometheus.CounterVec
	proposalsCreated   *prometheus.CounterVec
	votesCast          *prometheus.CounterVec
	votePower          *prometheus.CounterVec
	proposalsFinalized *prometheus.CounterVec
	proposalsExecuted  prometheus.Counter
	participationRate  prometheus.Histogram
	approvalRate       prometheus.Histogram
}

// NewMetrics registers the governance collectors on reg. A nil reg falls
// back to prometheus.DefaultRegisterer. The default category is always
// tracked; every other category not listed is counted as "other".
func NewMetrics(reg prometheus.Registerer, categories ...string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	known := map[string]struct{}{entities.DefaultCategory: {}}
	for _, category := range categories {
		if category = strings.TrimSpace(category); category != "" {
			known[category] = struct{}{}
		}
	}
	rateBuckets := prometheus.LinearBuckets(0, 0.1, 11)
	m := &Metrics{
		membersRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_registered_total",
			Help:      "Member registrations, including re-registrations.",
		}, []string{"role"}),
		proposalsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_created_total",
			Help:      "Proposals created.",
		}, []string{"category"}),
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Votes accepted.",
		}, []string{"choice"}),
		votePower: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_power_total",
			Help:      "Voting power credited to tallies.",
		}, []string{"choice"}),
		proposalsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_finalized_total",
			Help:      "Proposals finalized by outcome.",
		}, []string{"status"}),
		proposalsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_executed_total",
			Help:      "Approved proposals executed.",
		}),
		participationRate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "finalization_participation_rate",
			Help:      "Participation rate observed at finalization.",
			Buckets:   rateBuckets,
		}),
		approvalRate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "finalization_approval_rate",
			Help:      "Approval rate observed at finalization.",
			Buckets:   rateBuckets,
		}),
	}
	m.categories = known
	for _, collector := range []prometheus.Collector{
		m.membersRegistered,
		m.proposalsCreated,
		m.votesCast,
		m.votePower,
		m.proposalsFinalized,
		m.proposalsExecuted,
		m.participationRate,
		m.approvalRate,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) MemberRegistered(role entities.Role) {
	m.membersRegistered.WithLabelValues(string(role)).Inc()
}

func (m *Metrics) ProposalCreated(category string) {
	m.proposalsCreated.WithLabelValues(m.categoryLabel(category)).Inc()
}

func (m *Metrics) categoryLabel(category string) string {
	if _, ok := m.categories[category]; ok {
		return category
	}
	return otherCategory
}

func (m *Metrics) VoteCast(choice entities.Choice, power float64) {
	m.votesCast.WithLabelValues(string(choice)).Inc()
	if power > 0 {
		m.votePower.WithLabelValues(string(choice)).Add(power)
	}
}

func (m *Metrics) ProposalFinalized(status entities.ProposalStatus, result entities.FinalizationResult) {
	m.proposalsFinalized.WithLabelValues(string(status)).Inc()
	m.participationRate.Observe(result.ParticipationRate)
	m.approvalRate.Observe(result.ApprovalRate)
}

func (m *Metrics) ProposalExecuted(_ string) {
	m.proposalsExecuted.Inc()
}

var _ ports.MetricsSink = (*Metrics)(nil)
