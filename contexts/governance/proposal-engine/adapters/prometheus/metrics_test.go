package prometheusadapter

import (
	"fmt"
	"strings"
	"testing"

	"govengine/contexts/governance/proposal-engine/domain/entities"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg, "treasury")
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	metrics.ProposalCreated("treasury")
	metrics.VoteCast(entities.ChoiceFor, 2.5)
	metrics.VoteCast(entities.ChoiceFor, 1)
	metrics.ProposalFinalized(entities.ProposalStatusApproved, entities.FinalizationResult{
		ParticipationRate: 0.7,
		ApprovalRate:      1,
	})
	metrics.ProposalExecuted("treasury")

	if got := testutil.ToFloat64(metrics.proposalsCreated.WithLabelValues("treasury")); got != 1 {
		t.Fatalf("expected 1 created proposal, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.votesCast.WithLabelValues("for")); got != 2 {
		t.Fatalf("expected 2 votes, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.votePower.WithLabelValues("for")); got != 3.5 {
		t.Fatalf("expected vote power 3.5, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.proposalsExecuted); got != 1 {
		t.Fatalf("expected 1 executed proposal, got %v", got)
	}

	expected := `
# HELP governance_proposals_finalized_total Proposals finalized by outcome.
# TYPE governance_proposals_finalized_total counter
governance_proposals_finalized_total{status="approved"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "governance_proposals_finalized_total"); err != nil {
		t.Fatalf("unexpected finalized metric: %v", err)
	}
}

func TestNewMetricsRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestProposalCreatedBucketsUnknownCategories(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg, "treasury", " ")
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	metrics.ProposalCreated("general")
	metrics.ProposalCreated("treasury")
	for i := 0; i < 50; i++ {
		metrics.ProposalCreated(fmt.Sprintf("client-supplied-%d", i))
	}

	if got := testutil.CollectAndCount(metrics.proposalsCreated); got != 3 {
		t.Fatalf("expected 3 category series, got %d", got)
	}
	if got := testutil.ToFloat64(metrics.proposalsCreated.WithLabelValues("other")); got != 50 {
		t.Fatalf("expected 50 proposals under other, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.proposalsCreated.WithLabelValues("general")); got != 1 {
		t.Fatalf("expected default category tracked, got %v", got)
	}
}
