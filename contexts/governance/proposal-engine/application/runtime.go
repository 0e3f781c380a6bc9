package application

import (
	"log/slog"

	"govengine/contexts/governance/proposal-engine/domain/entities"
	"govengine/contexts/governance/proposal-engine/ports"
)

// Module is the value of the "module" attribute on every record this
// context logs.
const Module = "governance/proposal-engine"

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// ResolveMetrics guarantees a non-nil sink; unset sinks discard notifications.
func ResolveMetrics(sink ports.MetricsSink) ports.MetricsSink {
	if sink == nil {
		return NopMetrics{}
	}
	return sink
}

type NopMetrics struct{}

func (NopMetrics) MemberRegistered(entities.Role)                                         {}
func (NopMetrics) ProposalCreated(string)                                                 {}
func (NopMetrics) VoteCast(entities.Choice, float64)                                      {}
func (NopMetrics) ProposalFinalized(entities.ProposalStatus, entities.FinalizationResult) {}
func (NopMetrics) ProposalExecuted(string)                                                {}
