package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	governancehttp "govengine/contexts/governance/proposal-engine/transport/http"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var (
	activeStyle   = color.New(color.FgCyan)
	closedStyle   = color.New(color.FgYellow)
	approvedStyle = color.New(color.FgGreen)
	rejectedStyle = color.New(color.FgRed)
	executedStyle = color.New(color.FgGreen, color.Bold)
	labelStyle    = color.New(color.Bold)
	faintStyle    = color.New(color.Faint)
)

// Renderer writes API responses either as tables or as indented JSON.
type Renderer struct {
	out    io.Writer
	format string
}

func New(out io.Writer, format string) (*Renderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatTable
	}
	if format != FormatTable && format != FormatJSON {
		return nil, fmt.Errorf("unknown output format %q (want table or json)", format)
	}
	return &Renderer{out: out, format: format}, nil
}

func (r *Renderer) Member(member governancehttp.MemberResponse) error {
	if r.format == FormatJSON {
		return r.json(member)
	}
	return r.Members([]governancehttp.MemberResponse{member})
}

func (r *Renderer) Members(members []governancehttp.MemberResponse) error {
	if r.format == FormatJSON {
		return r.json(governancehttp.MemberListResponse{Items: members})
	}
	if len(members) == 0 {
		fmt.Fprintln(r.out, "No members found")
		return nil
	}
	t := r.newTable()
	t.AppendHeader(table.Row{"MEMBER", "NAME", "POWER", "ROLE", "VERIFIED", "PROPOSALS", "VOTES"})
	t.AppendRows(lo.Map(members, func(m governancehttp.MemberResponse, _ int) table.Row {
		return table.Row{
			m.MemberID,
			m.DisplayName,
			formatFloat(m.VotingPower),
			m.Role,
			lo.Ternary(m.Verified, "yes", "no"),
			m.ProposalsCreated,
			m.VotesSubmitted,
		}
	}))
	t.Render()
	return nil
}

func (r *Renderer) Proposal(proposal governancehttp.ProposalResponse) error {
	if r.format == FormatJSON {
		return r.json(proposal)
	}
	rows := [][2]string{
		{"Proposal", proposal.ProposalID},
		{"Title", proposal.Title},
		{"Proposer", proposal.ProposerID},
		{"Category", proposal.Category},
		{"Status", Status(proposal.Status)},
		{"Voting", proposal.VotingStartsAt + " -> " + proposal.VotingEndsAt},
		{"Thresholds", fmt.Sprintf("quorum %s, approval %s", formatFloat(proposal.QuorumThreshold), formatFloat(proposal.ApprovalThreshold))},
		{"Tallies", formatTallies(proposal.Tallies)},
		{"Voters", strconv.Itoa(proposal.VoterCount)},
	}
	if proposal.Result != nil {
		rows = append(rows, [2]string{"Result", fmt.Sprintf(
			"participation %s (quorum %s), approval %s (%s)",
			formatFloat(proposal.Result.ParticipationRate),
			lo.Ternary(proposal.Result.QuorumMet, "met", "not met"),
			formatFloat(proposal.Result.ApprovalRate),
			lo.Ternary(proposal.Result.ApprovalMet, "met", "not met"),
		)})
		if proposal.Result.EarlyFinalization {
			rows = append(rows, [2]string{"", faintStyle.Sprint("finalized before voting ended")})
		}
	}
	if proposal.ExecutionScheduledAt != "" {
		rows = append(rows, [2]string{"Executable at", proposal.ExecutionScheduledAt})
	}
	if proposal.ExecutedAt != "" {
		rows = append(rows, [2]string{"Executed at", proposal.ExecutedAt})
	}
	if proposal.Description != "" {
		rows = append(rows, [2]string{"Description", proposal.Description})
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "%-14s %s\n", labelStyle.Sprint(row[0]), row[1])
	}
	return nil
}

func (r *Renderer) Proposals(proposals []governancehttp.ProposalResponse) error {
	if r.format == FormatJSON {
		return r.json(governancehttp.ProposalListResponse{Items: proposals})
	}
	if len(proposals) == 0 {
		fmt.Fprintln(r.out, "No proposals found")
		return nil
	}
	t := r.newTable()
	t.AppendHeader(table.Row{"PROPOSAL", "TITLE", "CATEGORY", "STATUS", "FOR", "AGAINST", "ABSTAIN", "ENDS"})
	t.AppendRows(lo.Map(proposals, func(p governancehttp.ProposalResponse, _ int) table.Row {
		return table.Row{
			p.ProposalID,
			p.Title,
			p.Category,
			Status(p.Status),
			formatFloat(p.Tallies.For),
			formatFloat(p.Tallies.Against),
			formatFloat(p.Tallies.Abstain),
			p.VotingEndsAt,
		}
	}))
	t.Render()
	return nil
}

func (r *Renderer) Votes(votes []governancehttp.VoteResponse) error {
	if r.format == FormatJSON {
		return r.json(governancehttp.VoteListResponse{Items: votes})
	}
	if len(votes) == 0 {
		fmt.Fprintln(r.out, "No votes cast")
		return nil
	}
	t := r.newTable()
	t.AppendHeader(table.Row{"VOTER", "CHOICE", "POWER", "CAST AT"})
	t.AppendRows(lo.Map(votes, func(v governancehttp.VoteResponse, _ int) table.Row {
		return table.Row{v.VoterID, v.Choice, formatFloat(v.Power), v.CastAt}
	}))
	t.Render()
	return nil
}

func (r *Renderer) CastVote(resp governancehttp.CastVoteResponse) error {
	if r.format == FormatJSON {
		return r.json(resp)
	}
	fmt.Fprintln(r.out, approvedStyle.Sprintf("Vote recorded: %s voted %s with power %s",
		resp.Vote.VoterID, resp.Vote.Choice, formatFloat(resp.Vote.Power)))
	fmt.Fprintf(r.out, "%-14s %s\n", labelStyle.Sprint("Tallies"), formatTallies(resp.Tallies))
	return nil
}

func (r *Renderer) Executed(resp governancehttp.ExecuteProposalResponse) error {
	if r.format == FormatJSON {
		return r.json(resp)
	}
	if err := r.Proposal(resp.Proposal); err != nil {
		return err
	}
	if len(resp.ExecutionContext) > 0 {
		fmt.Fprintf(r.out, "%-14s %s\n", labelStyle.Sprint("Context"), string(resp.ExecutionContext))
	}
	return nil
}

// Status colors a proposal status for terminal output.
func Status(status string) string {
	switch status {
	case "active":
		return activeStyle.Sprint(status)
	case "closed":
		return closedStyle.Sprint(status)
	case "approved":
		return approvedStyle.Sprint(status)
	case "rejected":
		return rejectedStyle.Sprint(status)
	case "executed":
		return executedStyle.Sprint(status)
	default:
		return status
	}
}

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Format.Header = text.FormatDefault
	return t
}

func (r *Renderer) json(payload any) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func formatTallies(t governancehttp.TalliesResponse) string {
	return fmt.Sprintf("for %s / against %s / abstain %s", formatFloat(t.For), formatFloat(t.Against), formatFloat(t.Abstain))
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
