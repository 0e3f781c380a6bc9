package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	governancehttp "govengine/contexts/governance/proposal-engine/transport/http"

	"github.com/spf13/cobra"
)

func newProposalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposals",
		Aliases: []string{"proposal", "p"},
		Short:   "Create, vote on, finalize and execute proposals",
	}
	cmd.AddCommand(
		newProposalsCreateCmd(),
		newProposalsGetCmd(),
		newProposalsListCmd(),
		newProposalsVotesCmd(),
		newProposalsVoteCmd(),
		newProposalsFinalizeCmd(),
		newProposalsExecuteCmd(),
	)
	return cmd
}

func newProposalsCreateCmd() *cobra.Command {
	var (
		proposerID  string
		title       string
		description string
		options     governancehttp.ProposalOptionsRequest
		quorum      float64
		approval    float64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if strings.TrimSpace(proposerID) == "" {
				proposerID = a.memberID
			}
			if cmd.Flags().Changed("quorum") {
				options.QuorumThreshold = &quorum
			}
			if cmd.Flags().Changed("approval") {
				options.ApprovalThreshold = &approval
			}
			proposal, err := a.client.CreateProposal(cmd.Context(), governancehttp.CreateProposalRequest{
				ProposerID:  proposerID,
				Title:       title,
				Description: description,
				Options:     options,
			})
			if err != nil {
				return err
			}
			return a.renderer.Proposal(proposal)
		},
	}
	cmd.Flags().StringVar(&proposerID, "proposer", "", "Proposer member id (defaults to --member)")
	cmd.Flags().StringVar(&title, "title", "", "Proposal title")
	cmd.Flags().StringVar(&description, "description", "", "Proposal description")
	cmd.Flags().StringVar(&options.Category, "category", "", "Category label")
	cmd.Flags().StringVar(&options.VotingPeriod, "voting-period", "", "Voting window length, e.g. 168h")
	cmd.Flags().StringVar(&options.ExecutionDelay, "execution-delay", "", "Delay between approval and execution, e.g. 48h")
	cmd.Flags().StringVar(&options.VotingStartsAt, "starts-at", "", "Voting start time (RFC3339)")
	cmd.Flags().Float64Var(&quorum, "quorum", 0, "Quorum threshold in [0,1]")
	cmd.Flags().Float64Var(&approval, "approval", 0, "Approval threshold in [0,1]")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newProposalsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <proposal-id>",
		Short: "Show one proposal with its current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			proposal, err := a.client.GetProposal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderer.Proposal(proposal)
		},
	}
}

func newProposalsListCmd() *cobra.Command {
	var status, category, proposerID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			list, err := a.client.ListProposals(cmd.Context(), status, category, proposerID)
			if err != nil {
				return err
			}
			return a.renderer.Proposals(list.Items)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only proposals in this status")
	cmd.Flags().StringVar(&category, "category", "", "Only proposals in this category")
	cmd.Flags().StringVar(&proposerID, "proposer", "", "Only proposals by this member")
	return cmd
}

func newProposalsVotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "votes <proposal-id>",
		Short: "List the votes cast on a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			list, err := a.client.ListVotes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderer.Votes(list.Items)
		},
	}
}

func newProposalsVoteCmd() *cobra.Command {
	var voterID string
	cmd := &cobra.Command{
		Use:       "vote <proposal-id> <for|against|abstain>",
		Short:     "Cast a vote as --member (or --voter)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"for", "against", "abstain"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if strings.TrimSpace(voterID) == "" {
				voterID = a.memberID
			}
			if strings.TrimSpace(voterID) == "" {
				return fmt.Errorf("a voter is required: pass --member or --voter")
			}
			resp, err := a.client.WithMember(voterID).CastVote(cmd.Context(), args[0], governancehttp.CastVoteRequest{
				VoterID: voterID,
				Choice:  args[1],
			})
			if err != nil {
				return err
			}
			return a.renderer.CastVote(resp)
		},
	}
	cmd.Flags().StringVar(&voterID, "voter", "", "Voter member id (defaults to --member)")
	return cmd
}

func newProposalsFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <proposal-id>",
		Short: "Decide a proposal's outcome from its tallies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			proposal, err := a.client.FinalizeProposal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderer.Proposal(proposal)
		},
	}
}

func newProposalsExecuteCmd() *cobra.Command {
	var contextJSON, contextFile string
	cmd := &cobra.Command{
		Use:   "execute <proposal-id>",
		Short: "Mark an approved proposal executed once its delay has elapsed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			raw, err := executionContext(contextJSON, contextFile)
			if err != nil {
				return err
			}
			resp, err := a.client.ExecuteProposal(cmd.Context(), args[0], governancehttp.ExecuteProposalRequest{
				ExecutionContext: raw,
			})
			if err != nil {
				return err
			}
			return a.renderer.Executed(resp)
		},
	}
	cmd.Flags().StringVar(&contextJSON, "context", "", "Execution context as inline JSON")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "Path to a JSON file with the execution context")
	cmd.MarkFlagsMutuallyExclusive("context", "context-file")
	return cmd
}

func executionContext(inline string, path string) (json.RawMessage, error) {
	raw := []byte(strings.TrimSpace(inline))
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read execution context: %w", err)
		}
		raw = data
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("execution context is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
