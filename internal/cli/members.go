package cli

import (
	governancehttp "govengine/contexts/governance/proposal-engine/transport/http"

	"github.com/spf13/cobra"
)

func newMembersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "members",
		Aliases: []string{"member"},
		Short:   "Register and inspect governance members",
	}
	cmd.AddCommand(newMembersRegisterCmd(), newMembersGetCmd(), newMembersListCmd())
	return cmd
}

func newMembersRegisterCmd() *cobra.Command {
	var (
		displayName string
		power       float64
		role        string
		verified    bool
	)
	cmd := &cobra.Command{
		Use:   "register <member-id>",
		Short: "Register a member or replace an existing member's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			req := governancehttp.RegisterMemberRequest{
				MemberID:    args[0],
				DisplayName: displayName,
				Role:        role,
				Verified:    verified,
			}
			if cmd.Flags().Changed("power") {
				req.VotingPower = &power
			}
			member, err := a.client.RegisterMember(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.renderer.Member(member)
		},
	}
	cmd.Flags().StringVar(&displayName, "name", "", "Display name")
	cmd.Flags().Float64Var(&power, "power", 1, "Voting power (non-negative)")
	cmd.Flags().StringVar(&role, "role", "", "Role (admin or member)")
	cmd.Flags().BoolVar(&verified, "verified", false, "Mark the member as verified")
	return cmd
}

func newMembersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <member-id>",
		Short: "Show one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			member, err := a.client.GetMember(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderer.Member(member)
		},
	}
}

func newMembersListCmd() *cobra.Command {
	var (
		role         string
		verifiedOnly bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			list, err := a.client.ListMembers(cmd.Context(), role, verifiedOnly)
			if err != nil {
				return err
			}
			return a.renderer.Members(list.Items)
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Only members with this role")
	cmd.Flags().BoolVar(&verifiedOnly, "verified", false, "Only verified members")
	return cmd
}
