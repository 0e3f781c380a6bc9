package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	proposalengine "govengine/contexts/governance/proposal-engine"
	"govengine/contexts/governance/proposal-engine/application/commands"
	governancehttp "govengine/contexts/governance/proposal-engine/transport/http"
	"govengine/internal/platform/httpserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGovernanceServer(t *testing.T) *httptest.Server {
	t.Helper()
	module := proposalengine.NewInMemoryModule(nil, commands.DefaultProposalDefaults(), nil)
	server := httptest.NewServer(httpserver.New(module, httpserver.Options{}, nil, ":0").Handler())
	t.Cleanup(server.Close)
	return server
}

func runGovctl(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", serverURL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMembersRegisterAndGet(t *testing.T) {
	server := newGovernanceServer(t)

	out, err := runGovctl(t, server.URL, "-o", "json", "members", "register", "alice", "--power", "25", "--role", "admin", "--verified")
	require.NoError(t, err)

	var member governancehttp.MemberResponse
	require.NoError(t, json.Unmarshal([]byte(out), &member))
	assert.Equal(t, "alice", member.MemberID)
	assert.Equal(t, 25.0, member.VotingPower)
	assert.Equal(t, "admin", member.Role)
	assert.True(t, member.Verified)

	out, err = runGovctl(t, server.URL, "members", "get", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "25")
}

func TestMembersGetMissingReturnsAPIError(t *testing.T) {
	server := newGovernanceServer(t)

	_, err := runGovctl(t, server.URL, "members", "get", "ghost")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "member_not_found", apiErr.Code)
}

func TestProposalLifecycleThroughCLI(t *testing.T) {
	server := newGovernanceServer(t)

	_, err := runGovctl(t, server.URL, "members", "register", "alice", "--power", "10")
	require.NoError(t, err)

	out, err := runGovctl(t, server.URL, "-o", "json", "--member", "alice",
		"proposals", "create", "--title", "Raise fee cap", "--voting-period", "24h", "--quorum", "0.4")
	require.NoError(t, err)
	var proposal governancehttp.ProposalResponse
	require.NoError(t, json.Unmarshal([]byte(out), &proposal))
	assert.Equal(t, "active", proposal.Status)
	assert.Equal(t, "alice", proposal.ProposerID)
	assert.Equal(t, 0.4, proposal.QuorumThreshold)

	out, err = runGovctl(t, server.URL, "-o", "json", "--member", "alice", "proposals", "vote", proposal.ProposalID, "for")
	require.NoError(t, err)
	var vote governancehttp.CastVoteResponse
	require.NoError(t, json.Unmarshal([]byte(out), &vote))
	assert.Equal(t, 10.0, vote.Tallies.For)

	_, err = runGovctl(t, server.URL, "--member", "alice", "proposals", "vote", proposal.ProposalID, "against")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "duplicate_vote", apiErr.Code)

	out, err = runGovctl(t, server.URL, "-o", "json", "proposals", "votes", proposal.ProposalID)
	require.NoError(t, err)
	var votes governancehttp.VoteListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &votes))
	require.Len(t, votes.Items, 1)
	assert.Equal(t, "alice", votes.Items[0].VoterID)

	out, err = runGovctl(t, server.URL, "-o", "json", "proposals", "finalize", proposal.ProposalID)
	require.NoError(t, err)
	var finalized governancehttp.ProposalResponse
	require.NoError(t, json.Unmarshal([]byte(out), &finalized))
	assert.Equal(t, "approved", finalized.Status)
	require.NotNil(t, finalized.Result)
	assert.True(t, finalized.Result.EarlyFinalization)

	_, err = runGovctl(t, server.URL, "proposals", "execute", proposal.ProposalID, "--context", `{"fee_cap":3}`)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "execution_delay_not_elapsed", apiErr.Code)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestProposalsListTable(t *testing.T) {
	server := newGovernanceServer(t)

	_, err := runGovctl(t, server.URL, "members", "register", "bob")
	require.NoError(t, err)
	_, err = runGovctl(t, server.URL, "proposals", "create", "--proposer", "bob", "--title", "Treasury grant", "--category", "treasury")
	require.NoError(t, err)

	out, err := runGovctl(t, server.URL, "proposals", "list", "--category", "treasury")
	require.NoError(t, err)
	assert.Contains(t, out, "Treasury grant")

	out, err = runGovctl(t, server.URL, "proposals", "list", "--category", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "No proposals found")
}

func TestVoteRequiresVoter(t *testing.T) {
	server := newGovernanceServer(t)
	_, err := runGovctl(t, server.URL, "proposals", "vote", "p-1", "for")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voter is required")
}

func TestUnknownOutputFormat(t *testing.T) {
	server := newGovernanceServer(t)
	_, err := runGovctl(t, server.URL, "-o", "yaml", "members", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestServerFromEnvironment(t *testing.T) {
	server := newGovernanceServer(t)
	t.Setenv("GOVCTL_SERVER", server.URL)

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"members", "list"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "No members found")
}

func TestExecutionContextParsing(t *testing.T) {
	raw, err := executionContext("", "")
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = executionContext(`{"a":1}`, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	_, err = executionContext(`{"a":`, "")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "ctx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"transfer":{"to":"treasury","amount":5}}`), 0o600))
	raw, err = executionContext("", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"transfer":{"to":"treasury","amount":5}}`, string(raw))
}
