package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	governancehttp "govengine/contexts/governance/proposal-engine/transport/http"
)

// APIError is a non-2xx response from the governance API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("governance api returned %d", e.Status)
	}
	return fmt.Sprintf("%s: %s (%d)", e.Code, e.Message, e.Status)
}

// Client is a thin JSON client for the /v1/governance routes.
type Client struct {
	baseURL  string
	memberID string
	http     *http.Client
}

func NewClient(baseURL string, memberID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		memberID: strings.TrimSpace(memberID),
		http:     &http.Client{Timeout: timeout},
	}
}

// WithMember returns a copy of c that acts as memberID.
func (c *Client) WithMember(memberID string) *Client {
	clone := *c
	clone.memberID = strings.TrimSpace(memberID)
	return &clone
}

func (c *Client) RegisterMember(ctx context.Context, req governancehttp.RegisterMemberRequest) (governancehttp.MemberResponse, error) {
	var out governancehttp.MemberResponse
	err := c.do(ctx, http.MethodPost, "/v1/governance/members", req, &out)
	return out, err
}

func (c *Client) GetMember(ctx context.Context, memberID string) (governancehttp.MemberResponse, error) {
	var out governancehttp.MemberResponse
	err := c.do(ctx, http.MethodGet, "/v1/governance/members/"+url.PathEscape(memberID), nil, &out)
	return out, err
}

func (c *Client) ListMembers(ctx context.Context, role string, verifiedOnly bool) (governancehttp.MemberListResponse, error) {
	query := url.Values{}
	if role != "" {
		query.Set("role", role)
	}
	if verifiedOnly {
		query.Set("verified", "true")
	}
	var out governancehttp.MemberListResponse
	err := c.do(ctx, http.MethodGet, withQuery("/v1/governance/members", query), nil, &out)
	return out, err
}

func (c *Client) CreateProposal(ctx context.Context, req governancehttp.CreateProposalRequest) (governancehttp.ProposalResponse, error) {
	var out governancehttp.ProposalResponse
	err := c.do(ctx, http.MethodPost, "/v1/governance/proposals", req, &out)
	return out, err
}

func (c *Client) GetProposal(ctx context.Context, proposalID string) (governancehttp.ProposalResponse, error) {
	var out governancehttp.ProposalResponse
	err := c.do(ctx, http.MethodGet, proposalPath(proposalID, ""), nil, &out)
	return out, err
}

func (c *Client) ListProposals(ctx context.Context, status string, category string, proposerID string) (governancehttp.ProposalListResponse, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if category != "" {
		query.Set("category", category)
	}
	if proposerID != "" {
		query.Set("proposer_id", proposerID)
	}
	var out governancehttp.ProposalListResponse
	err := c.do(ctx, http.MethodGet, withQuery("/v1/governance/proposals", query), nil, &out)
	return out, err
}

func (c *Client) ListVotes(ctx context.Context, proposalID string) (governancehttp.VoteListResponse, error) {
	var out governancehttp.VoteListResponse
	err := c.do(ctx, http.MethodGet, proposalPath(proposalID, "votes"), nil, &out)
	return out, err
}

func (c *Client) CastVote(ctx context.Context, proposalID string, req governancehttp.CastVoteRequest) (governancehttp.CastVoteResponse, error) {
	var out governancehttp.CastVoteResponse
	err := c.do(ctx, http.MethodPost, proposalPath(proposalID, "votes"), req, &out)
	return out, err
}

func (c *Client) FinalizeProposal(ctx context.Context, proposalID string) (governancehttp.ProposalResponse, error) {
	var out governancehttp.ProposalResponse
	err := c.do(ctx, http.MethodPost, proposalPath(proposalID, "finalize"), nil, &out)
	return out, err
}

func (c *Client) ExecuteProposal(ctx context.Context, proposalID string, req governancehttp.ExecuteProposalRequest) (governancehttp.ExecuteProposalResponse, error) {
	var out governancehttp.ExecuteProposalResponse
	err := c.do(ctx, http.MethodPost, proposalPath(proposalID, "execute"), req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.memberID != "" {
		req.Header.Set("X-Member-Id", c.memberID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var decoded governancehttp.ErrorResponse
		if json.Unmarshal(raw, &decoded) == nil {
			apiErr.Code = decoded.Code
			apiErr.Message = decoded.Message
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func proposalPath(proposalID string, suffix string) string {
	path := "/v1/governance/proposals/" + url.PathEscape(proposalID)
	if suffix != "" {
		path += "/" + suffix
	}
	return path
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
