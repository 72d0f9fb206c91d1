package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group"
	apperrors "github.com/ajofund/ajo/internal/platform/errors"
)

// approver builds the per-call approval capability from the request's grant.
func (s *Server) approver(grant string) auth.Approver {
	return auth.GrantApprover{Grant: grant, Config: s.grants}
}

// toolError surfaces the machine-readable code in the tool error text, since
// MCP clients only see the message string.
func toolError(op string, err error) error {
	if code := apperrors.GetCode(err); code != apperrors.CodeUnknown {
		return fmt.Errorf("%s: %s: %w", op, code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func groupResult(g group.Group) GroupResult {
	return GroupResult{
		GroupID:            g.ID,
		Creator:            g.Creator,
		ContributionAmount: g.ContributionAmount,
		CycleDurationSecs:  int64(g.CycleDuration.Seconds()),
		GracePeriodSecs:    int64(g.GracePeriod.Seconds()),
		PenaltyRate:        g.PenaltyRate,
		MaxMembers:         g.MaxMembers,
		Members:            g.Members,
		CurrentCycle:       g.CurrentCycle,
		PayoutIndex:        g.PayoutIndex,
		State:              string(g.State),
		IsComplete:         g.IsComplete,
		CreatedAt:          formatTime(g.CreatedAt),
		CycleStartTime:     formatTime(g.CycleStartTime),
	}
}

func refundRequestResult(req group.RefundRequest) RefundRequestResult {
	return RefundRequestResult{
		GroupID:         req.GroupID,
		Requester:       req.Requester,
		CreatedAt:       formatTime(req.CreatedAt),
		VotingDeadline:  formatTime(req.VotingDeadline),
		VotesFor:        req.VotesFor,
		VotesAgainst:    req.VotesAgainst,
		Executed:        req.Executed,
		Approved:        req.Approved,
		ApprovalPercent: req.ApprovalPercent(),
	}
}

func (s *Server) initializeHandler() mcp.ToolHandlerFor[InitializeInput, InitializeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InitializeInput) (*mcp.CallToolResult, InitializeResult, error) {
		if err := s.svc.Initialize(ctx, s.approver(input.ApprovalGrant), input.Admin); err != nil {
			return nil, InitializeResult{}, toolError("initialize failed", err)
		}
		return nil, InitializeResult{Admin: input.Admin}, nil
	}
}

func (s *Server) pauseHandler() mcp.ToolHandlerFor[PauseInput, PauseResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PauseInput) (*mcp.CallToolResult, PauseResult, error) {
		if err := s.svc.Pause(ctx, s.approver(input.ApprovalGrant), input.Principal); err != nil {
			return nil, PauseResult{}, toolError("pause failed", err)
		}
		return nil, PauseResult{Paused: true}, nil
	}
}

func (s *Server) unpauseHandler() mcp.ToolHandlerFor[PauseInput, PauseResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PauseInput) (*mcp.CallToolResult, PauseResult, error) {
		if err := s.svc.Unpause(ctx, s.approver(input.ApprovalGrant), input.Principal); err != nil {
			return nil, PauseResult{}, toolError("unpause failed", err)
		}
		return nil, PauseResult{Paused: false}, nil
	}
}

func (s *Server) createGroupHandler() mcp.ToolHandlerFor[CreateGroupInput, CreateGroupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateGroupInput) (*mcp.CallToolResult, CreateGroupResult, error) {
		id, err := s.svc.CreateGroup(ctx, s.approver(input.ApprovalGrant), group.CreateGroupInput{
			Creator:            input.Creator,
			ContributionAmount: input.ContributionAmount,
			CycleDuration:      time.Duration(input.CycleDurationSecs) * time.Second,
			MaxMembers:         input.MaxMembers,
			GracePeriod:        time.Duration(input.GracePeriodSecs) * time.Second,
			PenaltyRate:        input.PenaltyRate,
		})
		if err != nil {
			return nil, CreateGroupResult{}, toolError("group create failed", err)
		}
		return nil, CreateGroupResult{GroupID: id}, nil
	}
}

func (s *Server) joinGroupHandler() mcp.ToolHandlerFor[JoinGroupInput, JoinGroupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input JoinGroupInput) (*mcp.CallToolResult, JoinGroupResult, error) {
		if err := s.svc.JoinGroup(ctx, s.approver(input.ApprovalGrant), input.GroupID, input.Member); err != nil {
			return nil, JoinGroupResult{}, toolError("group join failed", err)
		}
		members, err := s.svc.ListMembers(ctx, input.GroupID)
		if err != nil {
			return nil, JoinGroupResult{}, toolError("group join readback failed", err)
		}
		return nil, JoinGroupResult{
			GroupID:     input.GroupID,
			Member:      input.Member,
			MemberCount: len(members),
		}, nil
	}
}

func (s *Server) getGroupHandler() mcp.ToolHandlerFor[GroupLookupInput, GroupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GroupLookupInput) (*mcp.CallToolResult, GroupResult, error) {
		g, err := s.svc.GetGroup(ctx, input.GroupID)
		if err != nil {
			return nil, GroupResult{}, toolError("group read failed", err)
		}
		return nil, groupResult(g), nil
	}
}

func (s *Server) groupStatusHandler() mcp.ToolHandlerFor[GroupLookupInput, GroupStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GroupLookupInput) (*mcp.CallToolResult, GroupStatusResult, error) {
		status, err := s.svc.GetGroupStatus(ctx, input.GroupID)
		if err != nil {
			return nil, GroupStatusResult{}, toolError("group status failed", err)
		}
		return nil, GroupStatusResult{
			GroupID:            status.GroupID,
			State:              string(status.State),
			IsComplete:         status.IsComplete,
			CurrentCycle:       status.CurrentCycle,
			PayoutIndex:        status.PayoutIndex,
			NextRecipient:      status.NextRecipient,
			MemberCount:        status.MemberCount,
			ContributedCount:   status.ContributedCount,
			PendingMembers:     status.PendingMembers,
			CycleStartTime:     formatTime(status.CycleStartTime),
			CycleEndTime:       formatTime(status.CycleEndTime),
			GracePeriodEndTime: formatTime(status.GracePeriodEndTime),
			IsCycleActive:      status.IsCycleActive,
			IsInGracePeriod:    status.IsInGracePeriod,
			PenaltyPool:        status.PenaltyPool,
		}, nil
	}
}

func (s *Server) listMembersHandler() mcp.ToolHandlerFor[GroupLookupInput, ListMembersResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GroupLookupInput) (*mcp.CallToolResult, ListMembersResult, error) {
		members, err := s.svc.ListMembers(ctx, input.GroupID)
		if err != nil {
			return nil, ListMembersResult{}, toolError("member list failed", err)
		}
		return nil, ListMembersResult{GroupID: input.GroupID, Members: members}, nil
	}
}

func (s *Server) setMetadataHandler() mcp.ToolHandlerFor[SetMetadataInput, MetadataResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetMetadataInput) (*mcp.CallToolResult, MetadataResult, error) {
		md := group.GroupMetadata{
			Name:        input.Name,
			Description: input.Description,
			Rules:       input.Rules,
		}
		if err := s.svc.SetGroupMetadata(ctx, s.approver(input.ApprovalGrant), input.GroupID, input.Principal, md); err != nil {
			return nil, MetadataResult{}, toolError("metadata set failed", err)
		}
		return nil, MetadataResult{
			GroupID:     input.GroupID,
			Name:        input.Name,
			Description: input.Description,
			Rules:       input.Rules,
		}, nil
	}
}

func (s *Server) getMetadataHandler() mcp.ToolHandlerFor[GroupLookupInput, MetadataResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GroupLookupInput) (*mcp.CallToolResult, MetadataResult, error) {
		md, err := s.svc.GetGroupMetadata(ctx, input.GroupID)
		if err != nil {
			return nil, MetadataResult{}, toolError("metadata read failed", err)
		}
		return nil, MetadataResult{
			GroupID:     md.GroupID,
			Name:        md.Name,
			Description: md.Description,
			Rules:       md.Rules,
		}, nil
	}
}

func (s *Server) contributeHandler() mcp.ToolHandlerFor[ContributeInput, ContributeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContributeInput) (*mcp.CallToolResult, ContributeResult, error) {
		if err := s.svc.Contribute(ctx, s.approver(input.ApprovalGrant), input.GroupID, input.Member); err != nil {
			return nil, ContributeResult{}, toolError("contribution failed", err)
		}
		g, err := s.svc.GetGroup(ctx, input.GroupID)
		if err != nil {
			return nil, ContributeResult{}, toolError("contribution readback failed", err)
		}
		rec, err := s.svc.GetContributionDetail(ctx, input.GroupID, g.CurrentCycle, input.Member)
		if err != nil {
			return nil, ContributeResult{}, toolError("contribution readback failed", err)
		}
		return nil, ContributeResult{
			GroupID:       rec.GroupID,
			Cycle:         rec.Cycle,
			Member:        rec.Member,
			IsLate:        rec.IsLate,
			PenaltyAmount: rec.PenaltyAmount,
		}, nil
	}
}

func (s *Server) contributionStatusHandler() mcp.ToolHandlerFor[ContributionStatusInput, ContributionStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContributionStatusInput) (*mcp.CallToolResult, ContributionStatusResult, error) {
		status, err := s.svc.GetContributionStatus(ctx, input.GroupID, input.Cycle)
		if err != nil {
			return nil, ContributionStatusResult{}, toolError("contribution status failed", err)
		}
		pool, err := s.svc.GetCyclePenaltyPool(ctx, input.GroupID, input.Cycle)
		if err != nil {
			return nil, ContributionStatusResult{}, toolError("penalty pool read failed", err)
		}
		return nil, ContributionStatusResult{
			GroupID:     status.GroupID,
			Cycle:       status.Cycle,
			Contributed: status.Contributed,
			Pending:     status.Pending,
			PenaltyPool: pool,
		}, nil
	}
}

func (s *Server) isMemberHandler() mcp.ToolHandlerFor[MemberRecordInput, IsMemberResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MemberRecordInput) (*mcp.CallToolResult, IsMemberResult, error) {
		ok, err := s.svc.IsMember(ctx, input.GroupID, input.Member)
		if err != nil {
			return nil, IsMemberResult{}, toolError("membership check failed", err)
		}
		return nil, IsMemberResult{GroupID: input.GroupID, Member: input.Member, IsMember: ok}, nil
	}
}

func (s *Server) isCompleteHandler() mcp.ToolHandlerFor[GroupLookupInput, IsCompleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GroupLookupInput) (*mcp.CallToolResult, IsCompleteResult, error) {
		complete, err := s.svc.IsComplete(ctx, input.GroupID)
		if err != nil {
			return nil, IsCompleteResult{}, toolError("completion check failed", err)
		}
		return nil, IsCompleteResult{GroupID: input.GroupID, IsComplete: complete}, nil
	}
}

func (s *Server) contributionDetailHandler() mcp.ToolHandlerFor[ContributionDetailInput, ContributionDetailResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContributionDetailInput) (*mcp.CallToolResult, ContributionDetailResult, error) {
		rec, err := s.svc.GetContributionDetail(ctx, input.GroupID, input.Cycle, input.Member)
		if err != nil {
			return nil, ContributionDetailResult{}, toolError("contribution read failed", err)
		}
		return nil, ContributionDetailResult{
			GroupID:       rec.GroupID,
			Cycle:         rec.Cycle,
			Member:        rec.Member,
			Timestamp:     formatTime(rec.Timestamp),
			IsLate:        rec.IsLate,
			PenaltyAmount: rec.PenaltyAmount,
		}, nil
	}
}

func (s *Server) penaltyPoolHandler() mcp.ToolHandlerFor[ContributionStatusInput, PenaltyPoolResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContributionStatusInput) (*mcp.CallToolResult, PenaltyPoolResult, error) {
		pool, err := s.svc.GetCyclePenaltyPool(ctx, input.GroupID, input.Cycle)
		if err != nil {
			return nil, PenaltyPoolResult{}, toolError("penalty pool read failed", err)
		}
		return nil, PenaltyPoolResult{GroupID: input.GroupID, Cycle: input.Cycle, PenaltyPool: pool}, nil
	}
}

func (s *Server) memberReliabilityHandler() mcp.ToolHandlerFor[MemberRecordInput, MemberReliabilityResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MemberRecordInput) (*mcp.CallToolResult, MemberReliabilityResult, error) {
		rec, err := s.svc.GetMemberPenaltyRecord(ctx, input.GroupID, input.Member)
		if err != nil {
			return nil, MemberReliabilityResult{}, toolError("reliability read failed", err)
		}
		return nil, MemberReliabilityResult{
			GroupID:          rec.GroupID,
			Member:           rec.Member,
			LateCount:        rec.LateCount,
			OnTimeCount:      rec.OnTimeCount,
			TotalPenalties:   rec.TotalPenalties,
			ReliabilityScore: rec.ReliabilityScore,
		}, nil
	}
}

func (s *Server) executePayoutHandler() mcp.ToolHandlerFor[GroupLookupInput, ExecutePayoutResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GroupLookupInput) (*mcp.CallToolResult, ExecutePayoutResult, error) {
		before, err := s.svc.GetGroup(ctx, input.GroupID)
		if err != nil {
			return nil, ExecutePayoutResult{}, toolError("payout failed", err)
		}
		pool, err := s.svc.GetCyclePenaltyPool(ctx, input.GroupID, before.CurrentCycle)
		if err != nil {
			return nil, ExecutePayoutResult{}, toolError("payout failed", err)
		}
		recipient, err := before.NextRecipient()
		if err != nil {
			return nil, ExecutePayoutResult{}, toolError("payout failed", err)
		}
		if err := s.svc.ExecutePayout(ctx, input.GroupID); err != nil {
			return nil, ExecutePayoutResult{}, toolError("payout failed", err)
		}
		after, err := s.svc.GetGroup(ctx, input.GroupID)
		if err != nil {
			return nil, ExecutePayoutResult{}, toolError("payout readback failed", err)
		}
		return nil, ExecutePayoutResult{
			GroupID:      input.GroupID,
			Recipient:    recipient,
			Amount:       before.BasePayout() + pool,
			PenaltyBonus: pool,
			CurrentCycle: after.CurrentCycle,
			PayoutIndex:  after.PayoutIndex,
			IsComplete:   after.IsComplete,
		}, nil
	}
}

func (s *Server) cancelGroupHandler() mcp.ToolHandlerFor[CancelGroupInput, CancelGroupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CancelGroupInput) (*mcp.CallToolResult, CancelGroupResult, error) {
		if err := s.svc.CancelGroup(ctx, s.approver(input.ApprovalGrant), input.GroupID, input.Principal); err != nil {
			return nil, CancelGroupResult{}, toolError("group cancel failed", err)
		}
		return nil, CancelGroupResult{GroupID: input.GroupID, State: string(group.StateCancelled)}, nil
	}
}

func (s *Server) requestRefundHandler() mcp.ToolHandlerFor[RequestRefundInput, RequestRefundResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RequestRefundInput) (*mcp.CallToolResult, RequestRefundResult, error) {
		if err := s.svc.RequestRefund(ctx, s.approver(input.ApprovalGrant), input.GroupID, input.Requester); err != nil {
			return nil, RequestRefundResult{}, toolError("refund request failed", err)
		}
		req, err := s.svc.GetRefundRequest(ctx, input.GroupID)
		if err != nil {
			return nil, RequestRefundResult{}, toolError("refund request readback failed", err)
		}
		return nil, RequestRefundResult{
			GroupID:        input.GroupID,
			Requester:      req.Requester,
			VotingDeadline: formatTime(req.VotingDeadline),
		}, nil
	}
}

func (s *Server) voteRefundHandler() mcp.ToolHandlerFor[VoteRefundInput, VoteRefundResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input VoteRefundInput) (*mcp.CallToolResult, VoteRefundResult, error) {
		if err := s.svc.VoteRefund(ctx, s.approver(input.ApprovalGrant), input.GroupID, input.Voter, input.InFavor); err != nil {
			return nil, VoteRefundResult{}, toolError("refund vote failed", err)
		}
		req, err := s.svc.GetRefundRequest(ctx, input.GroupID)
		if err != nil {
			return nil, VoteRefundResult{}, toolError("refund vote readback failed", err)
		}
		return nil, VoteRefundResult{
			GroupID:      input.GroupID,
			VotesFor:     req.VotesFor,
			VotesAgainst: req.VotesAgainst,
		}, nil
	}
}

func (s *Server) executeRefundHandler() mcp.ToolHandlerFor[GroupLookupInput, ExecuteRefundResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GroupLookupInput) (*mcp.CallToolResult, ExecuteRefundResult, error) {
		err := s.svc.ExecuteRefund(ctx, input.GroupID)
		// A failed vote is a decided outcome, not a tool failure.
		if err != nil && !apperrors.IsCode(err, apperrors.CodeRefundNotApproved) {
			return nil, ExecuteRefundResult{}, toolError("refund execution failed", err)
		}
		req, readErr := s.svc.GetRefundRequest(ctx, input.GroupID)
		if readErr != nil {
			return nil, ExecuteRefundResult{}, toolError("refund execution readback failed", readErr)
		}
		g, readErr := s.svc.GetGroup(ctx, input.GroupID)
		if readErr != nil {
			return nil, ExecuteRefundResult{}, toolError("refund execution readback failed", readErr)
		}
		return nil, ExecuteRefundResult{
			GroupID:         input.GroupID,
			Approved:        req.Approved,
			ApprovalPercent: req.ApprovalPercent(),
			State:           string(g.State),
		}, nil
	}
}

func (s *Server) emergencyRefundHandler() mcp.ToolHandlerFor[EmergencyRefundInput, CancelGroupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EmergencyRefundInput) (*mcp.CallToolResult, CancelGroupResult, error) {
		if err := s.svc.EmergencyRefund(ctx, s.approver(input.ApprovalGrant), input.GroupID, input.Admin); err != nil {
			return nil, CancelGroupResult{}, toolError("emergency refund failed", err)
		}
		return nil, CancelGroupResult{GroupID: input.GroupID, State: string(group.StateCancelled)}, nil
	}
}

func (s *Server) refundRequestStatusHandler() mcp.ToolHandlerFor[GroupLookupInput, RefundRequestResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GroupLookupInput) (*mcp.CallToolResult, RefundRequestResult, error) {
		req, err := s.svc.GetRefundRequest(ctx, input.GroupID)
		if err != nil {
			return nil, RefundRequestResult{}, toolError("refund request read failed", err)
		}
		return nil, refundRequestResult(req), nil
	}
}

func (s *Server) refundRecordHandler() mcp.ToolHandlerFor[MemberRecordInput, RefundRecordResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MemberRecordInput) (*mcp.CallToolResult, RefundRecordResult, error) {
		rec, err := s.svc.GetRefundRecord(ctx, input.GroupID, input.Member)
		if err != nil {
			return nil, RefundRecordResult{}, toolError("refund record read failed", err)
		}
		return nil, RefundRecordResult{
			GroupID:   rec.GroupID,
			Member:    rec.Member,
			Amount:    rec.Amount,
			Timestamp: formatTime(rec.Timestamp),
			Reason:    string(rec.Reason),
		}, nil
	}
}
