package mcp

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ajofund/ajo/internal/auth"
	"github.com/ajofund/ajo/internal/group/service"
	"github.com/ajofund/ajo/internal/storage/bbolt"
)

type harness struct {
	server *Server
	priv   ed25519.PrivateKey
	clock  *testClock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newHarness(t *testing.T) *harness {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	store, err := bbolt.Open(filepath.Join(t.TempDir(), "ajo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	clock := &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := service.New(store, service.WithClock(clock.Now))
	grants := auth.GrantConfig{
		Issuer:   "wallet-service",
		Audience: "ajo",
		Key:      pub,
		Now:      clock.Now,
	}
	return &harness{server: New(svc, grants), priv: priv, clock: clock}
}

// grantFor signs a one-hour approval grant for the principal.
func (h *harness) grantFor(t *testing.T, principal string) string {
	t.Helper()
	header := map[string]any{"alg": "EdDSA", "typ": "JWT"}
	payload := map[string]any{
		"iss":       "wallet-service",
		"aud":       "ajo",
		"exp":       h.clock.Now().Add(time.Hour).Unix(),
		"jti":       "jti-" + principal,
		"principal": principal,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	signature := ed25519.Sign(h.priv, []byte(signingInput))
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)
}

func (h *harness) createGroup(t *testing.T) uint64 {
	t.Helper()
	ctx := context.Background()
	_, created, err := h.server.createGroupHandler()(ctx, nil, CreateGroupInput{
		Creator:            "alice",
		ContributionAmount: 100_000_000,
		CycleDurationSecs:  604800,
		MaxMembers:         3,
		GracePeriodSecs:    86400,
		PenaltyRate:        5,
		ApprovalGrant:      h.grantFor(t, "alice"),
	})
	if err != nil {
		t.Fatalf("create group tool: %v", err)
	}
	for _, member := range []string{"bob", "carol"} {
		_, joined, err := h.server.joinGroupHandler()(ctx, nil, JoinGroupInput{
			GroupID:       created.GroupID,
			Member:        member,
			ApprovalGrant: h.grantFor(t, member),
		})
		if err != nil {
			t.Fatalf("join tool %s: %v", member, err)
		}
		if joined.Member != member {
			t.Fatalf("expected joined member %s, got %s", member, joined.Member)
		}
	}
	return created.GroupID
}

func TestCreateAndReadGroupTools(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.createGroup(t)

	_, g, err := h.server.getGroupHandler()(ctx, nil, GroupLookupInput{GroupID: id})
	if err != nil {
		t.Fatalf("get group tool: %v", err)
	}
	if g.Creator != "alice" || g.CycleDurationSecs != 604800 || g.State != "active" {
		t.Fatalf("unexpected group result: %+v", g)
	}
	if len(g.Members) != 3 {
		t.Fatalf("expected 3 members, got %v", g.Members)
	}

	_, members, err := h.server.listMembersHandler()(ctx, nil, GroupLookupInput{GroupID: id})
	if err != nil {
		t.Fatalf("list members tool: %v", err)
	}
	if len(members.Members) != 3 || members.Members[0] != "alice" {
		t.Fatalf("expected payout order with alice first, got %v", members.Members)
	}
}

func TestGrantPrincipalMismatchRejected(t *testing.T) {
	h := newHarness(t)

	// A grant for mallory cannot authorize alice's group creation.
	_, _, err := h.server.createGroupHandler()(context.Background(), nil, CreateGroupInput{
		Creator:            "alice",
		ContributionAmount: 100_000_000,
		CycleDurationSecs:  604800,
		MaxMembers:         3,
		GracePeriodSecs:    86400,
		PenaltyRate:        5,
		ApprovalGrant:      h.grantFor(t, "mallory"),
	})
	if err == nil || !strings.Contains(err.Error(), "APPROVAL_GRANT_MISMATCH") {
		t.Fatalf("expected grant mismatch error, got %v", err)
	}
}

func TestContributeAndStatusTools(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.createGroup(t)

	_, contributed, err := h.server.contributeHandler()(ctx, nil, ContributeInput{
		GroupID:       id,
		Member:        "bob",
		ApprovalGrant: h.grantFor(t, "bob"),
	})
	if err != nil {
		t.Fatalf("contribute tool: %v", err)
	}
	if contributed.IsLate || contributed.PenaltyAmount != 0 || contributed.Cycle != 1 {
		t.Fatalf("expected on-time contribution, got %+v", contributed)
	}

	_, status, err := h.server.contributionStatusHandler()(ctx, nil, ContributionStatusInput{GroupID: id, Cycle: 1})
	if err != nil {
		t.Fatalf("contribution status tool: %v", err)
	}
	if len(status.Contributed) != 1 || status.Contributed[0] != "bob" {
		t.Fatalf("expected bob contributed, got %v", status.Contributed)
	}
	if len(status.Pending) != 2 {
		t.Fatalf("expected 2 pending members, got %v", status.Pending)
	}

	_, reliability, err := h.server.memberReliabilityHandler()(ctx, nil, MemberRecordInput{GroupID: id, Member: "bob"})
	if err != nil {
		t.Fatalf("reliability tool: %v", err)
	}
	if reliability.ReliabilityScore != 100 || reliability.OnTimeCount != 1 {
		t.Fatalf("expected full reliability, got %+v", reliability)
	}

	_, detail, err := h.server.contributionDetailHandler()(ctx, nil, ContributionDetailInput{GroupID: id, Cycle: 1, Member: "bob"})
	if err != nil {
		t.Fatalf("contribution detail tool: %v", err)
	}
	if detail.Member != "bob" || detail.IsLate || detail.Timestamp == "" {
		t.Fatalf("expected on-time bob record, got %+v", detail)
	}
	if _, _, err := h.server.contributionDetailHandler()(ctx, nil, ContributionDetailInput{GroupID: id, Cycle: 1, Member: "carol"}); err == nil {
		t.Fatal("expected missing contribution record to fail")
	}

	_, pool, err := h.server.penaltyPoolHandler()(ctx, nil, ContributionStatusInput{GroupID: id, Cycle: 1})
	if err != nil {
		t.Fatalf("penalty pool tool: %v", err)
	}
	if pool.PenaltyPool != 0 {
		t.Fatalf("expected empty penalty pool, got %d", pool.PenaltyPool)
	}

	_, membership, err := h.server.isMemberHandler()(ctx, nil, MemberRecordInput{GroupID: id, Member: "bob"})
	if err != nil {
		t.Fatalf("is member tool: %v", err)
	}
	if !membership.IsMember {
		t.Fatal("expected bob to be a member")
	}
	_, membership, err = h.server.isMemberHandler()(ctx, nil, MemberRecordInput{GroupID: id, Member: "mallory"})
	if err != nil {
		t.Fatalf("is member tool: %v", err)
	}
	if membership.IsMember {
		t.Fatal("expected mallory not to be a member")
	}

	_, complete, err := h.server.isCompleteHandler()(ctx, nil, GroupLookupInput{GroupID: id})
	if err != nil {
		t.Fatalf("is complete tool: %v", err)
	}
	if complete.IsComplete {
		t.Fatal("expected group not complete")
	}
}

func TestExecutePayoutTool(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.createGroup(t)

	for _, member := range []string{"alice", "bob", "carol"} {
		if _, _, err := h.server.contributeHandler()(ctx, nil, ContributeInput{
			GroupID:       id,
			Member:        member,
			ApprovalGrant: h.grantFor(t, member),
		}); err != nil {
			t.Fatalf("contribute tool %s: %v", member, err)
		}
	}

	h.clock.Advance(604800*time.Second + 86400*time.Second)
	_, payout, err := h.server.executePayoutHandler()(ctx, nil, GroupLookupInput{GroupID: id})
	if err != nil {
		t.Fatalf("payout tool: %v", err)
	}
	if payout.Recipient != "alice" || payout.Amount != 300_000_000 {
		t.Fatalf("expected alice paid 300000000, got %+v", payout)
	}
	if payout.CurrentCycle != 2 || payout.PayoutIndex != 1 || payout.IsComplete {
		t.Fatalf("expected advanced rotation, got %+v", payout)
	}
}

func TestMetadataTools(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.createGroup(t)

	_, _, err := h.server.setMetadataHandler()(ctx, nil, SetMetadataInput{
		GroupID:       id,
		Principal:     "alice",
		Name:          "lagos circle",
		Description:   "weekly savings",
		ApprovalGrant: h.grantFor(t, "alice"),
	})
	if err != nil {
		t.Fatalf("set metadata tool: %v", err)
	}

	_, md, err := h.server.getMetadataHandler()(ctx, nil, GroupLookupInput{GroupID: id})
	if err != nil {
		t.Fatalf("get metadata tool: %v", err)
	}
	if md.Name != "lagos circle" || md.Description != "weekly savings" {
		t.Fatalf("unexpected metadata: %+v", md)
	}
}

func TestAdminTools(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, initialized, err := h.server.initializeHandler()(ctx, nil, InitializeInput{
		Admin:         "root",
		ApprovalGrant: h.grantFor(t, "root"),
	})
	if err != nil {
		t.Fatalf("initialize tool: %v", err)
	}
	if initialized.Admin != "root" {
		t.Fatalf("expected admin root, got %s", initialized.Admin)
	}

	_, paused, err := h.server.pauseHandler()(ctx, nil, PauseInput{
		Principal:     "root",
		ApprovalGrant: h.grantFor(t, "root"),
	})
	if err != nil {
		t.Fatalf("pause tool: %v", err)
	}
	if !paused.Paused {
		t.Fatal("expected paused result")
	}

	_, _, err = h.server.createGroupHandler()(ctx, nil, CreateGroupInput{
		Creator:            "alice",
		ContributionAmount: 100_000_000,
		CycleDurationSecs:  604800,
		MaxMembers:         3,
		GracePeriodSecs:    86400,
		PenaltyRate:        5,
		ApprovalGrant:      h.grantFor(t, "alice"),
	})
	if err == nil || !strings.Contains(err.Error(), "ENGINE_PAUSED") {
		t.Fatalf("expected paused rejection, got %v", err)
	}

	if _, _, err := h.server.unpauseHandler()(ctx, nil, PauseInput{
		Principal:     "root",
		ApprovalGrant: h.grantFor(t, "root"),
	}); err != nil {
		t.Fatalf("unpause tool: %v", err)
	}
}
