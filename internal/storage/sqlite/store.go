// Package sqlite provides the SQLite-backed store for the savings engine.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ajofund/ajo/internal/group"
	sqlitemigrate "github.com/ajofund/ajo/internal/platform/storage/sqlitemigrate"
	"github.com/ajofund/ajo/internal/storage"
	"github.com/ajofund/ajo/internal/storage/sqlite/migrations"
)

// Store persists engine state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// NextGroupID atomically increments and returns the group id counter.
func (s *Store) NextGroupID(ctx context.Context) (uint64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var next uint64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`UPDATE engine_state SET group_id_counter = group_id_counter + 1
		 WHERE id = 1 RETURNING group_id_counter`,
	)
	if err := row.Scan(&next); err != nil {
		return 0, fmt.Errorf("advance group id counter: %w", err)
	}
	return next, nil
}

// PutGroup inserts or replaces a group record.
func (s *Store) PutGroup(ctx context.Context, g group.Group) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if g.ID == 0 {
		return fmt.Errorf("group id is required")
	}
	members, err := json.Marshal(g.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO groups (
		   id, creator, contribution_amount, cycle_duration_seconds,
		   grace_period_seconds, penalty_rate, max_members, members,
		   current_cycle, payout_index, created_at, cycle_start_time,
		   is_complete, state
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID,
		g.Creator,
		g.ContributionAmount,
		int64(g.CycleDuration/time.Second),
		int64(g.GracePeriod/time.Second),
		g.PenaltyRate,
		g.MaxMembers,
		string(members),
		g.CurrentCycle,
		g.PayoutIndex,
		toMillis(g.CreatedAt),
		toMillis(g.CycleStartTime),
		boolToInt(g.IsComplete),
		string(g.State),
	)
	if err != nil {
		return fmt.Errorf("put group: %w", err)
	}
	return nil
}

// GetGroup fetches a group record by id.
func (s *Store) GetGroup(ctx context.Context, id uint64) (group.Group, error) {
	if err := s.ready(ctx); err != nil {
		return group.Group{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, creator, contribution_amount, cycle_duration_seconds,
		        grace_period_seconds, penalty_rate, max_members, members,
		        current_cycle, payout_index, created_at, cycle_start_time,
		        is_complete, state
		 FROM groups WHERE id = ?`,
		id,
	)
	var (
		g                group.Group
		cycleSeconds     int64
		graceSeconds     int64
		membersJSON      string
		createdAtMillis  int64
		cycleStartMillis int64
		isComplete       int
		state            string
	)
	err := row.Scan(
		&g.ID,
		&g.Creator,
		&g.ContributionAmount,
		&cycleSeconds,
		&graceSeconds,
		&g.PenaltyRate,
		&g.MaxMembers,
		&membersJSON,
		&g.CurrentCycle,
		&g.PayoutIndex,
		&createdAtMillis,
		&cycleStartMillis,
		&isComplete,
		&state,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return group.Group{}, storage.ErrNotFound
		}
		return group.Group{}, fmt.Errorf("get group: %w", err)
	}
	if err := json.Unmarshal([]byte(membersJSON), &g.Members); err != nil {
		return group.Group{}, fmt.Errorf("unmarshal members: %w", err)
	}
	g.CycleDuration = time.Duration(cycleSeconds) * time.Second
	g.GracePeriod = time.Duration(graceSeconds) * time.Second
	g.CreatedAt = fromMillis(createdAtMillis)
	g.CycleStartTime = fromMillis(cycleStartMillis)
	g.IsComplete = isComplete != 0
	g.State = group.State(state)
	return g, nil
}

// PutContribution inserts or replaces a contribution record.
func (s *Store) PutContribution(ctx context.Context, rec group.ContributionRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO contributions (
		   group_id, cycle, member, has_paid, contributed_at, is_late, penalty_amount
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.GroupID,
		rec.Cycle,
		rec.Member,
		boolToInt(rec.HasPaid),
		toMillis(rec.Timestamp),
		boolToInt(rec.IsLate),
		rec.PenaltyAmount,
	)
	if err != nil {
		return fmt.Errorf("put contribution: %w", err)
	}
	return nil
}

// GetContribution fetches a contribution record.
func (s *Store) GetContribution(ctx context.Context, groupID uint64, cycle int, member string) (group.ContributionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return group.ContributionRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT group_id, cycle, member, has_paid, contributed_at, is_late, penalty_amount
		 FROM contributions WHERE group_id = ? AND cycle = ? AND member = ?`,
		groupID, cycle, member,
	)
	var (
		rec     group.ContributionRecord
		hasPaid int
		paidAt  int64
		isLate  int
	)
	err := row.Scan(&rec.GroupID, &rec.Cycle, &rec.Member, &hasPaid, &paidAt, &isLate, &rec.PenaltyAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return group.ContributionRecord{}, storage.ErrNotFound
		}
		return group.ContributionRecord{}, fmt.Errorf("get contribution: %w", err)
	}
	rec.HasPaid = hasPaid != 0
	rec.Timestamp = fromMillis(paidAt)
	rec.IsLate = isLate != 0
	return rec, nil
}

// HasContribution reports whether a contribution record exists.
func (s *Store) HasContribution(ctx context.Context, groupID uint64, cycle int, member string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	return s.exists(
		ctx,
		`SELECT 1 FROM contributions WHERE group_id = ? AND cycle = ? AND member = ?`,
		groupID, cycle, member,
	)
}

// PutPenaltyRecord inserts or replaces a member penalty aggregate.
func (s *Store) PutPenaltyRecord(ctx context.Context, rec group.MemberPenaltyRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO penalty_records (
		   group_id, member, late_count, on_time_count, total_penalties, reliability_score
		 ) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.GroupID,
		rec.Member,
		rec.LateCount,
		rec.OnTimeCount,
		rec.TotalPenalties,
		rec.ReliabilityScore,
	)
	if err != nil {
		return fmt.Errorf("put penalty record: %w", err)
	}
	return nil
}

// GetPenaltyRecord fetches a member penalty aggregate.
func (s *Store) GetPenaltyRecord(ctx context.Context, groupID uint64, member string) (group.MemberPenaltyRecord, error) {
	if err := s.ready(ctx); err != nil {
		return group.MemberPenaltyRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT group_id, member, late_count, on_time_count, total_penalties, reliability_score
		 FROM penalty_records WHERE group_id = ? AND member = ?`,
		groupID, member,
	)
	var rec group.MemberPenaltyRecord
	err := row.Scan(&rec.GroupID, &rec.Member, &rec.LateCount, &rec.OnTimeCount, &rec.TotalPenalties, &rec.ReliabilityScore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return group.MemberPenaltyRecord{}, storage.ErrNotFound
		}
		return group.MemberPenaltyRecord{}, fmt.Errorf("get penalty record: %w", err)
	}
	return rec, nil
}

// AddToPenaltyPool adds a penalty amount to a cycle's pool.
func (s *Store) AddToPenaltyPool(ctx context.Context, groupID uint64, cycle int, amount int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO penalty_pools (group_id, cycle, amount) VALUES (?, ?, ?)
		 ON CONFLICT (group_id, cycle) DO UPDATE SET amount = amount + excluded.amount`,
		groupID, cycle, amount,
	)
	if err != nil {
		return fmt.Errorf("add to penalty pool: %w", err)
	}
	return nil
}

// GetPenaltyPool returns a cycle's accumulated penalty pool, zero if absent.
func (s *Store) GetPenaltyPool(ctx context.Context, groupID uint64, cycle int) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT amount FROM penalty_pools WHERE group_id = ? AND cycle = ?`,
		groupID, cycle,
	)
	var amount int64
	err := row.Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get penalty pool: %w", err)
	}
	return amount, nil
}

// MarkPayoutReceived flags a member as having received their payout.
func (s *Store) MarkPayoutReceived(ctx context.Context, groupID uint64, member string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO payouts (group_id, member) VALUES (?, ?)`,
		groupID, member,
	)
	if err != nil {
		return fmt.Errorf("mark payout received: %w", err)
	}
	return nil
}

// HasReceivedPayout reports whether a member has received their payout.
func (s *Store) HasReceivedPayout(ctx context.Context, groupID uint64, member string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	return s.exists(ctx, `SELECT 1 FROM payouts WHERE group_id = ? AND member = ?`, groupID, member)
}

// PutMetadata inserts or replaces group metadata.
func (s *Store) PutMetadata(ctx context.Context, md group.GroupMetadata) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO group_metadata (group_id, name, description, rules)
		 VALUES (?, ?, ?, ?)`,
		md.GroupID, md.Name, md.Description, md.Rules,
	)
	if err != nil {
		return fmt.Errorf("put metadata: %w", err)
	}
	return nil
}

// GetMetadata fetches group metadata.
func (s *Store) GetMetadata(ctx context.Context, groupID uint64) (group.GroupMetadata, error) {
	if err := s.ready(ctx); err != nil {
		return group.GroupMetadata{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT group_id, name, description, rules FROM group_metadata WHERE group_id = ?`,
		groupID,
	)
	var md group.GroupMetadata
	err := row.Scan(&md.GroupID, &md.Name, &md.Description, &md.Rules)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return group.GroupMetadata{}, storage.ErrNotFound
		}
		return group.GroupMetadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return md, nil
}

// PutRefundRequest inserts or replaces a group's refund request.
func (s *Store) PutRefundRequest(ctx context.Context, req group.RefundRequest) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO refund_requests (
		   group_id, requester, created_at, voting_deadline,
		   votes_for, votes_against, executed, approved
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.GroupID,
		req.Requester,
		toMillis(req.CreatedAt),
		toMillis(req.VotingDeadline),
		req.VotesFor,
		req.VotesAgainst,
		boolToInt(req.Executed),
		boolToInt(req.Approved),
	)
	if err != nil {
		return fmt.Errorf("put refund request: %w", err)
	}
	return nil
}

// GetRefundRequest fetches a group's refund request.
func (s *Store) GetRefundRequest(ctx context.Context, groupID uint64) (group.RefundRequest, error) {
	if err := s.ready(ctx); err != nil {
		return group.RefundRequest{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT group_id, requester, created_at, voting_deadline,
		        votes_for, votes_against, executed, approved
		 FROM refund_requests WHERE group_id = ?`,
		groupID,
	)
	var (
		req            group.RefundRequest
		createdMillis  int64
		deadlineMillis int64
		executed       int
		approved       int
	)
	err := row.Scan(&req.GroupID, &req.Requester, &createdMillis, &deadlineMillis, &req.VotesFor, &req.VotesAgainst, &executed, &approved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return group.RefundRequest{}, storage.ErrNotFound
		}
		return group.RefundRequest{}, fmt.Errorf("get refund request: %w", err)
	}
	req.CreatedAt = fromMillis(createdMillis)
	req.VotingDeadline = fromMillis(deadlineMillis)
	req.Executed = executed != 0
	req.Approved = approved != 0
	return req, nil
}

// HasRefundRequest reports whether a refund request exists for a group.
func (s *Store) HasRefundRequest(ctx context.Context, groupID uint64) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	return s.exists(ctx, `SELECT 1 FROM refund_requests WHERE group_id = ?`, groupID)
}

// PutRefundVote inserts or replaces a member's refund vote.
func (s *Store) PutRefundVote(ctx context.Context, vote group.RefundVote) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO refund_votes (group_id, member, in_favor, voted_at)
		 VALUES (?, ?, ?, ?)`,
		vote.GroupID,
		vote.Member,
		boolToInt(vote.InFavor),
		toMillis(vote.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("put refund vote: %w", err)
	}
	return nil
}

// HasRefundVote reports whether a member already voted.
func (s *Store) HasRefundVote(ctx context.Context, groupID uint64, member string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	return s.exists(ctx, `SELECT 1 FROM refund_votes WHERE group_id = ? AND member = ?`, groupID, member)
}

// PutRefundRecord inserts or replaces a member's refund record.
func (s *Store) PutRefundRecord(ctx context.Context, rec group.RefundRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO refund_records (group_id, member, amount, refunded_at, reason)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.GroupID,
		rec.Member,
		rec.Amount,
		toMillis(rec.Timestamp),
		string(rec.Reason),
	)
	if err != nil {
		return fmt.Errorf("put refund record: %w", err)
	}
	return nil
}

// GetRefundRecord fetches a member's refund record.
func (s *Store) GetRefundRecord(ctx context.Context, groupID uint64, member string) (group.RefundRecord, error) {
	if err := s.ready(ctx); err != nil {
		return group.RefundRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT group_id, member, amount, refunded_at, reason
		 FROM refund_records WHERE group_id = ? AND member = ?`,
		groupID, member,
	)
	var (
		rec            group.RefundRecord
		refundedMillis int64
		reason         string
	)
	err := row.Scan(&rec.GroupID, &rec.Member, &rec.Amount, &refundedMillis, &reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return group.RefundRecord{}, storage.ErrNotFound
		}
		return group.RefundRecord{}, fmt.Errorf("get refund record: %w", err)
	}
	rec.Timestamp = fromMillis(refundedMillis)
	rec.Reason = group.RefundReason(reason)
	return rec, nil
}

// SetAdmin stores the singleton admin principal.
func (s *Store) SetAdmin(ctx context.Context, principal string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(principal) == "" {
		return fmt.Errorf("admin principal is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `UPDATE engine_state SET admin = ? WHERE id = 1`, principal)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return nil
}

// GetAdmin returns the admin principal, or ErrNotFound before initialization.
func (s *Store) GetAdmin(ctx context.Context) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT admin FROM engine_state WHERE id = 1`)
	var admin sql.NullString
	if err := row.Scan(&admin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get admin: %w", err)
	}
	if !admin.Valid || admin.String == "" {
		return "", storage.ErrNotFound
	}
	return admin.String, nil
}

// SetPaused stores the pause gate.
func (s *Store) SetPaused(ctx context.Context, paused bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, `UPDATE engine_state SET paused = ? WHERE id = 1`, boolToInt(paused))
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	return nil
}

// IsPaused reports whether the pause gate is set.
func (s *Store) IsPaused(ctx context.Context) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT paused FROM engine_state WHERE id = 1`)
	var paused int
	if err := row.Scan(&paused); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get paused: %w", err)
	}
	return paused != 0, nil
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	row := s.sqlDB.QueryRowContext(ctx, query, args...)
	var found int
	err := row.Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
