// Package bbolt provides the BoltDB-backed store for the savings engine.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ajofund/ajo/internal/group"
	"github.com/ajofund/ajo/internal/storage"
)

const (
	stateBucket         = "state"
	groupBucket         = "group"
	contributionBucket  = "contribution"
	penaltyRecordBucket = "penalty_record"
	penaltyPoolBucket   = "penalty_pool"
	payoutBucket        = "payout"
	metadataBucket      = "metadata"
	refundRequestBucket = "refund_request"
	refundVoteBucket    = "refund_vote"
	refundRecordBucket  = "refund_record"
)

const (
	groupCounterKey = "group_id_counter"
	adminKey        = "admin"
	pausedKey       = "paused"
)

var buckets = []string{
	stateBucket,
	groupBucket,
	contributionBucket,
	penaltyRecordBucket,
	penaltyPoolBucket,
	payoutBucket,
	metadataBucket,
	refundRequestBucket,
	refundVoteBucket,
	refundRecordBucket,
}

// Store provides a BoltDB-backed implementation of storage.Store.
type Store struct {
	db *bbolt.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NextGroupID atomically increments and returns the group id counter.
func (s *Store) NextGroupID(ctx context.Context) (uint64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var next uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		current := uint64(0)
		if raw := bucket.Get([]byte(groupCounterKey)); raw != nil {
			parsed, err := strconv.ParseUint(string(raw), 10, 64)
			if err != nil {
				return fmt.Errorf("parse group id counter: %w", err)
			}
			current = parsed
		}
		next = current + 1
		return bucket.Put([]byte(groupCounterKey), []byte(strconv.FormatUint(next, 10)))
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// PutGroup persists a group record.
func (s *Store) PutGroup(ctx context.Context, g group.Group) error {
	if g.ID == 0 {
		return fmt.Errorf("group id is required")
	}
	return s.putJSON(ctx, groupBucket, groupKey(g.ID), g)
}

// GetGroup fetches a group record by id.
func (s *Store) GetGroup(ctx context.Context, id uint64) (group.Group, error) {
	var g group.Group
	err := s.getJSON(ctx, groupBucket, groupKey(id), &g)
	return g, err
}

// PutContribution persists a contribution record.
func (s *Store) PutContribution(ctx context.Context, rec group.ContributionRecord) error {
	return s.putJSON(ctx, contributionBucket, cycleMemberKey(rec.GroupID, rec.Cycle, rec.Member), rec)
}

// GetContribution fetches a contribution record.
func (s *Store) GetContribution(ctx context.Context, groupID uint64, cycle int, member string) (group.ContributionRecord, error) {
	var rec group.ContributionRecord
	err := s.getJSON(ctx, contributionBucket, cycleMemberKey(groupID, cycle, member), &rec)
	return rec, err
}

// HasContribution reports whether a contribution record exists.
func (s *Store) HasContribution(ctx context.Context, groupID uint64, cycle int, member string) (bool, error) {
	return s.has(ctx, contributionBucket, cycleMemberKey(groupID, cycle, member))
}

// PutPenaltyRecord persists a member penalty aggregate.
func (s *Store) PutPenaltyRecord(ctx context.Context, rec group.MemberPenaltyRecord) error {
	return s.putJSON(ctx, penaltyRecordBucket, memberKey(rec.GroupID, rec.Member), rec)
}

// GetPenaltyRecord fetches a member penalty aggregate.
func (s *Store) GetPenaltyRecord(ctx context.Context, groupID uint64, member string) (group.MemberPenaltyRecord, error) {
	var rec group.MemberPenaltyRecord
	err := s.getJSON(ctx, penaltyRecordBucket, memberKey(groupID, member), &rec)
	return rec, err
}

// AddToPenaltyPool adds a penalty amount to a cycle's pool.
func (s *Store) AddToPenaltyPool(ctx context.Context, groupID uint64, cycle int, amount int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	key := cycleKey(groupID, cycle)
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(penaltyPoolBucket))
		if bucket == nil {
			return fmt.Errorf("penalty pool bucket is missing")
		}
		current := int64(0)
		if raw := bucket.Get(key); raw != nil {
			parsed, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return fmt.Errorf("parse penalty pool: %w", err)
			}
			current = parsed
		}
		return bucket.Put(key, []byte(strconv.FormatInt(current+amount, 10)))
	})
}

// GetPenaltyPool returns a cycle's accumulated penalty pool, zero if absent.
func (s *Store) GetPenaltyPool(ctx context.Context, groupID uint64, cycle int) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var pool int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(penaltyPoolBucket))
		if bucket == nil {
			return fmt.Errorf("penalty pool bucket is missing")
		}
		raw := bucket.Get(cycleKey(groupID, cycle))
		if raw == nil {
			return nil
		}
		parsed, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("parse penalty pool: %w", err)
		}
		pool = parsed
		return nil
	})
	return pool, err
}

// MarkPayoutReceived flags a member as having received their payout.
func (s *Store) MarkPayoutReceived(ctx context.Context, groupID uint64, member string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(payoutBucket))
		if bucket == nil {
			return fmt.Errorf("payout bucket is missing")
		}
		return bucket.Put(memberKey(groupID, member), []byte("1"))
	})
}

// HasReceivedPayout reports whether a member has received their payout.
func (s *Store) HasReceivedPayout(ctx context.Context, groupID uint64, member string) (bool, error) {
	return s.has(ctx, payoutBucket, memberKey(groupID, member))
}

// PutMetadata persists group metadata.
func (s *Store) PutMetadata(ctx context.Context, md group.GroupMetadata) error {
	return s.putJSON(ctx, metadataBucket, groupKey(md.GroupID), md)
}

// GetMetadata fetches group metadata.
func (s *Store) GetMetadata(ctx context.Context, groupID uint64) (group.GroupMetadata, error) {
	var md group.GroupMetadata
	err := s.getJSON(ctx, metadataBucket, groupKey(groupID), &md)
	return md, err
}

// PutRefundRequest persists a group's refund request.
func (s *Store) PutRefundRequest(ctx context.Context, req group.RefundRequest) error {
	return s.putJSON(ctx, refundRequestBucket, groupKey(req.GroupID), req)
}

// GetRefundRequest fetches a group's refund request.
func (s *Store) GetRefundRequest(ctx context.Context, groupID uint64) (group.RefundRequest, error) {
	var req group.RefundRequest
	err := s.getJSON(ctx, refundRequestBucket, groupKey(groupID), &req)
	return req, err
}

// HasRefundRequest reports whether a refund request exists for a group.
func (s *Store) HasRefundRequest(ctx context.Context, groupID uint64) (bool, error) {
	return s.has(ctx, refundRequestBucket, groupKey(groupID))
}

// PutRefundVote persists a member's refund vote.
func (s *Store) PutRefundVote(ctx context.Context, vote group.RefundVote) error {
	return s.putJSON(ctx, refundVoteBucket, memberKey(vote.GroupID, vote.Member), vote)
}

// HasRefundVote reports whether a member already voted.
func (s *Store) HasRefundVote(ctx context.Context, groupID uint64, member string) (bool, error) {
	return s.has(ctx, refundVoteBucket, memberKey(groupID, member))
}

// PutRefundRecord persists a member's refund record.
func (s *Store) PutRefundRecord(ctx context.Context, rec group.RefundRecord) error {
	return s.putJSON(ctx, refundRecordBucket, memberKey(rec.GroupID, rec.Member), rec)
}

// GetRefundRecord fetches a member's refund record.
func (s *Store) GetRefundRecord(ctx context.Context, groupID uint64, member string) (group.RefundRecord, error) {
	var rec group.RefundRecord
	err := s.getJSON(ctx, refundRecordBucket, memberKey(groupID, member), &rec)
	return rec, err
}

// SetAdmin stores the singleton admin principal.
func (s *Store) SetAdmin(ctx context.Context, principal string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(principal) == "" {
		return fmt.Errorf("admin principal is required")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return bucket.Put([]byte(adminKey), []byte(principal))
	})
}

// GetAdmin returns the admin principal, or ErrNotFound before initialization.
func (s *Store) GetAdmin(ctx context.Context) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	var admin string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		raw := bucket.Get([]byte(adminKey))
		if raw == nil {
			return storage.ErrNotFound
		}
		admin = string(raw)
		return nil
	})
	return admin, err
}

// SetPaused stores the pause gate.
func (s *Store) SetPaused(ctx context.Context, paused bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	value := []byte("0")
	if paused {
		value = []byte("1")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return bucket.Put([]byte(pausedKey), value)
	})
}

// IsPaused reports whether the pause gate is set.
func (s *Store) IsPaused(ctx context.Context) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var paused bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		paused = string(bucket.Get([]byte(pausedKey))) == "1"
		return nil
	})
	return paused, err
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) putJSON(ctx context.Context, bucketName string, key []byte, value any) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", bucketName, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return fmt.Errorf("%s bucket is missing", bucketName)
		}
		return bucket.Put(key, payload)
	})
}

func (s *Store) getJSON(ctx context.Context, bucketName string, key []byte, target any) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return fmt.Errorf("%s bucket is missing", bucketName)
		}
		payload := bucket.Get(key)
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("unmarshal %s record: %w", bucketName, err)
		}
		return nil
	})
}

func (s *Store) has(ctx context.Context, bucketName string, key []byte) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return fmt.Errorf("%s bucket is missing", bucketName)
		}
		found = bucket.Get(key) != nil
		return nil
	})
	return found, err
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func groupKey(id uint64) []byte {
	return []byte(strconv.FormatUint(id, 10))
}

func memberKey(groupID uint64, member string) []byte {
	return []byte(strconv.FormatUint(groupID, 10) + "/" + member)
}

func cycleKey(groupID uint64, cycle int) []byte {
	return []byte(strconv.FormatUint(groupID, 10) + "/" + strconv.Itoa(cycle))
}

func cycleMemberKey(groupID uint64, cycle int, member string) []byte {
	return []byte(strconv.FormatUint(groupID, 10) + "/" + strconv.Itoa(cycle) + "/" + member)
}
