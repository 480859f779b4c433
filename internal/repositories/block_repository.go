package repositories

import (
	"context"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"
)

var ErrSelfBlock = errors.New("cannot block yourself")

// BlockRepository abstracts the symmetric block relation.
type BlockRepository interface {
	IsBlocked(ctx context.Context, userA, userB int) (bool, error)
	CreateBlock(ctx context.Context, userA, userB, createdBy int, reason string) error
	RemoveBlock(ctx context.Context, userA, userB int) error
}

// BlockRepo is a sqlx implementation of BlockRepository.
type BlockRepo struct {
	db *sqlx.DB
}

// NewBlockRepo constructs a BlockRepo.
func NewBlockRepo(db *sqlx.DB) *BlockRepo {
	return &BlockRepo{db: db}
}

func normalizePair(userA, userB int) (int, int) {
	pair := []int{userA, userB}
	sort.Ints(pair)
	return pair[0], pair[1]
}

// IsBlocked reports whether a block row exists for the unordered pair.
func (r *BlockRepo) IsBlocked(ctx context.Context, userA, userB int) (bool, error) {
	if userA == userB {
		return false, nil
	}
	a, b := normalizePair(userA, userB)
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM blocks WHERE user_a_id=$1 AND user_b_id=$2)`, a, b)
	return exists, err
}

// CreateBlock inserts the pair if no block exists yet. Re-blocking an
// already-blocked pair leaves the original row untouched.
func (r *BlockRepo) CreateBlock(ctx context.Context, userA, userB, createdBy int, reason string) error {
	if userA == userB {
		return ErrSelfBlock
	}
	a, b := normalizePair(userA, userB)
	_, err := r.db.ExecContext(ctx, `INSERT INTO blocks (user_a_id, user_b_id, created_by, reason) VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_a_id, user_b_id) DO NOTHING`, a, b, createdBy, reason)
	return err
}

// RemoveBlock hard-deletes the pair's row. Removing a block that does
// not exist is a no-op.
func (r *BlockRepo) RemoveBlock(ctx context.Context, userA, userB int) error {
	a, b := normalizePair(userA, userB)
	_, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE user_a_id=$1 AND user_b_id=$2`, a, b)
	return err
}
