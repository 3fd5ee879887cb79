package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Jox86/sipp-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles database operations for order number
// sequences. One sequence row exists per year; sibling sub-orders produced
// by a cart split share the same base number, so the sequence is consumed
// once per checkout.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// NextBaseNumber atomically retrieves and increments the sequence for a year
// and formats it as a base order number, e.g. "PED-2026-0042".
// Uses SELECT FOR UPDATE so concurrent checkouts never share a number.
func (r *NumberSequenceRepository) NextBaseNumber(ctx context.Context, year int) (string, error) {
	seq, err := r.nextSequence(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PED-%d-%04d", year, seq), nil
}

func (r *NumberSequenceRepository) nextSequence(ctx context.Context, year int) (int, error) {
	var seq domain.NumberSequence
	var nextSeq int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Try to get existing sequence with row lock for atomicity
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("year = ?", year).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				Year:         year,
				LastSequence: 1,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			nextSeq = 1
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to lock number sequence: %w", result.Error)
		}

		nextSeq = seq.LastSequence + 1
		if err := tx.Model(&seq).Updates(map[string]interface{}{
			"last_sequence": nextSeq,
			"updated_at":    time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to increment number sequence: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return nextSeq, nil
}

// GetCurrentSequence retrieves the current sequence value without incrementing.
// Returns 0 if no sequence exists for the year.
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, year int) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("year = ?", year).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, result.Error
	}

	return seq.LastSequence, nil
}
