package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/ndanilov/itemvault/internal/models"
)

func (r *GormRepo) CreateItem(ctx context.Context, item *models.Item) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) SaveItem(ctx context.Context, item *models.Item) error {
	return r.DB.WithContext(ctx).Save(item).Error
}

// DeleteItem removes the row permanently, regardless of its deleted flag.
// Returns false when the id did not resolve to a stored record.
func (r *GormRepo) DeleteItem(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListItems pages through items in insertion order. Soft-deleted rows are
// excluded unless includeDeleted is set.
func (r *GormRepo) ListItems(ctx context.Context, includeDeleted bool, offset, limit int) ([]models.Item, error) {
	q := r.DB.WithContext(ctx).Model(&models.Item{}).Order("created_at ASC")
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	items := make([]models.Item, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
