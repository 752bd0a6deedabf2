package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ndanilov/itemvault/internal/logging"
	"github.com/ndanilov/itemvault/internal/models"
	"github.com/ndanilov/itemvault/internal/mykafka"
	"github.com/ndanilov/itemvault/internal/repo"
	"github.com/ndanilov/itemvault/internal/search"
	"github.com/ndanilov/itemvault/internal/transport"
)

const itemEventsTopic = "item_events"

// ErrForbidden means the caller is neither the item's owner nor a
// superuser. Mutations on foreign items are rejected with it.
var ErrForbidden = errors.New("not the item owner")

// ItemService drives the item state machine: an item is active, then
// optionally soft-deleted, then gone. Soft-deleted items cannot be
// mutated or revived, only purged.
type ItemService struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
	Index    *search.Index
}

func (s *ItemService) Create(ctx context.Context, req transport.CreateItemRequest, ownerID uuid.UUID) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "item.create")

	item := &models.Item{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
		Price:       req.Price,
		Tags:        models.Tags(req.Tags),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.CreateItem(ctx, item); err != nil {
		l.Error("create_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, err
	}

	s.index(ctx, item)
	s.publish(ctx, item.ID, map[string]interface{}{
		"type":     "item_created",
		"item_id":  item.ID,
		"owner_id": item.OwnerID,
		"name":     item.Name,
	})

	l.Info("create_success", "item_id", item.ID)
	return item, nil
}

// Get returns (nil, nil) when id does not resolve. The record comes back
// regardless of its deleted flag; callers inspect Deleted themselves.
func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// Update applies the fields present in req. It returns (nil, nil) when the
// item does not exist or is already soft-deleted: deletion is terminal for
// mutation. An empty patch returns the item without touching updated_at.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateItemRequest, caller *models.User) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "item.update")

	item, err := s.Get(ctx, id)
	if err != nil {
		l.Error("update_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, err
	}
	if item == nil || item.Deleted {
		return nil, nil
	}
	if !canMutate(item, caller) {
		return nil, ErrForbidden
	}
	if req.Empty() {
		return item, nil
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Tags != nil {
		item.Tags = models.Tags(*req.Tags)
	}
	now := time.Now().UTC()
	item.UpdatedAt = &now

	if err := s.Repo.SaveItem(ctx, item); err != nil {
		l.Error("update_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, err
	}

	s.index(ctx, item)
	s.publish(ctx, item.ID, map[string]interface{}{
		"type":    "item_updated",
		"item_id": item.ID,
	})

	l.Info("update_success", "item_id", item.ID)
	return item, nil
}

// SoftDelete marks the item deleted, keeping the record. False for a
// missing or already-deleted item; there is no error for either.
func (s *ItemService) SoftDelete(ctx context.Context, id uuid.UUID, caller *models.User) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "item.soft_delete")

	item, err := s.Get(ctx, id)
	if err != nil {
		l.Error("soft_delete_failed", "status", 500, "reason", "db_error", "error", err)
		return false, err
	}
	if item == nil || item.Deleted {
		return false, nil
	}
	if !canMutate(item, caller) {
		return false, ErrForbidden
	}

	item.Deleted = true
	if err := s.Repo.SaveItem(ctx, item); err != nil {
		l.Error("soft_delete_failed", "status", 500, "reason", "db_error", "error", err)
		return false, err
	}

	s.remove(ctx, item.ID)
	s.publish(ctx, item.ID, map[string]interface{}{
		"type":    "item_soft_deleted",
		"item_id": item.ID,
	})

	l.Info("soft_delete_success", "item_id", item.ID)
	return true, nil
}

// HardDelete purges the record permanently. Works on active and
// soft-deleted items alike; false only when the id does not resolve.
func (s *ItemService) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "item.hard_delete")

	ok, err := s.Repo.DeleteItem(ctx, id)
	if err != nil {
		l.Error("hard_delete_failed", "status", 500, "reason", "db_error", "error", err)
		return false, err
	}
	if !ok {
		return false, nil
	}

	s.remove(ctx, id)
	s.publish(ctx, id, map[string]interface{}{
		"type":    "item_hard_deleted",
		"item_id": id,
	})

	l.Info("hard_delete_success", "item_id", id)
	return true, nil
}

func (s *ItemService) List(ctx context.Context, includeDeleted bool, skip, limit int) ([]models.Item, error) {
	return s.Repo.ListItems(ctx, includeDeleted, skip, limit)
}

func (s *ItemService) Search(ctx context.Context, query string, from, size int) (int64, []models.Item, error) {
	return s.Index.Search(ctx, query, from, size)
}

func canMutate(item *models.Item, caller *models.User) bool {
	return caller != nil && (item.OwnerID == caller.ID || caller.IsSuperuser)
}

func (s *ItemService) publish(ctx context.Context, key uuid.UUID, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(ctx, itemEventsTopic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", itemEventsTopic, "error", err)
	}
}

func (s *ItemService) index(ctx context.Context, item *models.Item) {
	if err := s.Index.IndexItem(ctx, item); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "item_id", item.ID, "error", err)
	}
}

func (s *ItemService) remove(ctx context.Context, id uuid.UUID) {
	if err := s.Index.RemoveItem(ctx, id); err != nil {
		logging.FromContext(ctx).Error("search_remove_failed", "item_id", id, "error", err)
	}
}
