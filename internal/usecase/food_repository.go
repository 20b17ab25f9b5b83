package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/tastylog/backend/internal/domain"
	"github.com/tastylog/backend/internal/infrastructure/appwrite"
	"github.com/tastylog/backend/internal/worker"
)

// FoodRepository is the only component that reads or writes food records in the
// remote store. Every network call runs on the background executor and its
// result comes back through a future; the cache is only touched from there.
type FoodRepository struct {
	store        domain.RemoteStore
	cache        domain.RecordCache
	executor     *worker.Executor
	collectionID string
}

// NewFoodRepository creates a repository over the given food collection
func NewFoodRepository(
	store domain.RemoteStore,
	cache domain.RecordCache,
	executor *worker.Executor,
	collectionID string,
) *FoodRepository {
	return &FoodRepository{
		store:        store,
		cache:        cache,
		executor:     executor,
		collectionID: collectionID,
	}
}

// ListAllAsync fetches every record owned by ownerID and replaces the owner's cache entry.
// An empty ownerID (logged out) yields an empty list without touching the network.
func (r *FoodRepository) ListAllAsync(ctx context.Context, ownerID string) *worker.Future[[]domain.FoodRecord] {
	if ownerID == "" {
		return worker.Completed([]domain.FoodRecord{})
	}

	return worker.Submit(ctx, r.executor, func(ctx context.Context) ([]domain.FoodRecord, error) {
		docs, err := r.store.ListDocuments(ctx, r.collectionID, domain.Equal(appwrite.FieldUserID, ownerID))
		if err != nil {
			log.Printf("[Repository] ListAll failed for owner %s: %v", ownerID, err)
			return nil, fmt.Errorf("failed to list food records: %w", err)
		}

		records := appwrite.DocumentsToRecords(docs)
		r.cache.Replace(ownerID, records)
		log.Printf("[Repository] Loaded %d records for owner %s", len(records), ownerID)
		return records, nil
	})
}

// ListAll is the blocking form of ListAllAsync
func (r *FoodRepository) ListAll(ctx context.Context, ownerID string) ([]domain.FoodRecord, error) {
	return r.ListAllAsync(ctx, ownerID).Await(ctx)
}

// AddAsync persists a new record under a backend-generated id and appends it to the cache
func (r *FoodRepository) AddAsync(ctx context.Context, record domain.FoodRecord) *worker.Future[domain.FoodRecord] {
	if record.OwnerID == "" {
		return worker.Failed[domain.FoodRecord](domain.Validationf("record owner is required"))
	}
	if err := record.Validate(); err != nil {
		return worker.Failed[domain.FoodRecord](err)
	}
	if record.LocalID == "" {
		record.LocalID = uuid.NewString()
	}
	record.Tags = domain.NormalizeTags(record.Tags)

	return worker.Submit(ctx, r.executor, func(ctx context.Context) (domain.FoodRecord, error) {
		doc, err := r.store.CreateDocument(ctx, r.collectionID, domain.UniqueID, appwrite.RecordToDocument(record, true))
		if err != nil {
			log.Printf("[Repository] Add failed for %s: %v", record.LocalID, err)
			return domain.FoodRecord{}, fmt.Errorf("failed to add food record: %w", err)
		}

		persisted := appwrite.DocumentToRecord(*doc)
		r.cache.Append(record.OwnerID, persisted)
		return persisted, nil
	})
}

// Add is the blocking form of AddAsync
func (r *FoodRepository) Add(ctx context.Context, record domain.FoodRecord) (domain.FoodRecord, error) {
	return r.AddAsync(ctx, record).Await(ctx)
}

// UpdateAsync rewrites a persisted record and patches it in the cache.
// Records without a remote id are rejected before any network call.
func (r *FoodRepository) UpdateAsync(ctx context.Context, record domain.FoodRecord) *worker.Future[domain.FoodRecord] {
	if record.RemoteID == "" {
		return worker.Failed[domain.FoodRecord](domain.Validationf("record has no remote id"))
	}
	if err := record.Validate(); err != nil {
		return worker.Failed[domain.FoodRecord](err)
	}
	record.Tags = domain.NormalizeTags(record.Tags)

	return worker.Submit(ctx, r.executor, func(ctx context.Context) (domain.FoodRecord, error) {
		doc, err := r.store.UpdateDocument(ctx, r.collectionID, record.RemoteID, appwrite.RecordToDocument(record, false))
		if err != nil {
			log.Printf("[Repository] Update failed for %s: %v", record.RemoteID, err)
			return domain.FoodRecord{}, fmt.Errorf("failed to update food record: %w", err)
		}

		updated := appwrite.DocumentToRecord(*doc)
		r.cache.Patch(updated)
		return updated, nil
	})
}

// Update is the blocking form of UpdateAsync
func (r *FoodRepository) Update(ctx context.Context, record domain.FoodRecord) (domain.FoodRecord, error) {
	return r.UpdateAsync(ctx, record).Await(ctx)
}

// DeleteAsync removes a persisted record and drops it from the cache
func (r *FoodRepository) DeleteAsync(ctx context.Context, remoteID string) *worker.Future[struct{}] {
	if remoteID == "" {
		return worker.Failed[struct{}](domain.Validationf("remote id is required"))
	}

	return worker.Submit(ctx, r.executor, func(ctx context.Context) (struct{}, error) {
		if err := r.store.DeleteDocument(ctx, r.collectionID, remoteID); err != nil {
			log.Printf("[Repository] Delete failed for %s: %v", remoteID, err)
			return struct{}{}, fmt.Errorf("failed to delete food record: %w", err)
		}
		r.cache.Remove(remoteID)
		return struct{}{}, nil
	})
}

// Delete is the blocking form of DeleteAsync
func (r *FoodRepository) Delete(ctx context.Context, remoteID string) error {
	_, err := r.DeleteAsync(ctx, remoteID).Await(ctx)
	return err
}

// Snapshot returns the owner's cached records, fetching them when nothing is cached
func (r *FoodRepository) Snapshot(ctx context.Context, ownerID string) ([]domain.FoodRecord, error) {
	if ownerID == "" {
		return []domain.FoodRecord{}, nil
	}
	if records, ok := r.cache.Snapshot(ownerID); ok {
		return records, nil
	}
	return r.ListAll(ctx, ownerID)
}

// Find returns the owner's record with the given remote id
func (r *FoodRepository) Find(ctx context.Context, ownerID, remoteID string) (domain.FoodRecord, error) {
	records, err := r.Snapshot(ctx, ownerID)
	if err != nil {
		return domain.FoodRecord{}, err
	}
	for _, record := range records {
		if record.RemoteID == remoteID {
			return record, nil
		}
	}
	return domain.FoodRecord{}, fmt.Errorf("%w: food record %s", domain.ErrNotFound, remoteID)
}
