package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/redis/go-redis/v9"
)

// DraftRepository keeps one JSON draft per user. Every save refreshes the
// expiry.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	return &DraftRepository{client: client, ttl: ttl}
}

func draftKey(userID string) string { return "draft:" + userID }

func (r *DraftRepository) Get(ctx context.Context, userID string) (*domain.Draft, error) {
	data, err := r.client.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDraft(data)
}

func (r *DraftRepository) Save(ctx context.Context, d *domain.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, draftKey(d.UserID), data, r.ttl).Err()
}

// Delete ignores missing keys.
func (r *DraftRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, draftKey(userID)).Err()
}

// decodeDraft treats an unreadable draft like a missing one, a corrupted
// entry must not block posting.
func decodeDraft(data []byte) (*domain.Draft, error) {
	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDraftNotFound, err)
	}
	if d.Values == nil {
		d.Values = map[string]string{}
	}
	return &d, nil
}
