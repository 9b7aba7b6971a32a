package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

const codeKeyPrefix = "code:"

var _ repository.CodeRepository = (*CodeRepo)(nil)

// CodeRepo stores redemption codes as JSON documents, one key per code.
// The claim write is conditional on the stored used count so a lost update
// between a claimant's read and write surfaces as a conflict instead of
// silently overwriting a concurrent claim.
type CodeRepo struct {
	client *redClient
}

func NewCodeRepo(client *redClient) *CodeRepo {
	return &CodeRepo{client: client}
}

func codeKey(code string) string { return codeKeyPrefix + code }

func (r *CodeRepo) Create(ctx context.Context, code *model.RedemptionCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	ok, err := r.client.cli.SetNX(ctx, codeKey(code.Code), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *CodeRepo) FindByCode(ctx context.Context, code string) (*model.RedemptionCode, error) {
	data, err := r.client.Get(ctx, codeKey(code))
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec model.RedemptionCode
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode code %s: %w", code, err)
	}
	return &rec, nil
}

func (r *CodeRepo) Save(ctx context.Context, code *model.RedemptionCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, codeKey(code.Code), data, 0)
}

// luaSaveClaim replaces the record only while its used_count still equals
// the value the claimant based its increment on.
var luaSaveClaim = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
	return -1
end
local rec = cjson.decode(cur)
local used = tonumber(rec["used_count"]) or 0
if used ~= tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2])
return 1`)

func (r *CodeRepo) SaveClaim(ctx context.Context, code *model.RedemptionCode, expectedPriorUses int) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	res, err := luaSaveClaim.Run(ctx, r.client.cli, []string{codeKey(code.Code)}, expectedPriorUses, string(data)).Int64()
	if err != nil {
		return err
	}
	switch res {
	case 1:
		return nil
	case 0:
		return domain.ErrClaimConflict
	default:
		return domain.ErrCodeNotFound
	}
}
