package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"rubric_backend/internal/model"
	"rubric_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
)

// QuestionnaireCache 问卷详情与题目类型列表的缓存；未命中返回 (nil, nil)
type QuestionnaireCache interface {
	GetQuestionnaire(ctx context.Context, id uint) (*model.Questionnaire, error)
	SetQuestionnaire(ctx context.Context, q *model.Questionnaire) error
	InvalidateQuestionnaire(ctx context.Context, ids ...uint) error
	GetQuestionTypes(ctx context.Context) ([]string, error)
	SetQuestionTypes(ctx context.Context, types []string) error
	InvalidateQuestionTypes(ctx context.Context) error
}

type questionnaireCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuestionnaireCache(client *redis.Client, ttl time.Duration) QuestionnaireCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &questionnaireCache{client: client, ttl: ttl}
}

func questionnaireKey(id uint) string {
	return fmt.Sprintf("%s%d", util.CacheKeyQuestionnaire, id)
}

func (c *questionnaireCache) GetQuestionnaire(ctx context.Context, id uint) (*model.Questionnaire, error) {
	data, err := c.client.Get(ctx, questionnaireKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var q model.Questionnaire
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *questionnaireCache) SetQuestionnaire(ctx context.Context, q *model.Questionnaire) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, questionnaireKey(q.ID), data, c.ttl).Err()
}

func (c *questionnaireCache) InvalidateQuestionnaire(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = questionnaireKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *questionnaireCache) GetQuestionTypes(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, util.CacheKeyQuestionTypes).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var types []string
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *questionnaireCache) SetQuestionTypes(ctx context.Context, types []string) error {
	data, err := json.Marshal(types)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, util.CacheKeyQuestionTypes, data, c.ttl).Err()
}

func (c *questionnaireCache) InvalidateQuestionTypes(ctx context.Context) error {
	return c.client.Del(ctx, util.CacheKeyQuestionTypes).Err()
}

// nopCache 未配置 Redis 时使用
type nopCache struct{}

func NewNopCache() QuestionnaireCache { return nopCache{} }

func (nopCache) GetQuestionnaire(context.Context, uint) (*model.Questionnaire, error) {
	return nil, nil
}
func (nopCache) SetQuestionnaire(context.Context, *model.Questionnaire) error { return nil }
func (nopCache) InvalidateQuestionnaire(context.Context, ...uint) error       { return nil }
func (nopCache) GetQuestionTypes(context.Context) ([]string, error)           { return nil, nil }
func (nopCache) SetQuestionTypes(context.Context, []string) error             { return nil }
func (nopCache) InvalidateQuestionTypes(context.Context) error                { return nil }
