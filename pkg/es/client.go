// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"carbon-chat-go/internal/config"
	"carbon-chat-go/internal/model"
	"carbon-chat-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// messageMapping 是聊天消息索引的结构。
const messageMapping = `{
	"mappings": {
		"properties": {
			"message_id": { "type": "keyword" },
			"session_id": { "type": "keyword" },
			"sender": { "type": "keyword" },
			"text": { "type": "text", "analyzer": "english" },
			"timestamp": { "type": "date" }
		}
	}
}`

// MessageStore 读写单个聊天消息索引。
type MessageStore struct {
	client *elasticsearch.Client
	index  string
}

// InitES 初始化 Elasticsearch 客户端
func InitES(esCfg config.ElasticsearchConfig) (*MessageStore, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	ESClient = client
	store := &MessageStore{client: client, index: esCfg.IndexName}
	if err := store.createIndexIfNotExists(); err != nil {
		return nil, err
	}
	return store, nil
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func (s *MessageStore) createIndexIfNotExists() error {
	res, err := s.client.Indices.Exists([]string{s.index})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	defer res.Body.Close()
	// 如果 res.StatusCode 是 200，说明索引已存在
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", s.index)
		return nil
	}
	// 如果 res.StatusCode 是 404，说明索引不存在，需要创建
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", s.index, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	created, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithBody(strings.NewReader(messageMapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", s.index, err)
		return err
	}
	defer created.Body.Close()
	if created.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", s.index, created.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", s.index)
	return nil
}

// IndexMessage 将单条聊天消息索引到 Elasticsearch。
func (s *MessageStore) IndexMessage(ctx context.Context, doc model.EsMessage) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: doc.MessageID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引消息到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index message")
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64         `json:"_score"`
			Source model.EsMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildSearchQuery 构造限定在单个会话内的全文检索请求体。
func BuildSearchQuery(sessionID, query string, size int) map[string]interface{} {
	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{"match": map[string]interface{}{"text": query}},
				},
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"session_id": sessionID}},
				},
			},
		},
		"sort": []interface{}{"_score", map[string]interface{}{"timestamp": "asc"}},
	}
}

// SearchMessages 在指定会话的消息中做全文检索，按相关度排序。
func (s *MessageStore) SearchMessages(ctx context.Context, sessionID, query string, size int) ([]model.MessageSearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildSearchQuery(sessionID, query, size)); err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("Elasticsearch 检索返回错误: %s", res.String())
		return nil, fmt.Errorf("elasticsearch search returned %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]model.MessageSearchResult, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, model.MessageSearchResult{
			Text:      hit.Source.Text,
			Sender:    model.Sender(hit.Source.Sender),
			Timestamp: hit.Source.Timestamp,
			Score:     hit.Score,
		})
	}
	return results, nil
}
