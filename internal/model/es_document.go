package model

import "time"

// EsMessage 定义了存储在 Elasticsearch 中的聊天消息文档。
type EsMessage struct {
	MessageID string    `json:"message_id"` // sessionId + 序号
	SessionID string    `json:"session_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageSearchResult 定义了返回给前端的搜索结果。
type MessageSearchResult struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}
