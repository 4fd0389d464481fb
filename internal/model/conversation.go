// Package model 包含了应用的数据模型定义。
package model

import "time"

// Sender 标识消息的发送方。
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage 代表会话记录中的单条消息，创建后不再修改。
type ChatMessage struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// IsBot 报告消息是否由机器人发出。
func (m ChatMessage) IsBot() bool {
	return m.Sender == SenderBot
}

// Session 代表一个聊天会话。
type Session struct {
	ID        string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}
