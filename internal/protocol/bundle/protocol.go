package bundle

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// ProtocolID bundle 请求协议标识
const ProtocolID = "/megaengine/bundle/1"

// maxMessageSize 单条消息上限
const maxMessageSize = 64 << 10

// Request bundle 请求
type Request struct {
	RequestID string       `json:"request_id"`
	RepoID    string       `json:"repo_id"`
	Requester types.NodeID `json:"requester"`
	Timestamp int64        `json:"timestamp"`
}

// Response bundle 请求应答
type Response struct {
	RequestID string `json:"request_id"`
	Accepted  bool   `json:"accepted"`
	Reason    string `json:"reason,omitempty"`
}

// Validate 检查请求字段
func (r *Request) Validate() error {
	if r.RequestID == "" || r.RepoID == "" {
		return fmt.Errorf("%w: missing request_id or repo_id", ErrInvalidMessage)
	}
	if err := r.Requester.Validate(); err != nil {
		return fmt.Errorf("%w: requester: %w", ErrInvalidMessage, err)
	}
	return nil
}

// writeMessage 写入一条 JSON 消息
func writeMessage(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}

// readMessage 读取一条 JSON 消息
func readMessage(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r, maxMessageSize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}
