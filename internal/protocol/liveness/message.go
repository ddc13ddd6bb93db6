package liveness

import (
	"crypto/rand"
	"io"
)

// ProtocolID ping 协议标识
const ProtocolID = "/megaengine/ping/1"

// PayloadSize ping 载荷长度
const PayloadSize = 32

// newPayload 生成随机载荷
func newPayload() ([]byte, error) {
	buf := make([]byte, PayloadSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readPayload 读取定长载荷
func readPayload(r io.Reader) ([]byte, error) {
	buf := make([]byte, PayloadSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
