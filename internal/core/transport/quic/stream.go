package quic

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/quic-go/quic-go"
)

// maxProtocolLen 协议头最大长度
const maxProtocolLen = 256

// 流错误码
const (
	streamErrProtocol quic.StreamErrorCode = 1
	streamErrClosed   quic.StreamErrorCode = 2
)

// StreamHandler 入站流处理函数
//
// 处理函数返回后流会被关闭。
type StreamHandler func(ctx context.Context, s *Stream)

// Stream 带协议标识的双向流
type Stream struct {
	quic.Stream

	protocol   string
	remoteAddr net.Addr
	tlsState   quic.ConnectionState
}

// Protocol 返回流的协议标识
func (s *Stream) Protocol() string {
	return s.protocol
}

// RemoteAddr 返回对端地址
func (s *Stream) RemoteAddr() net.Addr {
	return s.remoteAddr
}

// PeerCertificateSubject 返回对端叶子证书主题
func (s *Stream) PeerCertificateSubject() string {
	certs := s.tlsState.TLS.PeerCertificates
	if len(certs) == 0 {
		return ""
	}
	return certs[0].Subject.String()
}

// Reset 中止流的读写两端
func (s *Stream) Reset() {
	s.CancelRead(streamErrClosed)
	s.CancelWrite(streamErrClosed)
}

// validateProtocol 校验协议标识
func validateProtocol(p string) error {
	if p == "" || len(p) > maxProtocolLen || strings.ContainsAny(p, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidProtocol, p)
	}
	return nil
}

// writeProtocolHeader 写入协议头（协议标识 + 换行）
func writeProtocolHeader(w io.Writer, protocol string) error {
	if err := validateProtocol(protocol); err != nil {
		return err
	}
	_, err := io.WriteString(w, protocol+"\n")
	return err
}

// readProtocolHeader 逐字节读取协议头，不预读后续数据
func readProtocolHeader(r io.Reader) (string, error) {
	buf := make([]byte, 0, 64)
	one := make([]byte, 1)
	for len(buf) <= maxProtocolLen {
		if _, err := io.ReadFull(r, one); err != nil {
			return "", err
		}
		if one[0] == '\n' {
			p := string(buf)
			if err := validateProtocol(p); err != nil {
				return "", err
			}
			return p, nil
		}
		buf = append(buf, one[0])
	}
	return "", fmt.Errorf("%w: header too long", ErrInvalidProtocol)
}
