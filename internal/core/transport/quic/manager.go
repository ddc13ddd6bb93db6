package quic

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	"go.uber.org/multierr"

	"github.com/dep2p/go-megaengine/pkg/lib/log"
)

var logger = log.Logger("core/transport/quic")

// headerTimeout 入站流读取协议头的超时
const headerTimeout = 10 * time.Second

// 连接关闭错误码
const connErrShutdown quic.ApplicationErrorCode = 0

// ============================================================================
//                              ConnectionManager
// ============================================================================

// ConnectionManager 双向认证的 QUIC 连接管理器
//
// 监听与拨号共享同一个 UDP socket。每条流以一行协议标识开头，
// 入站流按协议分发给注册的处理函数，未注册的协议直接重置。
type ConnectionManager struct {
	cfg      *Config
	settings *Settings

	udpConn   *net.UDPConn
	transport *quic.Transport
	listener  *quic.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	handlers map[string]StreamHandler
	conns    map[string]quic.Connection
	closed   bool
}

// Listen 构建传输配置并开始监听
//
// 证书材料无效时返回错误，此时不会打开任何 socket。
func Listen(cfg *Config) (*ConnectionManager, error) {
	settings, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	udpAddr, err := net.ResolveUDPAddr("udp", cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, cfg.BindAddr, err)
	}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("监听 UDP 失败: %w", err)
	}

	tr := &quic.Transport{Conn: udpConn}
	ln, err := tr.Listen(settings.ServerTLS, settings.ServerQUIC)
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("QUIC 监听失败: %w", err), tr.Close(), udpConn.Close())
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &ConnectionManager{
		cfg:       cfg,
		settings:  settings,
		udpConn:   udpConn,
		transport: tr,
		listener:  ln,
		ctx:       ctx,
		cancel:    cancel,
		handlers:  make(map[string]StreamHandler),
		conns:     make(map[string]quic.Connection),
	}

	m.wg.Add(1)
	go m.acceptLoop()

	logger.Info("QUIC 监听已启动", "addr", m.Addr().String())
	return m, nil
}

// Addr 返回实际监听地址
func (m *ConnectionManager) Addr() net.Addr {
	return m.udpConn.LocalAddr()
}

// SetStreamHandler 注册协议处理函数，重复注册会覆盖
func (m *ConnectionManager) SetStreamHandler(protocol string, h StreamHandler) error {
	if err := validateProtocol(protocol); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[protocol] = h
	return nil
}

// RemoveStreamHandler 移除协议处理函数
func (m *ConnectionManager) RemoveStreamHandler(protocol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, protocol)
}

// PeerCount 返回当前连接数
func (m *ConnectionManager) PeerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Dial 连接到指定地址，已有可用连接时复用
func (m *ConnectionManager) Dial(ctx context.Context, addr string) (quic.Connection, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, addr, err)
	}
	key := udpAddr.String()

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrManagerClosed
	}
	existing := m.conns[key]
	m.mu.RUnlock()
	if existing != nil && existing.Context().Err() == nil {
		return existing, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.cfg.DialTimeout)
	defer cancel()

	conn, err := m.transport.Dial(dialCtx, udpAddr, m.settings.ClientTLS, m.settings.ClientQUIC)
	if err != nil {
		return nil, fmt.Errorf("拨号 %s 失败: %w", addr, err)
	}
	if err := m.serve(key, conn); err != nil {
		return nil, err
	}
	logger.Debug("出站连接已建立", "remote", key)
	return conn, nil
}

// OpenStream 打开到指定地址的协议流
func (m *ConnectionManager) OpenStream(ctx context.Context, addr, protocol string) (*Stream, error) {
	if err := validateProtocol(protocol); err != nil {
		return nil, err
	}
	conn, err := m.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}

	str, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("打开流失败: %w", err)
	}
	if err := writeProtocolHeader(str, protocol); err != nil {
		str.CancelWrite(streamErrProtocol)
		str.CancelRead(streamErrProtocol)
		return nil, fmt.Errorf("写入协议头失败: %w", err)
	}
	return &Stream{
		Stream:     str,
		protocol:   protocol,
		remoteAddr: conn.RemoteAddr(),
		tlsState:   conn.ConnectionState(),
	}, nil
}

// Close 关闭所有连接与监听
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conns := make([]quic.Connection, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	m.conns = make(map[string]quic.Connection)
	m.mu.Unlock()

	m.cancel()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.CloseWithError(connErrShutdown, "shutdown"))
	}
	err = multierr.Combine(err, m.listener.Close(), m.transport.Close(), m.udpConn.Close())

	m.wg.Wait()
	logger.Info("QUIC 连接管理器已关闭")
	return err
}

// ============================================================================
//                              内部循环
// ============================================================================

// acceptLoop 接受入站连接
func (m *ConnectionManager) acceptLoop() {
	defer m.wg.Done()

	for {
		conn, err := m.listener.Accept(m.ctx)
		if err != nil {
			if m.ctx.Err() == nil {
				logger.Warn("接受连接失败，停止监听", "error", err)
			}
			return
		}

		key := conn.RemoteAddr().String()
		if err := m.serve(key, conn); err != nil {
			return
		}
		logger.Debug("入站连接已建立", "remote", key)
	}
}

// serveConn 接受连接上的入站流
func (m *ConnectionManager) serveConn(key string, conn quic.Connection) {
	defer m.wg.Done()
	defer m.untrack(key, conn)

	for {
		str, err := conn.AcceptStream(m.ctx)
		if err != nil {
			return
		}
		m.wg.Add(1)
		go m.handleStream(conn, str)
	}
}

// handleStream 读取协议头并分发
func (m *ConnectionManager) handleStream(conn quic.Connection, str quic.Stream) {
	defer m.wg.Done()

	_ = str.SetReadDeadline(time.Now().Add(headerTimeout))
	protocol, err := readProtocolHeader(str)
	_ = str.SetReadDeadline(time.Time{})
	if err != nil {
		logger.Debug("读取协议头失败", "remote", conn.RemoteAddr().String(), "error", err)
		str.CancelRead(streamErrProtocol)
		str.CancelWrite(streamErrProtocol)
		return
	}

	m.mu.RLock()
	h := m.handlers[protocol]
	m.mu.RUnlock()
	if h == nil {
		logger.Debug("未注册的协议", "protocol", protocol, "remote", conn.RemoteAddr().String())
		str.CancelRead(streamErrProtocol)
		str.CancelWrite(streamErrProtocol)
		return
	}

	s := &Stream{
		Stream:     str,
		protocol:   protocol,
		remoteAddr: conn.RemoteAddr(),
		tlsState:   conn.ConnectionState(),
	}
	h(m.ctx, s)
	_ = str.Close()
}

// serve 记录连接并启动流接受循环
func (m *ConnectionManager) serve(key string, conn quic.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		_ = conn.CloseWithError(connErrShutdown, "shutdown")
		return ErrManagerClosed
	}
	// 同一地址已有存活连接时保留旧映射，新连接照常服务，关闭时由 transport 统一回收
	if old, ok := m.conns[key]; !ok || old.Context().Err() != nil {
		m.conns[key] = conn
	}
	m.wg.Add(1)
	go m.serveConn(key, conn)
	return nil
}

func (m *ConnectionManager) untrack(key string, conn quic.Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conns[key] == conn {
		delete(m.conns, key)
	}
}
