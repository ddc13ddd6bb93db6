package tls

import (
	"crypto/tls"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testALPN = "megaengine/test"

func newBuilder(t *testing.T) (*ConfigBuilder, certFiles) {
	f := newCertFiles(t)
	f.ensure(t)
	return NewConfigBuilder(f.cert, f.key, f.caCert).WithNextProtos(testALPN), f
}

// handshake 在回环 TCP 上执行一次 TLS 握手，返回服务端与客户端的错误
func handshake(t *testing.T, serverConf, clientConf *tls.Config) (serverErr, clientErr error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
		srv := tls.Server(conn, serverConf)
		err = srv.Handshake()
		if err == nil {
			// TLS 1.3 客户端证书在服务端读取时才最终确认
			buf := make([]byte, 1)
			_, err = srv.Read(buf)
		}
		done <- err
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	cli := tls.Client(conn, clientConf)
	clientErr = cli.Handshake()
	if clientErr == nil {
		_, clientErr = cli.Write([]byte{1})
	}
	serverErr = <-done
	return serverErr, clientErr
}

func TestConfigBuilder_MutualTLS(t *testing.T) {
	b, _ := newBuilder(t)

	serverConf, err := b.BuildServerConfig()
	require.NoError(t, err)
	clientConf, err := b.BuildClientConfig()
	require.NoError(t, err)

	assert.Equal(t, tls.RequireAndVerifyClientCert, serverConf.ClientAuth)
	assert.NotNil(t, serverConf.ClientCAs)
	assert.Equal(t, []string{testALPN}, serverConf.NextProtos)
	assert.NotNil(t, clientConf.RootCAs)
	assert.Nil(t, clientConf.ClientSessionCache)
	assert.Len(t, clientConf.Certificates, 1)

	serverErr, clientErr := handshake(t, serverConf, clientConf)
	assert.NoError(t, serverErr)
	assert.NoError(t, clientErr)
}

func TestConfigBuilder_RejectsClientWithoutCertificate(t *testing.T) {
	b, _ := newBuilder(t)

	serverConf, err := b.BuildServerConfig()
	require.NoError(t, err)
	clientConf, err := b.BuildClientConfig()
	require.NoError(t, err)
	clientConf.Certificates = nil

	serverErr, _ := handshake(t, serverConf, clientConf)
	assert.Error(t, serverErr)
}

func TestConfigBuilder_RejectsForeignCA(t *testing.T) {
	b, _ := newBuilder(t)
	foreign, _ := newBuilder(t)

	serverConf, err := b.BuildServerConfig()
	require.NoError(t, err)
	clientConf, err := foreign.BuildClientConfig()
	require.NoError(t, err)

	serverErr, clientErr := handshake(t, serverConf, clientConf)
	// 双方都不信任对方的 CA
	assert.Error(t, clientErr)
	assert.Error(t, serverErr)
}

func TestConfigBuilder_MissingOrEmptyFiles(t *testing.T) {
	b, f := newBuilder(t)

	require.NoError(t, os.WriteFile(f.caCert, []byte("-----BEGIN NOTHING-----\n-----END NOTHING-----\n"), 0644))
	_, err := b.BuildServerConfig()
	assert.ErrorIs(t, err, ErrNoCertificates)

	b2, f2 := newBuilder(t)
	require.NoError(t, os.WriteFile(f2.key, []byte{}, 0600))
	_, err = b2.BuildClientConfig()
	assert.ErrorIs(t, err, ErrNoPrivateKey)

	b3, f3 := newBuilder(t)
	require.NoError(t, os.Remove(f3.cert))
	_, err = b3.BuildClientConfig()
	assert.ErrorIs(t, err, ErrCertificateIO)
}
