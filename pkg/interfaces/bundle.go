package interfaces

import (
	"context"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// BundleRequester 向仓库所有者请求 bundle
type BundleRequester interface {
	RequestBundle(ctx context.Context, owner types.NodeID, repoID string) error
}

// BundleRequesterFunc 函数适配器
type BundleRequesterFunc func(ctx context.Context, owner types.NodeID, repoID string) error

// RequestBundle 调用 f
func (f BundleRequesterFunc) RequestBundle(ctx context.Context, owner types.NodeID, repoID string) error {
	return f(ctx, owner, repoID)
}
