// Package engine 定义存储引擎接口
//
// 注册表只依赖这里的接口，实现位于 engine/badger。所有读写都在事务中完成：
// View 得到一致的只读快照，Update 中的修改在 fn 返回 nil 后一起提交。
package engine

// Engine 事务型键值存储引擎
type Engine interface {
	// View 在只读快照中执行 fn
	View(fn func(Reader) error) error

	// Update 在读写事务中执行 fn，fn 返回错误时丢弃所有修改
	Update(fn func(Txn) error) error

	// Close 关闭引擎，重复调用安全
	Close() error
}

// Reader 事务内的读操作
type Reader interface {
	// Get 返回值的副本，键不存在返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	Has(key []byte) (bool, error)

	// Scan 按键序遍历 prefix 下的键值，fn 返回 ErrStopScan 时提前结束且不报错
	Scan(prefix []byte, fn func(key, value []byte) error) error
}

// Txn 读写事务
type Txn interface {
	Reader

	Set(key, value []byte) error

	// Delete 删除键，键不存在不报错
	Delete(key []byte) error

	// DeletePrefix 删除 prefix 下当前可见的所有键
	DeletePrefix(prefix []byte) error
}
