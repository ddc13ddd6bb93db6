// Package reconcile 实现两个周期性同步循环。
//
// BundleReconciler 为尚无 bundle 的外部仓库向创建者请求 bundle；
// RefReconciler 读取本地仓库的引用，与已保存的快照比较，变化时整体替换。
//
// 每个循环独占一个 goroutine，同一循环的两次处理不会重叠。单个仓库的
// 失败只记录日志，不中断本轮处理，下一轮即是重试。
package reconcile
