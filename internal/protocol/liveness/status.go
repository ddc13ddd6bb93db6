package liveness

import (
	"time"
)

// Status 节点探测统计
type Status struct {
	Alive        bool
	LastSeen     time.Time
	LastRTT      time.Duration
	AvgRTT       time.Duration
	MinRTT       time.Duration
	MaxRTT       time.Duration
	FailCount    int
	TotalPings   int
	SuccessCount int
}

// SuccessRate 成功率
func (s Status) SuccessRate() float64 {
	if s.TotalPings == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalPings)
}

// peerStatus 单个节点的探测状态，由 Service 的锁保护
type peerStatus struct {
	alive        bool
	lastSeen     time.Time
	lastRTT      time.Duration
	rttSamples   []time.Duration
	minRTT       time.Duration
	maxRTT       time.Duration
	failCount    int
	totalPings   int
	successCount int
}

// recordSuccess 记录一次成功探测
func (ps *peerStatus) recordSuccess(now time.Time, rtt time.Duration, window int) {
	ps.alive = true
	ps.lastSeen = now
	ps.lastRTT = rtt
	ps.failCount = 0

	ps.rttSamples = append(ps.rttSamples, rtt)
	if len(ps.rttSamples) > window {
		ps.rttSamples = ps.rttSamples[len(ps.rttSamples)-window:]
	}

	if ps.minRTT == 0 || rtt < ps.minRTT {
		ps.minRTT = rtt
	}
	if rtt > ps.maxRTT {
		ps.maxRTT = rtt
	}

	ps.totalPings++
	ps.successCount++
}

// recordFailure 记录一次失败，达到阈值时标记下线
func (ps *peerStatus) recordFailure(threshold int) {
	ps.failCount++
	ps.totalPings++
	if ps.failCount >= threshold {
		ps.alive = false
	}
}

// snapshot 导出统计
func (ps *peerStatus) snapshot() Status {
	var avg time.Duration
	if n := len(ps.rttSamples); n > 0 {
		var sum time.Duration
		for _, rtt := range ps.rttSamples {
			sum += rtt
		}
		avg = sum / time.Duration(n)
	}
	return Status{
		Alive:        ps.alive,
		LastSeen:     ps.lastSeen,
		LastRTT:      ps.lastRTT,
		AvgRTT:       avg,
		MinRTT:       ps.minRTT,
		MaxRTT:       ps.maxRTT,
		FailCount:    ps.failCount,
		TotalPings:   ps.totalPings,
		SuccessCount: ps.successCount,
	}
}
