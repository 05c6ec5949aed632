package notify

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github-trending-tracker/internal/adapter/filter"
	"github-trending-tracker/internal/domain"
	"github-trending-tracker/internal/port"
)

// Destination 是一个配置好的通知目的地：通道 + 它自己的过滤条件
type Destination struct {
	Name    string
	Channel port.Channel
	Filter  filter.DestinationFilter
}

// Dispatcher 实现了 port.Dispatcher 接口：向所有目的地分发每日摘要
//
// 各目的地互相独立、无序、失败隔离，所以这里是全系统唯一适合
// 真正并发的地方。汇总必须等所有分发尘埃落定（无论成败），
// 绝不在第一个失败时短路
type Dispatcher struct {
	destinations []Destination
}

func NewDispatcher(destinations []Destination) *Dispatcher {
	return &Dispatcher{destinations: destinations}
}

// Configured 是否至少配置了一个目的地
func (d *Dispatcher) Configured() bool {
	return len(d.destinations) > 0
}

// Dispatch 并发分发到所有目的地并汇总结果
//
// 过滤在渲染之前按目的地各自套用；过滤后一条不剩的目的地记为
// skipped（不算失败）。单个目的地失败只影响它自己的计数
func (d *Dispatcher) Dispatch(ctx context.Context, repos []*domain.TrendingRepo, analyses []*domain.RepoAnalysis) *domain.NotifyTally {
	date := Today()
	if len(repos) > 0 {
		date = repos[0].TrendingDate
	}

	type result struct {
		destination string
		status      string
		errMsg      string
	}

	results := make([]result, len(d.destinations))
	var wg sync.WaitGroup
	for i, dest := range d.destinations {
		wg.Add(1)
		go func(i int, dest Destination) {
			defer wg.Done()

			filtered := dest.Filter.Apply(repos)
			if len(filtered) == 0 {
				fmt.Printf("⏭️ 目的地 %s 过滤后无内容，跳过推送\n", dest.Name)
				results[i] = result{destination: dest.Name, status: domain.NotifyStatusSkipped}
				return
			}

			title, body := BuildDigest(date, filtered, analyses)
			if err := dest.Channel.Send(ctx, title, body); err != nil {
				log.Printf("❌ 推送到 %s 失败: %v", dest.Name, err)
				results[i] = result{destination: dest.Name, status: domain.NotifyStatusFailed, errMsg: err.Error()}
				return
			}

			fmt.Printf("📲 已推送到 %s (%d 个项目)\n", dest.Name, len(filtered))
			results[i] = result{destination: dest.Name, status: domain.NotifyStatusSent}
		}(i, dest)
	}
	wg.Wait()

	tally := &domain.NotifyTally{}
	for _, r := range results {
		tally.Add(r.destination, r.status, r.errMsg)
	}
	return tally
}
