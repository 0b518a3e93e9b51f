package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupKey 分组键，Grade 为空表示按炉汇总
// Furnace 为空表示按 grade 跨炉汇总
type GroupKey struct {
	Furnace string `json:"furnace,omitempty"`
	Grade   string `json:"grade,omitempty"`
}

func (k GroupKey) String() string {
	switch {
	case k.Furnace != "" && k.Grade != "":
		return k.Furnace + "/" + k.Grade
	case k.Grade != "":
		return k.Grade
	default:
		return k.Furnace
	}
}

// CostShare 单项成本占总成本的比例
type CostShare struct {
	Component Metric          `json:"component"`
	Total     decimal.Decimal `json:"total"`
	SharePct  float64         `json:"share_pct"`
	PerTon    float64         `json:"per_ton,omitempty"`
}

// Summary 一个分组的聚合结果 (汇总表的一行)
// 求和字段: TotalProduction / TotalCost / BreakdownHours
// 其余比率均为记录级比率的平均值 (mean-of-ratios)
type Summary struct {
	Key       GroupKey  `json:"key"`
	Records   int       `json:"records"`
	Days      int       `json:"days"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`

	TotalProduction float64         `json:"total_production"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	HasTotalCost    bool            `json:"has_total_cost"`
	BreakdownHours  float64         `json:"breakdown_hours"`

	// Means 包含记录级指标均值以及分组级指标 (产能利用率等)
	Means Values `json:"means"`

	CostBreakdown   []CostShare     `json:"cost_breakdown,omitempty"`
	BreakdownCauses Values          `json:"breakdown_causes,omitempty"` // 各原因日均分钟
	DailyProduction []float64       `json:"-"`                          // 按日期求和后的日产量
	Capacity        *CapacityInfo   `json:"capacity,omitempty"`
	Savings         *Savings        `json:"savings,omitempty"`
	Config          FurnaceCapacity `json:"-"`
}

// Metric 读取分组指标，非有限值视为缺失
func (s Summary) Metric(m Metric) (float64, bool) {
	v, ok := s.Means.Get(m)
	return v, ok && Finite(v)
}

// TopCostDriver 占比最高的成本项
func (s Summary) TopCostDriver() (CostShare, bool) {
	var best CostShare
	found := false
	for _, c := range s.CostBreakdown {
		if !found || c.SharePct > best.SharePct {
			best = c
			found = true
		}
	}
	return best, found
}

// DominantBreakdownCause 日均停机分钟最多的原因
func (s Summary) DominantBreakdownCause() (Metric, float64, bool) {
	var (
		cause Metric
		mins  float64
		found bool
	)
	for _, m := range BreakdownCauses() {
		v, ok := s.BreakdownCauses.Get(m)
		if ok && v > 0 && (!found || v > mins) {
			cause, mins, found = m, v, true
		}
	}
	return cause, mins, found
}

// SeverityCount 各严重程度的数量
type SeverityCount struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// OverallStats 全量数据的单行统计
type OverallStats struct {
	Rows            int             `json:"rows"`
	Furnaces        []string        `json:"furnaces"`
	Grades          []string        `json:"grades,omitempty"`
	FirstDate       time.Time       `json:"first_date"`
	LastDate        time.Time       `json:"last_date"`
	TotalProduction float64         `json:"total_production"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Means           Values          `json:"means"`
	Findings        SeverityCount   `json:"findings"`
}
