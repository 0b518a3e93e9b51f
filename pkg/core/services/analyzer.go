package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/renjie/furnace-core/pkg/adapters/factory"
	"github.com/renjie/furnace-core/pkg/core/domain"
	"github.com/renjie/furnace-core/pkg/core/ports"
	"github.com/renjie/furnace-core/pkg/core/services/rules"
)

// DefaultConcurrency 按炉并发聚合的默认上限
const DefaultConcurrency = 8

// Analyzer 分析管线编排
// normalize -> derive -> aggregate/capacity -> rules -> ranker -> escalate -> categorize
// 自身不保存任何运行期状态，可被多个请求并发使用
type Analyzer struct {
	targets          domain.Targets
	normalizer       ports.Normalizer
	deriver          ports.MetricDeriver
	capacity         ports.CapacityModel
	ranker           ports.Ranker
	capacityRepo     ports.CapacityRepository // 可选炉子额定参数
	ruleRepo         ports.RuleRepository     // 可选规则持久层
	rules            []ports.InsightRule      // 显式指定时忽略 ruleRepo
	factory          *factory.RuleFactory
	logger           *zap.Logger
	concurrencyLimit int
	byGrade          bool
	clock            func() time.Time
}

// AnalyzerOption 定义配置选项函数 (Functional Option Pattern)
type AnalyzerOption func(*Analyzer)

// WithTargets 设置全局目标 (复制后保存)
func WithTargets(t domain.Targets) AnalyzerOption {
	return func(a *Analyzer) {
		a.targets = t.Clone()
	}
}

// WithCapacityRepository 设置炉子额定参数来源
func WithCapacityRepository(repo ports.CapacityRepository) AnalyzerOption {
	return func(a *Analyzer) {
		a.capacityRepo = repo
	}
}

// WithRuleRepository 设置规则持久层依赖
func WithRuleRepository(repo ports.RuleRepository) AnalyzerOption {
	return func(a *Analyzer) {
		a.ruleRepo = repo
	}
}

// WithRules 直接指定规则实例
func WithRules(rules ...ports.InsightRule) AnalyzerOption {
	return func(a *Analyzer) {
		a.rules = rules
	}
}

// WithRuleFactory 使用自定义规则工厂 (可注册额外的规则类型)
func WithRuleFactory(f *factory.RuleFactory) AnalyzerOption {
	return func(a *Analyzer) {
		if f != nil {
			a.factory = f
		}
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithConcurrencyLimit 设置最大并发数 (默认 8)
func WithConcurrencyLimit(limit int) AnalyzerOption {
	return func(a *Analyzer) {
		if limit > 0 {
			a.concurrencyLimit = limit
		}
	}
}

// WithGradeAnalysis 是否输出 grade 以及 炉子×grade 汇总 (默认开启)
func WithGradeAnalysis(enabled bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.byGrade = enabled
	}
}

// WithClock 替换时间来源，主要用于测试
func WithClock(clock func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewAnalyzer 初始化分析服务
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		targets:          domain.DefaultTargets(),
		deriver:          NewDeriver(),
		capacity:         NewCapacityModel(),
		ranker:           NewRanker(),
		factory:          factory.NewRuleFactory(),
		logger:           zap.NewNop(),
		concurrencyLimit: DefaultConcurrency,
		byGrade:          true,
		clock:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.normalizer = NewNormalizer(
		WithRescaleThreshold(a.targets.RescaleThreshold),
		WithNormalizerLogger(a.logger),
	)
	return a
}

// Targets 返回全局目标的副本
func (a *Analyzer) Targets() domain.Targets {
	return a.targets.Clone()
}

// Analyze 实现 ports.FurnaceAnalyzer
// 只有结构性错误 (非表格、规则配置错误、ctx 取消) 会返回 error
func (a *Analyzer) Analyze(ctx context.Context, table *domain.Table) (*domain.Report, error) {
	start := a.clock()
	info, _ := domain.FromContext(ctx)
	runID := info.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := a.logger.With(zap.String("run_id", runID))

	insightRules, err := a.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	set, err := a.normalizer.Normalize(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	report := &domain.Report{
		RunID:       runID,
		Source:      info.Source,
		GeneratedAt: start,
		Findings:    []domain.Finding{},
		Insights:    map[domain.Bucket][]domain.Finding{},
		Columns:     set.Resolution,
		Corrections: set.Corrections,
		Issues:      set.Issues,
		Warnings:    set.Warnings,
	}
	if len(set.Records) == 0 {
		log.Info("analysis complete: no records", zap.Int("skipped", set.Skipped))
		return report, nil
	}

	records, issues := a.deriver.Derive(set.Records, a.targets)
	report.Issues = append(report.Issues, issues...)
	log.Debug("metrics derived", zap.Int("records", len(records)), zap.Int("overflowed", len(issues)))

	report.Furnaces, err = a.summarizeFurnaces(ctx, records)
	if err != nil {
		return nil, err
	}
	if a.byGrade {
		report.Grades = a.summarizeBy(records, func(r domain.Record) (domain.GroupKey, bool) {
			return domain.GroupKey{Grade: r.Grade}, r.Grade != ""
		})
		report.FurnaceGrades = a.summarizeBy(records, func(r domain.Record) (domain.GroupKey, bool) {
			return domain.GroupKey{Furnace: r.Furnace, Grade: r.Grade}, r.Grade != ""
		})
	}

	engine := NewRuleEngine(insightRules, log)
	findings := engine.Evaluate(runID, report.Furnaces, a.targetsFor)
	findings = append(findings, a.ranker.Compare(report.Furnaces)...)
	findings = append(findings, a.ranker.CompareGrades(report.Grades)...)
	findings = append(findings, a.ranker.Trends(records)...)
	findings = append(findings, a.ranker.Anomalies(records)...)
	findings = append(findings, a.ranker.CostDriver(report.Furnaces)...)
	findings = append(findings, rules.Escalate(findings)...)

	domain.SortFindings(findings)
	report.Findings = findings
	report.Insights = domain.Categorize(findings)
	report.Overall = a.overall(records, report)

	log.Info("analysis complete",
		zap.Int("records", len(records)),
		zap.Int("furnaces", len(report.Furnaces)),
		zap.Int("findings", len(findings)),
		zap.Int("high", report.Overall.Findings.High),
		zap.Duration("elapsed", a.clock().Sub(start)))
	return report, nil
}

// summarizeFurnaces 按炉分片并发聚合 (每个炉子一个 goroutine，受 concurrencyLimit 约束)
// 结果按炉号排序，与调度顺序无关
func (a *Analyzer) summarizeFurnaces(ctx context.Context, records []domain.Record) ([]domain.Summary, error) {
	groups, ids := byFurnace(records)
	out := make([]domain.Summary, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrencyLimit)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cfg, err := a.capacityFor(gctx, id)
			if err != nil {
				return err
			}
			out[i] = a.summarizeFurnace(id, groups[id], cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summarize furnaces: %w", err)
	}
	return out, nil
}

func (a *Analyzer) capacityFor(ctx context.Context, id string) (domain.FurnaceCapacity, error) {
	cfg := domain.FurnaceCapacity{FurnaceID: id}
	if a.capacityRepo == nil {
		return cfg, nil
	}
	c, ok, err := a.capacityRepo.Get(ctx, id)
	if err != nil {
		return cfg, fmt.Errorf("load capacity for %s: %w", id, err)
	}
	if ok {
		cfg = c
		cfg.FurnaceID = id
	}
	return cfg, nil
}

func (a *Analyzer) summarizeFurnace(id string, records []domain.Record, cfg domain.FurnaceCapacity) domain.Summary {
	s := a.deriver.Aggregate(domain.GroupKey{Furnace: id}, records)
	s.Config = cfg

	avgDaily, _ := s.Metric(domain.MetricAvgDailyProduction)
	info := a.capacity.Resolve(cfg, s.DailyProduction, avgDaily)
	s.Capacity = &info
	if info.HasUtilization {
		s.Means[domain.MetricCapacityUtilization] = info.Utilization
	}
	if info.MVAPerMT > 0 {
		s.Means[domain.MetricMVAPerMT] = info.MVAPerMT
	}

	savings := PotentialSavings(s, a.targetsFor(s))
	s.Savings = &savings
	return s
}

// summarizeBy 按任意分组键聚合，结果按键排序
func (a *Analyzer) summarizeBy(records []domain.Record, key func(domain.Record) (domain.GroupKey, bool)) []domain.Summary {
	groups := make(map[domain.GroupKey][]domain.Record)
	for _, r := range records {
		if k, ok := key(r); ok {
			groups[k] = append(groups[k], r)
		}
	}
	keys := make([]domain.GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Furnace != keys[j].Furnace {
			return keys[i].Furnace < keys[j].Furnace
		}
		return keys[i].Grade < keys[j].Grade
	})

	out := make([]domain.Summary, 0, len(keys))
	for _, k := range keys {
		out = append(out, a.deriver.Aggregate(k, groups[k]))
	}
	return out
}

// targetsFor 炉子级目标: 配置覆盖 > 数据中的目标吨成本列 > 全局目标
func (a *Analyzer) targetsFor(s domain.Summary) domain.Targets {
	t := a.targets.ForFurnace(s.Config)
	if s.Config.TargetCostMT <= 0 {
		if v, ok := s.Metric(domain.MetricTargetCost); ok && v > 0 {
			t.CostPerTon = v
		}
	}
	return t
}

func (a *Analyzer) overall(records []domain.Record, report *domain.Report) domain.OverallStats {
	all := a.deriver.Aggregate(domain.GroupKey{}, records)
	stats := domain.OverallStats{
		Rows:            len(records),
		FirstDate:       all.FirstDate,
		LastDate:        all.LastDate,
		TotalProduction: all.TotalProduction,
		TotalCost:       all.TotalCost,
		Means:           make(domain.Values),
	}
	for _, s := range report.Furnaces {
		stats.Furnaces = append(stats.Furnaces, s.Key.Furnace)
	}
	for _, s := range report.Grades {
		stats.Grades = append(stats.Grades, s.Key.Grade)
	}
	for _, m := range []domain.Metric{
		domain.MetricCostPerTon, domain.MetricSpecificPower, domain.MetricMnRecovery,
		domain.MetricAvailability, domain.MetricAvgDailyProduction,
	} {
		if v, ok := all.Metric(m); ok {
			stats.Means[m] = v
		}
	}
	for _, f := range report.Findings {
		switch f.Severity {
		case domain.SeverityHigh:
			stats.Findings.High++
		case domain.SeverityMedium:
			stats.Findings.Medium++
		case domain.SeverityLow:
			stats.Findings.Low++
		}
	}
	return stats
}
