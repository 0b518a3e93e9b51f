package rules

import (
	"fmt"
	"strings"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

const (
	daysPerMonth = 30
	// slagMnOLimit 渣中 MnO 高于该值说明锰流失到渣中
	slagMnOLimit = 15
	// recoveryStageGapLimit PLC 相对投料阶段回收率下降超过该值视为异常
	recoveryStageGapLimit = -2
)

// estimateImpact 按规则声明的方式估算财务影响 (₹)
func estimateImpact(kind domain.ImpactKind, targets domain.Targets, s domain.Summary, value, target float64) (float64, bool) {
	switch kind {
	case domain.ImpactExcessCost:
		if value > target && s.TotalProduction > 0 {
			return (value - target) * s.TotalProduction, true
		}
	case domain.ImpactExtraPower:
		if value > target && s.TotalProduction > 0 && targets.PowerTariff > 0 {
			return (value - target) * s.TotalProduction * targets.PowerTariff, true
		}
	case domain.ImpactUnderCapacity:
		if s.Capacity != nil && s.Capacity.DesignCapacityMT > s.Capacity.AvgDailyMT && targets.CostPerTon > 0 {
			return (s.Capacity.DesignCapacityMT - s.Capacity.AvgDailyMT) * targets.CostPerTon * daysPerMonth, true
		}
	}
	return 0, false
}

var causeLabels = map[domain.Metric]string{
	domain.MetricBreakdownMechanical: "mechanical",
	domain.MetricBreakdownElectrical: "electrical",
	domain.MetricBreakdownProduction: "production",
	domain.MetricBreakdownPreventive: "preventive maintenance",
	domain.MetricBreakdownShutdown:   "shutdown",
}

// causesFor 为部分指标补充可能原因
func causesFor(m domain.Metric, s domain.Summary, targets domain.Targets) string {
	switch m {
	case domain.MetricMnRecovery:
		var causes []string
		if b, ok := s.Metric(domain.MetricBasicity); ok {
			if band, ok := targets.Band(domain.MetricBasicity); ok && (b < band.Critical[0] || b > band.Critical[1]) {
				causes = append(causes, fmt.Sprintf("basicity %.2f outside %g-%g", b, band.Critical[0], band.Critical[1]))
			}
		}
		if mno, ok := s.Metric(domain.MetricMnO); ok && mno > slagMnOLimit {
			causes = append(causes, fmt.Sprintf("high MnO in slag (%.1f%%)", mno))
		}
		if gap, ok := s.Metric(domain.MetricMnRecoveryGap); ok && gap < recoveryStageGapLimit {
			causes = append(causes, fmt.Sprintf("PLC recovery %.1f points below feeding", -gap))
		}
		if len(causes) > 0 {
			return "Possible causes: " + strings.Join(causes, "; ")
		}
	case domain.MetricBreakdownTotal:
		if cause, mins, ok := s.DominantBreakdownCause(); ok {
			return fmt.Sprintf("Mostly %s breakdowns (%.0f min/day)", causeLabels[cause], mins)
		}
	}
	return ""
}
