package domain

// FieldKind 字段语义类型
type FieldKind string

const (
	KindFurnace  FieldKind = "FURNACE"
	KindDate     FieldKind = "DATE"
	KindGrade    FieldKind = "GRADE"
	KindIncharge FieldKind = "INCHARGE"
	KindNumber   FieldKind = "NUMBER"
)

// FieldSpec 描述一个可识别的输入列
type FieldSpec struct {
	Name    string    // 规范名称 (数值字段与 Metric 相同)
	Kind    FieldKind //
	Metric  Metric    // 仅 KindNumber
	Aliases []string  // 精确匹配的列名
	// Keywords 关键词 (小写)，仅在精确匹配失败后使用
	// 一个关键词内以空格分隔的各个词必须同时出现在列名中
	Keywords []string

	ZeroFill    bool // 列存在时，缺失单元格视为 0
	Percent     bool // 0-100 标度，需要小数检测
	NonNegative bool
}

func number(m Metric, aliases ...string) FieldSpec {
	return FieldSpec{Name: string(m), Kind: KindNumber, Metric: m, Aliases: aliases, NonNegative: true}
}

func (f FieldSpec) withKeywords(kw ...string) FieldSpec {
	f.Keywords = kw
	return f
}

func (f FieldSpec) zeroFill() FieldSpec {
	f.ZeroFill = true
	return f
}

func (f FieldSpec) percent() FieldSpec {
	f.Percent = true
	return f
}

// Fields 返回字段目录 (每次调用返回新切片)
// 顺序即解析顺序: 身份字段优先，然后是数值字段
func Fields() []FieldSpec {
	return []FieldSpec{
		{Name: "furnace", Kind: KindFurnace, Aliases: []string{"Furnace", "FURNACE", "Furnace No", "Furnace ID"},
			Keywords: []string{"furnace", "unit", "plant"}},
		{Name: "date", Kind: KindDate, Aliases: []string{"DATE", "Date", "Day"}, Keywords: []string{"date"}},
		{Name: "grade", Kind: KindGrade, Aliases: []string{"GRADE", "Grade", "Product Grade"}},
		{Name: "incharge", Kind: KindIncharge, Aliases: []string{"Incharge", "Shift Incharge"}, Keywords: []string{"incharge", "manager"}},

		number(MetricProductionQty, "Actual Production Qty", "Production Qty", "Production").
			withKeywords("production qty", "prod", "qty"),
		number(MetricCakeProductionQty, "Cake Production Qty"),
		number(MetricShortage, "Shortage").zeroFill(),
		number(MetricSlagQty, "Slag Qty (MT)", "Slag Qty"),
		number(MetricOreInputQty, "Input Qty(Ore PLC)(MT)", "Ore Input Qty"),
		number(MetricCokeInputQty, "Input Qty(Coke PLC)(MT)", "Coke Input Qty"),
		number(MetricUndersizeGen, "Under Size Generation").zeroFill(),

		number(MetricMnO, "MnO%", "MnO"),
		number(MetricSiO2, "SiO2%", "SiO2"),
		number(MetricFeO, "FeO%", "FeO Percentage"),
		number(MetricCaO, "Cao%", "CaO%"),
		number(MetricMgO, "Mgo%", "MgO%"),
		number(MetricAl2O3, "Al2O3%"),
		number(MetricBasicity, "Basicity"),
		number(MetricGradeMn, "Grade MN", "MN Grade", "Grade_MN"),
		number(MetricGradeSi, "Grade SI", "SI Grade", "Grade_SI"),
		number(MetricCarbon, "C%", "Carbon%"),

		number(MetricFurnacePower, "Furnace Power Consumption"),
		number(MetricAuxPower, "Aux power Consumption", "Aux Power Consumption"),
		number(MetricSpecificPower, "Specific Power Consumption", "Specific Power").
			withKeywords("specific power", "power consumption", "kwh"),
		number(MetricLoadFactor, "Load Factor", "Load_Factor").percent(),
		number(MetricPowerFactor, "Power Factor", "Power_Factor"),

		number(MetricMnRecoveryFeeding, "MN Recovery Feeding").percent(),
		number(MetricMnRecovery, "MN Recovery PLC", "MN Recovery").
			withKeywords("mn recovery").percent(),
		number(MetricSiRecoveryFeeding, "SI Recovery Feeding").percent(),
		number(MetricSiRecovery, "SI Recovery PLC", "SI Recovery").percent(),

		number(MetricOreCost, "Ore Cost PLC", "Ore Cost"),
		number(MetricCokeCost, "Coke Cost PLC", "Coke Cost"),
		number(MetricPowerCost, "Power Cost"),
		number(MetricFluxCost, "Fluxes PLC", "Fluxes Cost"),
		number(MetricUndersizeCost, "Undersize Cost PLC", "Undersize Cost"),
		number(MetricOverheadCost, "Over head", "Overhead"),
		number(MetricTotalCost, "Total Cost PLC", "Total Cost").
			withKeywords("total cost"),
		number(MetricTargetCost, "Target cost", "Target Cost"),

		number(MetricBreakdownMechanical, "Mechanical B/D Mins").zeroFill(),
		number(MetricBreakdownElectrical, "Electrical B/D Mins").zeroFill(),
		number(MetricBreakdownProduction, "Production B/D Mins").zeroFill(),
		number(MetricBreakdownPreventive, "Preventive B/D Mins").zeroFill(),
		number(MetricBreakdownShutdown, "Shutdown Mins").zeroFill(),
		number(MetricBreakdownTotal, "Total Breakdown Mins", "Total Breakdown").zeroFill(),
	}
}

// BreakdownCauses 停机原因分类字段
func BreakdownCauses() []Metric {
	return []Metric{
		MetricBreakdownMechanical,
		MetricBreakdownElectrical,
		MetricBreakdownProduction,
		MetricBreakdownPreventive,
		MetricBreakdownShutdown,
	}
}

// CostComponents 成本构成字段
func CostComponents() []Metric {
	return []Metric{
		MetricOreCost,
		MetricCokeCost,
		MetricPowerCost,
		MetricFluxCost,
		MetricUndersizeCost,
		MetricOverheadCost,
	}
}
