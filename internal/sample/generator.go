// Package sample 生成模拟的炉子日报表
package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// Options 生成参数
type Options struct {
	Furnaces int
	Days     int
	Start    time.Time
	Seed     uint64
}

// DefaultOptions 4 个炉子 30 天
func DefaultOptions() Options {
	return Options{
		Furnaces: 4,
		Days:     30,
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:     1,
	}
}

// Columns 生成表格的列 (与原始日报表的列名一致)
func Columns() []string {
	return []string{
		"Furnace", "DATE", "GRADE", "Incharge",
		"Actual Production Qty", "Cake Production Qty", "Slag Qty (MT)",
		"MnO%", "SiO2%", "Cao%", "Mgo%", "Al2O3%", "Basicity",
		"Grade MN", "Grade SI", "C%",
		"Input Qty(Ore PLC)(MT)", "Input Qty(Coke PLC)(MT)",
		"Furnace Power Consumption", "Specific Power Consumption", "Load Factor", "Power Factor",
		"MN Recovery Feeding", "MN Recovery PLC", "SI Recovery Feeding", "SI Recovery PLC",
		"Ore Cost PLC", "Coke Cost PLC", "Power Cost", "Total Cost PLC",
		"Mechanical B/D Mins", "Electrical B/D Mins", "Total Breakdown Mins",
		"Target cost",
	}
}

// Generate 生成一张日报表，相同 Seed 产生相同结果
func Generate(opts Options) *domain.Table {
	if opts.Furnaces <= 0 {
		opts.Furnaces = 1
	}
	if opts.Days <= 0 {
		opts.Days = 1
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	grades := []string{"HC-SiMn", "LC-SiMn"}
	incharges := []string{"Manager_A", "Manager_B", "Manager_C"}
	breakdowns := []float64{0, 30, 60, 120}

	table := &domain.Table{Name: "Sheet1", Columns: Columns()}
	for day := 0; day < opts.Days; day++ {
		date := opts.Start.AddDate(0, 0, day)
		for f := 1; f <= opts.Furnaces; f++ {
			prod := uniform(80, 120)
			mech := breakdowns[rng.IntN(len(breakdowns))]
			elec := breakdowns[rng.IntN(2)]
			ore := prod * uniform(18000, 23000)
			coke := prod * uniform(14000, 19000)
			power := prod * uniform(15000, 20000)
			table.Rows = append(table.Rows, []string{
				fmt.Sprintf("F%d", f),
				date.Format("2006-01-02"),
				grades[rng.IntN(len(grades))],
				incharges[rng.IntN(len(incharges))],
				num(prod), num(prod * 1.05), num(prod * 0.3),
				num(uniform(5, 15)), num(uniform(30, 40)), num(uniform(35, 45)), num(uniform(5, 10)), num(uniform(10, 20)),
				num(uniform(1.2, 1.5)),
				num(uniform(66, 74)), num(uniform(15.5, 19)), num(uniform(6.2, 7.8)),
				num(prod * 1.8), num(prod * 0.25),
				num(prod * uniform(2000, 3000)), num(uniform(2200, 2800)), num(uniform(0.75, 0.95)), num(uniform(0.88, 0.98)),
				num(uniform(0.72, 0.82)), num(uniform(0.75, 0.85)), num(uniform(0.40, 0.50)), num(uniform(0.45, 0.55)),
				num(ore), num(coke), num(power), num(ore + coke + power + prod*uniform(5000, 12000)),
				num(mech), num(elec), num(mech + elec),
				"50000",
			})
		}
	}
	return table
}

// WriteCSV 以 CSV 写出
func WriteCSV(w io.Writer, table *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX 以工作簿写出，数值单元格写为数字
func WriteXLSX(w io.Writer, table *domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	write := func(row int, cells []string) error {
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			if v, err := strconv.ParseFloat(c, 64); err == nil {
				values[i] = v
			} else {
				values[i] = c
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, values)
	}

	if err := write(1, table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range table.Rows {
		if err := write(i+2, r); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
