// internal/allocator/allocator.go
package allocator

import (
	"math"
	"sort"

	"github.com/stockpilot/backend-go/internal/domain"
)

// zeroRunwayRisk stands in for 1/coverage when coverage is zero; a fixed cap
// rather than infinity so zero-runway rows rank highest but stay comparable.
const zeroRunwayRisk = 2.0

// Candidate is one reorder candidate offered to the allocator. SalesValue is
// optional richer revenue data; when absent the importance chain falls back
// to unit-count proxies.
type Candidate struct {
	Row        domain.DashboardRow
	SalesValue float64
}

// Allocate selects which reorder candidates to fund under the spending cap,
// ranked by composite risk x importance score. Pure and deterministic: the
// same candidates and budget always produce the identical plan.
func Allocate(candidates []Candidate, budget float64, targetCoverageDays int) domain.BudgetPlan {
	plan := domain.BudgetPlan{
		Budget:       budget,
		CoverageDays: targetCoverageDays,
		Picks:        []domain.BudgetPick{},
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Row.RecommendedQty <= 0 {
			continue
		}
		cost := resolveUnitCost(c.Row)
		scored = append(scored, scoredCandidate{
			row:   c.Row,
			spend: float64(c.Row.RecommendedQty) * cost,
			score: scoreCandidate(c, cost),
		})
	}

	// Score descending; equal scores break on SKU ascending so the output is
	// reproducible regardless of input order.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].row.SKU < scored[j].row.SKU
	})

	for _, sc := range scored {
		if sc.spend <= 0 {
			continue
		}
		// The very first candidate considered is admitted even when it alone
		// exceeds the budget, so the plan is never empty while a
		// positive-spend candidate exists.
		if len(plan.Picks) > 0 && plan.UsedAmount+sc.spend > budget {
			plan.ExcludedAmount += sc.spend
			plan.ExcludedCount++
			continue
		}
		plan.UsedAmount += sc.spend
		plan.Picks = append(plan.Picks, domain.BudgetPick{
			SKU:          sc.row.SKU,
			VariantID:    sc.row.VariantID,
			ProductName:  sc.row.ProductName,
			Qty:          sc.row.RecommendedQty,
			Amount:       sc.spend,
			CoverageDays: sc.row.CoverageDays,
			RiskTag:      riskTag(sc.row.CoverageDays),
		})
	}

	pool := plan.UsedAmount + plan.ExcludedAmount
	if pool == 0 {
		pool = budget
	}
	if pool > 0 {
		plan.CoverageShare = math.Min(1, plan.UsedAmount/pool)
	}

	return plan
}

type scoredCandidate struct {
	row   domain.DashboardRow
	spend float64
	score float64
}

// resolveUnitCost is the ordered cost fallback: explicit cost, then cost
// derived from stock value, then zero. A zero cost biases the ranking toward
// "free" picks; that is a documented tradeoff, not an accident.
func resolveUnitCost(row domain.DashboardRow) float64 {
	chain := []func() float64{
		func() float64 {
			if row.UnitCost != nil && *row.UnitCost > 0 {
				return *row.UnitCost
			}
			return 0
		},
		func() float64 {
			if row.Available > 0 && row.StockValue > 0 {
				return row.StockValue / float64(row.Available)
			}
			return 0
		},
	}
	return firstPositive(chain)
}

// scoreCandidate combines shortage risk with commercial importance.
func scoreCandidate(c Candidate, unitCost float64) float64 {
	risk := zeroRunwayRisk
	if c.Row.CoverageDays > 0 {
		risk = 1 / c.Row.CoverageDays
	}

	// Importance chain: known sales value, then unit sales priced at cost,
	// then a 30-day demand projection. Keeps SKUs without richer sales data
	// comparable to those with it.
	costFloor := math.Max(unitCost, 1)
	importance := firstPositive([]func() float64{
		func() float64 { return c.SalesValue },
		func() float64 { return float64(c.Row.SalesInWindow) * costFloor },
		func() float64 { return c.Row.AvgDailySales * 30 * costFloor },
	})

	return risk * math.Max(importance, 1)
}

// firstPositive evaluates an ordered chain and returns the first positive
// result, or zero when none produces one.
func firstPositive(chain []func() float64) float64 {
	for _, fn := range chain {
		if v := fn(); v > 0 {
			return v
		}
	}
	return 0
}

func riskTag(coverageDays float64) string {
	switch {
	case coverageDays <= 0:
		return "stocked_out"
	case coverageDays <= 7:
		return "critical"
	case coverageDays <= 14:
		return "urgent"
	default:
		return "watch"
	}
}
