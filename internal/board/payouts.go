package board

import "fmt"

// Payout multiplier tables per risk level and bucket count. Center
// buckets pay less, edges pay more; higher risk widens the spread.
var payoutTables = map[string]map[int][]float64{
	"low": {
		3: {1.2, 0.8, 1.2},
		5: {1.5, 1.1, 0.7, 1.1, 1.5},
		7: {2.0, 1.3, 1.0, 0.6, 1.0, 1.3, 2.0},
		9: {3.0, 1.6, 1.2, 0.9, 0.5, 0.9, 1.2, 1.6, 3.0},
	},
	"medium": {
		3: {2.0, 0.6, 2.0},
		5: {1.0, 2.0, 1.5, 5.0, 1.0},
		7: {4.0, 1.8, 0.9, 0.4, 0.9, 1.8, 4.0},
		9: {7.0, 2.5, 1.4, 0.7, 0.3, 0.7, 1.4, 2.5, 7.0},
	},
	"high": {
		3: {4.0, 0.2, 4.0},
		5: {8.0, 1.2, 0.3, 1.2, 8.0},
		7: {14.0, 3.0, 0.7, 0.2, 0.7, 3.0, 14.0},
		9: {26.0, 5.0, 1.5, 0.4, 0.1, 0.4, 1.5, 5.0, 26.0},
	},
}

// PayoutTable returns the multiplier row for a risk level and bucket
// count. The returned slice is a copy.
func PayoutTable(risk string, buckets int) ([]float64, error) {
	riskTables, ok := payoutTables[risk]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRisk, risk)
	}
	table, ok := riskTables[buckets]
	if !ok {
		return nil, fmt.Errorf("%w: risk %s buckets %d", ErrNoPayoutTable, risk, buckets)
	}
	out := make([]float64, len(table))
	copy(out, table)
	return out, nil
}

// RiskLevels lists the configured risk levels.
func RiskLevels() []string {
	return []string{"low", "medium", "high"}
}
