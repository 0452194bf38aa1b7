package rules

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// parseTimeRange parses a natural-language duration such as "1 hour",
// "3 days" or "2 weeks" into a time.Duration. Months are approximated as
// 30 days.
func parseTimeRange(timeRange string) (time.Duration, error) {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(timeRange)))
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time range format: %q", timeRange)
	}

	value, err := strconv.Atoi(parts[0])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid time range value: %q", timeRange)
	}

	switch strings.TrimSuffix(parts[1], "s") {
	case "hour":
		return time.Duration(value) * time.Hour, nil
	case "day":
		return time.Duration(value) * 24 * time.Hour, nil
	case "week":
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case "month":
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid time unit: %q", parts[1])
	}
}

// evaluateVelocity applies a velocity rule: aggregate the user's
// transactions inside the time window and trigger when the aggregate is
// strictly greater than the threshold. Malformed configuration or store
// failure is reported as an error; the caller demotes it to not-triggered.
func evaluateVelocity(ctx context.Context, store domain.Store, userID string, rule *domain.Rule, now time.Time) (bool, error) {
	if rule.TimeRange == "" || rule.Aggregation == "" || rule.Field == "" {
		return false, fmt.Errorf("incomplete velocity rule %s", rule.RuleID)
	}

	switch rule.Aggregation {
	case domain.AggCount, domain.AggSum, domain.AggAverage:
	default:
		return false, fmt.Errorf("unsupported aggregation function: %s", rule.Aggregation)
	}

	window, err := parseTimeRange(rule.TimeRange)
	if err != nil {
		return false, err
	}

	since := now.Add(-window)

	agg := rule.Aggregation
	// A '*' field is a plain document count.
	if rule.Field == "*" {
		agg = domain.AggCount
	}

	value, err := store.VelocityAggregate(ctx, userID, rule.Field, agg, since)
	if err != nil {
		return false, err
	}

	return value > rule.Threshold, nil
}
