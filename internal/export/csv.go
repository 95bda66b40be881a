package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

// Options controls how numbers are rendered.
type Options struct {
	DecimalSeparator string
}

// delimiter picks ";" whenever "," is taken by decimals.
func (o Options) delimiter() rune {
	if o.DecimalSeparator == "." {
		return ','
	}
	return ';'
}

func (o Options) qty(v float64) string {
	return FormatDecimal(roundFloat(v, 2), 2, o.DecimalSeparator)
}

var shoppingListHeader = []string{
	"supply_id", "supply_name", "unit", "current_qty", "min_qty", "max_qty",
	"daily_average", "horizon_days", "recommended_buy", "priority", "rationale",
}

// ShoppingListCSV renders a shopping list, one row per supply.
func ShoppingListCSV(list *domain.ShoppingList, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = opts.delimiter()

	if err := w.Write(shoppingListHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, item := range list.Items {
		row := []string{
			item.SupplyID,
			item.SupplyName,
			item.Unit,
			opts.qty(item.CurrentQty),
			opts.qty(item.MinQty),
			opts.qty(item.MaxQty),
			FormatDecimal(roundFloat(item.DailyAverage, 3), 3, opts.DecimalSeparator),
			strconv.Itoa(item.HorizonDays),
			opts.qty(item.RecommendedBuy),
			string(item.Priority),
			item.Rationale,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", item.SupplyID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var consumptionHeader = []string{"supply_id", "supply_name", "unit", "total_used", "days", "daily_average"}

// ConsumptionCSV renders a consumption report.
func ConsumptionCSV(report *domain.ConsumptionReport, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = opts.delimiter()

	if err := w.Write(consumptionHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range report.Rows {
		record := []string{
			row.SupplyID,
			row.SupplyName,
			row.Unit,
			opts.qty(row.TotalUsed),
			strconv.Itoa(report.Days),
			FormatDecimal(roundFloat(row.DailyAverage, 3), 3, opts.DecimalSeparator),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", row.SupplyID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
