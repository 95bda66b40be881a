package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

type supplyRow struct {
	Name    string
	Unit    string
	SKU     string
	Aliases []string
}

// readSupplyRows parses name,unit,sku,aliases rows. Aliases are separated by
// "|". A header row starting with "name" is skipped.
func readSupplyRows(r io.Reader) ([]supplyRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []supplyRow
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "name") {
			continue
		}

		row := supplyRow{Name: strings.TrimSpace(record[0])}
		if row.Name == "" {
			return nil, fmt.Errorf("line %d: name is required", line)
		}
		if len(record) > 1 {
			row.Unit = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			row.SKU = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			for _, alias := range strings.Split(record[3], "|") {
				if alias = strings.TrimSpace(alias); alias != "" {
					row.Aliases = append(row.Aliases, alias)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func runImportSupplies(c *cli.Context) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.String("file"), err)
	}
	defer f.Close()

	rows, err := readSupplyRows(f)
	if err != nil {
		return err
	}

	catalog := appFrom(c).Services.Catalog
	tenant := c.String("tenant")

	existing, err := catalog.ListSupplies(c.Context, tenant, true)
	if err != nil {
		return err
	}
	byName := make(map[string]domain.Supply, len(existing))
	for _, s := range existing {
		byName[strings.ToLower(s.Name)] = s
	}

	created, aliases := 0, 0
	for _, row := range rows {
		supply, ok := byName[strings.ToLower(row.Name)]
		if !ok {
			in := domain.SupplyInput{Name: row.Name, Unit: row.Unit}
			if row.SKU != "" {
				sku := row.SKU
				in.SKU = &sku
			}
			s, err := catalog.CreateSupply(c.Context, tenant, in)
			if err != nil {
				return fmt.Errorf("failed to create supply %s: %w", row.Name, err)
			}
			supply = *s
			byName[strings.ToLower(row.Name)] = supply
			created++
		}

		for _, alias := range row.Aliases {
			if _, err := catalog.CreateAlias(c.Context, tenant, alias, supply.ID); err != nil {
				if errors.Is(err, domain.ErrAlreadyExists) {
					continue
				}
				return fmt.Errorf("failed to create alias %s: %w", alias, err)
			}
			aliases++
		}
	}

	log.Info().Int("supplies", created).Int("aliases", aliases).Str("tenant_id", tenant).Msg("supplies imported")
	fmt.Fprintf(c.App.Writer, "imported %d supplies and %d aliases\n", created, aliases)
	return nil
}
