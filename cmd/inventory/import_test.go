package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSupplyRows(t *testing.T) {
	input := `name,unit,sku,aliases
Domestos,l,DOM-750,domestos 750|savo modre
"Toaletní papír",role,,toaletak
Kávové kapsle
`
	rows, err := readSupplyRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, supplyRow{Name: "Domestos", Unit: "l", SKU: "DOM-750", Aliases: []string{"domestos 750", "savo modre"}}, rows[0])
	assert.Equal(t, "Toaletní papír", rows[1].Name)
	assert.Equal(t, []string{"toaletak"}, rows[1].Aliases)
	assert.Equal(t, supplyRow{Name: "Kávové kapsle"}, rows[2])
}

func TestReadSupplyRowsRequiresName(t *testing.T) {
	_, err := readSupplyRows(strings.NewReader("Domestos\n,ks\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestCommandsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range newApp().Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"migrate", "import-supplies", "seed-record", "recount", "consumption", "shopping-list", "alerts", "export"} {
		assert.True(t, names[want], want)
	}
}
