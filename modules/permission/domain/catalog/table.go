package catalog

import "github.com/jacksonlee411/jobdesk/pkg/permset"

type Table struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Rows  []TableRow `json:"rows"`
}

type TableRow struct {
	Label     string `json:"label"`
	Exclusive bool   `json:"exclusive"`
	Cells     []Cell `json:"cells"`
}

type Cell struct {
	Permission string `json:"permission"`
	Label      string `json:"label"`
	Checked    bool   `json:"checked"`
}

// Tables renders s as one table per category, in catalog order.
func (c *Catalog) Tables(s permset.Set) []Table {
	out := make([]Table, 0, len(c.Categories))
	for _, cat := range c.Categories {
		t := Table{Key: cat.Key, Label: cat.Label, Rows: make([]TableRow, 0, len(cat.Rows))}
		for _, row := range cat.Rows {
			tr := TableRow{Label: row.Label, Exclusive: row.Exclusive, Cells: make([]Cell, 0, len(row.Options))}
			for _, e := range row.Options {
				tr.Cells = append(tr.Cells, Cell{Permission: e.Permission, Label: e.Label, Checked: s.Has(e.Permission)})
			}
			t.Rows = append(t.Rows, tr)
		}
		out = append(out, t)
	}
	return out
}
