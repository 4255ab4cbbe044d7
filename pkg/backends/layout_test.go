package backends

import (
	"reflect"
	"testing"

	"github.com/ledongthuc/pdf"
)

func row(texts ...pdf.Text) *pdf.Row {
	return &pdf.Row{Content: pdf.TextHorizontal(texts)}
}

func TestClusterRow_singleCell(t *testing.T) {
	r := row(
		pdf.Text{X: 10, W: 20, S: "hello"},
		pdf.Text{X: 32, W: 25, S: "world"},
	)
	want := []string{"hello world"}
	if got := clusterRow(r, 3.0); !reflect.DeepEqual(got, want) {
		t.Errorf("clusterRow = %v, want %v", got, want)
	}
}

func TestClusterRow_splitsOnWideGap(t *testing.T) {
	r := row(
		pdf.Text{X: 10, W: 20, S: "Name"},
		pdf.Text{X: 200, W: 20, S: "Amount"},
	)
	want := []string{"Name", "Amount"}
	if got := clusterRow(r, 3.0); !reflect.DeepEqual(got, want) {
		t.Errorf("clusterRow = %v, want %v", got, want)
	}
}

func TestClusterRow_sortsByX(t *testing.T) {
	r := row(
		pdf.Text{X: 200, W: 20, S: "second"},
		pdf.Text{X: 10, W: 20, S: "first"},
	)
	want := []string{"first", "second"}
	if got := clusterRow(r, 3.0); !reflect.DeepEqual(got, want) {
		t.Errorf("clusterRow = %v, want %v", got, want)
	}
}

func TestClusterRow_skipsBlankFragments(t *testing.T) {
	r := row(
		pdf.Text{X: 10, W: 5, S: "  "},
		pdf.Text{X: 20, W: 20, S: "only"},
	)
	want := []string{"only"}
	if got := clusterRow(r, 3.0); !reflect.DeepEqual(got, want) {
		t.Errorf("clusterRow = %v, want %v", got, want)
	}
}

func TestRenderPageText(t *testing.T) {
	cellRows := [][]string{
		{"Title"},
		{},
		{"Name", "Amount"},
	}
	want := "Title\nName  Amount"
	if got := renderPageText(cellRows); got != want {
		t.Errorf("renderPageText = %q, want %q", got, want)
	}
}

func TestDetectTables_requiresConsecutiveMultiCellRows(t *testing.T) {
	cellRows := [][]string{
		{"Heading"},
		{"Name", "Amount"},
		{"Coffee", "3.50"},
		{"Tea", "2.80"},
		{"closing paragraph"},
	}
	tables := detectTables(cellRows, 4)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	tbl := tables[0]
	if tbl.Page != 4 || tbl.TableIndex != 0 {
		t.Errorf("table position = page %d index %d", tbl.Page, tbl.TableIndex)
	}
	want := [][]string{{"Name", "Amount"}, {"Coffee", "3.50"}, {"Tea", "2.80"}}
	if !reflect.DeepEqual(tbl.Data, want) {
		t.Errorf("Data = %v, want %v", tbl.Data, want)
	}
}

func TestDetectTables_singleRowIsNotATable(t *testing.T) {
	cellRows := [][]string{
		{"text"},
		{"Name", "Amount"},
		{"more text"},
	}
	if tables := detectTables(cellRows, 1); len(tables) != 0 {
		t.Errorf("got %d tables, want 0", len(tables))
	}
}

func TestDetectTables_multipleTablesIndexed(t *testing.T) {
	cellRows := [][]string{
		{"a", "b"},
		{"c", "d"},
		{"break"},
		{"e", "f"},
		{"g", "h"},
	}
	tables := detectTables(cellRows, 2)
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[0].TableIndex != 0 || tables[1].TableIndex != 1 {
		t.Errorf("indexes = %d, %d", tables[0].TableIndex, tables[1].TableIndex)
	}
}
