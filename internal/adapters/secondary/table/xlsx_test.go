package table

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

type testSheet struct {
	name string
	rows [][]string
}

// writeWorkbook writes a minimal workbook using inline strings
func writeWorkbook(t *testing.T, sheets ...testSheet) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "book.xlsx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	add := func(name, content string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}

	add("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
</Types>`)

	var rels, book strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	book.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets>`)

	for i, sheet := range sheets {
		n := i + 1
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`, n, n)
		fmt.Fprintf(&book, `<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, sheet.name, n, n)

		var ws strings.Builder
		ws.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
		for r, row := range sheet.rows {
			fmt.Fprintf(&ws, `<row r="%d">`, r+1)
			for c, v := range row {
				if v == "" {
					continue
				}
				ref := fmt.Sprintf("%c%d", 'A'+c, r+1)
				fmt.Fprintf(&ws, `<c r="%s" t="inlineStr"><is><t>%s</t></is></c>`, ref, v)
			}
			ws.WriteString(`</row>`)
		}
		ws.WriteString(`</sheetData></worksheet>`)
		add(fmt.Sprintf("xl/worksheets/sheet%d.xml", n), ws.String())
	}
	rels.WriteString(`</Relationships>`)
	book.WriteString(`</sheets></workbook>`)
	add("xl/_rels/workbook.xml.rels", rels.String())
	add("xl/workbook.xml", book.String())

	require.NoError(t, zw.Close())
	return path
}

func TestXLSXSource_Supports(t *testing.T) {
	s := NewXLSXSource()
	assert.True(t, s.Supports("book.xlsx"))
	assert.True(t, s.Supports("book.XLSM"))
	assert.False(t, s.Supports("book.xls"))
	assert.False(t, s.Supports("book.csv"))
}

func TestXLSXSource_Load(t *testing.T) {
	path := writeWorkbook(t,
		testSheet{name: "Summary", rows: [][]string{{"region", "sales"}, {"north", "42"}, {"south", "17"}}},
		testSheet{name: "Detail", rows: [][]string{{}, {"", "sku", "qty"}, {"", "A-1", "3"}, {"", "B-2", ""}}},
	)

	tests := []struct {
		name string
		req  ports.TableRequest
		want *entities.DataFrame
	}{
		{
			name: "first sheet by default",
			req:  ports.TableRequest{Path: path},
			want: &entities.DataFrame{
				Columns: []string{"region", "sales"},
				Rows:    [][]string{{"north", "42"}, {"south", "17"}},
			},
		},
		{
			name: "named sheet trimmed to its content",
			req:  ports.TableRequest{Path: path, Sheet: "Detail"},
			want: &entities.DataFrame{
				Columns: []string{"sku", "qty"},
				Rows:    [][]string{{"A-1", "3"}, {"B-2", ""}},
			},
		},
		{
			name: "max rows",
			req:  ports.TableRequest{Path: path, MaxRows: 1},
			want: &entities.DataFrame{
				Columns: []string{"region", "sales"},
				Rows:    [][]string{{"north", "42"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df, err := NewXLSXSource().Load(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, df)
		})
	}
}

func TestXLSXSource_LoadErrors(t *testing.T) {
	t.Run("unknown sheet", func(t *testing.T) {
		path := writeWorkbook(t, testSheet{name: "Summary", rows: [][]string{{"a"}, {"1"}}})
		_, err := NewXLSXSource().Load(context.Background(), ports.TableRequest{Path: path, Sheet: "Missing"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `sheet "Missing" not found`)
		assert.Contains(t, err.Error(), "Summary")
	})

	t.Run("empty sheet", func(t *testing.T) {
		path := writeWorkbook(t, testSheet{name: "Blank", rows: [][]string{{""}}})
		_, err := NewXLSXSource().Load(context.Background(), ports.TableRequest{Path: path})
		assert.ErrorIs(t, err, entities.ErrSpecMismatch)
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := writeTemp(t, "book.xlsx", "plain text")
		_, err := NewXLSXSource().Load(context.Background(), ports.TableRequest{Path: path})
		assert.ErrorContains(t, err, "opening workbook")
	})
}
