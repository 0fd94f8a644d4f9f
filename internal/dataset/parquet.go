package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
)

// parquetSource reads whatever flat columns the file declares. Column names go
// through the same normalization and aliases as CSV headers, so a column the
// file lacks stays absent and surfaces later as a MissingColumnError.
type parquetSource struct{}

func (parquetSource) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".parquet")
}

func (parquetSource) Read(path string, _ Kind, _ Options) (*Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer fr.Close()
	pr, err := reader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return nil, fmt.Errorf("read parquet footer: %w", err)
	}
	defer pr.ReadStop()

	sh := pr.SchemaHandler
	n := pr.GetNumRows()
	t := &Table{}
	var columns [][]string
	for _, in := range sh.ValueColumns {
		ex := common.StrToPath(sh.InPathToExPath[in])
		// Nested and repeated fields have no place in a flat table.
		if len(ex) != 2 {
			continue
		}
		el := sh.SchemaElements[sh.MapIndex[in]]
		if el.GetRepetitionType() == parquet.FieldRepetitionType_REPEATED {
			continue
		}
		cells := make([]string, n)
		if n > 0 {
			values, _, _, err := pr.ReadColumnByPath(in, n)
			if err != nil {
				return nil, fmt.Errorf("read parquet column %q: %w", ex[1], err)
			}
			if int64(len(values)) != n {
				return nil, fmt.Errorf("parquet column %q: got %d values for %d rows", ex[1], len(values), n)
			}
			for i, v := range values {
				cells[i] = parquetCell(v, el)
			}
		}
		t.Header = append(t.Header, ex[1])
		columns = append(columns, cells)
	}

	t.Rows = make([][]string, n)
	for r := range t.Rows {
		row := make([]string, len(columns))
		for c := range columns {
			row[c] = columns[c][r]
		}
		t.Rows[r] = row
	}
	return t, nil
}

// parquetCell renders one physical value as the text a CSV export would hold.
// Nulls become empty cells; date and timestamp columns become ISO dates.
func parquetCell(v any, el *parquet.SchemaElement) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "1"
		}
		return "0"
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int32:
		if isDateColumn(el) {
			return time.Unix(int64(x)*86400, 0).UTC().Format("2006-01-02")
		}
		return strconv.FormatInt(int64(x), 10)
	case int64:
		if ts, ok := timestampValue(x, el); ok {
			return ts.UTC().Format("2006-01-02 15:04:05.999999999")
		}
		return strconv.FormatInt(x, 10)
	}
	return fmt.Sprint(v)
}

func isDateColumn(el *parquet.SchemaElement) bool {
	if lt := el.GetLogicalType(); lt != nil && lt.IsSetDATE() {
		return true
	}
	return el.IsSetConvertedType() && el.GetConvertedType() == parquet.ConvertedType_DATE
}

func timestampValue(v int64, el *parquet.SchemaElement) (time.Time, bool) {
	if lt := el.GetLogicalType(); lt != nil && lt.IsSetTIMESTAMP() {
		unit := lt.GetTIMESTAMP().GetUnit()
		switch {
		case unit.IsSetMILLIS():
			return time.UnixMilli(v), true
		case unit.IsSetMICROS():
			return time.UnixMicro(v), true
		case unit.IsSetNANOS():
			return time.Unix(0, v), true
		}
	}
	if el.IsSetConvertedType() {
		switch el.GetConvertedType() {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			return time.UnixMilli(v), true
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			return time.UnixMicro(v), true
		}
	}
	return time.Time{}, false
}
