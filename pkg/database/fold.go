package database

import (
	"database/sql/driver"
	"fmt"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

// FoldFunc is the SQL name of the Unicode case-fold scalar. SQLite's own
// lower() and LIKE only fold ASCII.
const FoldFunc = "fold"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(FoldFunc, 1, foldValue); err != nil {
		panic(fmt.Sprintf("register %s: %v", FoldFunc, err))
	}
}

// Fold returns the case-folded form of s, the same one the fold() SQL
// function produces.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return Fold(v), nil
	case []byte:
		return Fold(string(v)), nil
	default:
		return v, nil
	}
}
