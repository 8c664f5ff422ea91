package config

import (
	"database/sql/driver"
	"strings"
	"sync"

	gosqlite "github.com/glebarez/go-sqlite"
)

var (
	sqliteFuncsOnce sync.Once
	sqliteFuncsErr  error
)

// RegisterSQLiteFunctions replaces SQLite's ASCII-only lower() with a
// Unicode-aware version on every connection opened afterwards. It is safe to
// call more than once.
func RegisterSQLiteFunctions() error {
	sqliteFuncsOnce.Do(func() {
		sqliteFuncsErr = gosqlite.RegisterDeterministicScalarFunction("lower", 1, unicodeLower)
	})
	return sqliteFuncsErr
}

func unicodeLower(_ *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
