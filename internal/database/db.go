package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// サポートするドライバ名
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// ParseURL はデータベースURLからdatabase/sqlのドライバ名とDSNを決定する。
// postgres:// / postgresql:// はlib/pq、sqlite3:// / sqlite:// はgo-sqlite3を使用する。
// SQLiteのDSNはスキーム以降のパス部分（クエリ文字列を含む）になる。
func ParseURL(databaseURL string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite3://"):
		return DriverSQLite, strings.TrimPrefix(databaseURL, "sqlite3://"), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(databaseURL, "sqlite://"), nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q", redactScheme(databaseURL))
	}
}

// Open はデータベース接続を開く。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
// SQLiteは単一ライターのため接続数を1に制限する。
func Open(databaseURL string) (*sql.DB, error) {
	driver, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return db, nil
}

func redactScheme(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i]
	}
	return "(none)"
}
