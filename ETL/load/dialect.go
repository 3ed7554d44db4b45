package load

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

func init() {
	// modernc.org/sqlite регистрируется как "sqlite", а sqlx знает только "sqlite3"
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Dialect описывает различия DDL между поддерживаемыми хранилищами
type Dialect struct {
	Name string

	// Определение суррогатного ключа с автоинкрементом
	surrogateKey string

	// Операторы до и после удаления таблиц
	beforeDrop []string
	afterDrop  []string

	// Суффикс DROP TABLE (например, CASCADE)
	dropSuffix string
}

var (
	// PostgresDialect - PostgreSQL через lib/pq
	PostgresDialect = Dialect{
		Name:         "postgres",
		surrogateKey: "BIGSERIAL PRIMARY KEY",
		dropSuffix:   " CASCADE",
	}

	// MySQLDialect - MySQL через go-sql-driver/mysql.
	// MySQL фиксирует DDL неявно, поэтому пересоздание схемы не откатывается.
	MySQLDialect = Dialect{
		Name:         "mysql",
		surrogateKey: "BIGINT AUTO_INCREMENT PRIMARY KEY",
		beforeDrop:   []string{"SET FOREIGN_KEY_CHECKS = 0"},
		afterDrop:    []string{"SET FOREIGN_KEY_CHECKS = 1"},
	}

	// SQLiteDialect - SQLite через modernc.org/sqlite
	SQLiteDialect = Dialect{
		Name:         "sqlite",
		surrogateKey: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
)

// DialectFor возвращает диалект для имени драйвера database/sql
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return PostgresDialect, nil
	case "mysql":
		return MySQLDialect, nil
	case "sqlite", "sqlite3":
		return SQLiteDialect, nil
	default:
		return Dialect{}, fmt.Errorf("неподдерживаемый драйвер хранилища: %q", driver)
	}
}

// ResetSchema возвращает операторы, которые удаляют и заново создают звездную схему.
// Таблица фактов удаляется первой и создается последней.
func (d Dialect) ResetSchema() []string {
	statements := append([]string(nil), d.beforeDrop...)
	for i := len(starSchema) - 1; i >= 0; i-- {
		statements = append(statements, fmt.Sprintf("DROP TABLE IF EXISTS %s%s", starSchema[i].name, d.dropSuffix))
	}
	statements = append(statements, d.afterDrop...)

	for _, table := range starSchema {
		statements = append(statements, table.create(d))
	}
	return statements
}
