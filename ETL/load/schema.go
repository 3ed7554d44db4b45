package load

import (
	"fmt"
	"strings"
)

// Таблицы звездной схемы
const (
	TableDimCustomer      = "dim_customer"
	TableDimMerchant      = "dim_merchant"
	TableDimDate          = "dim_date"
	TableFactTransactions = "fact_transactions"
)

type tableDefinition struct {
	name string
	// %[1]s - определение суррогатного ключа диалекта
	ddl string
}

func (t tableDefinition) create(d Dialect) string {
	ddl := t.ddl
	if strings.Contains(ddl, "%[1]s") {
		ddl = fmt.Sprintf(ddl, d.surrogateKey)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.name, ddl)
}

// Порядок важен: измерения создаются раньше таблицы фактов
var starSchema = []tableDefinition{
	{
		name: TableDimCustomer,
		ddl: `
			customer_key %[1]s,
			customer_id BIGINT NOT NULL UNIQUE,
			first_name VARCHAR(255) NOT NULL,
			last_name_hash CHAR(64) NOT NULL,
			email_hash CHAR(64) NOT NULL`,
	},
	{
		name: TableDimMerchant,
		ddl: `
			merchant_key %[1]s,
			merchant_name VARCHAR(255) NOT NULL UNIQUE,
			category VARCHAR(255) NOT NULL`,
	},
	{
		name: TableDimDate,
		ddl: `
			date_key INTEGER NOT NULL PRIMARY KEY,
			full_date DATE NOT NULL,
			day_of_week INTEGER NOT NULL,
			day_name VARCHAR(16) NOT NULL,
			month INTEGER NOT NULL,
			month_name VARCHAR(16) NOT NULL,
			year INTEGER NOT NULL`,
	},
	{
		name: TableFactTransactions,
		ddl: `
			transaction_id VARCHAR(64) NOT NULL PRIMARY KEY,
			customer_key BIGINT NOT NULL,
			merchant_key BIGINT NOT NULL,
			date_key INTEGER NOT NULL,
			amount DECIMAL(12, 2) NOT NULL,
			FOREIGN KEY (customer_key) REFERENCES dim_customer (customer_key),
			FOREIGN KEY (merchant_key) REFERENCES dim_merchant (merchant_key),
			FOREIGN KEY (date_key) REFERENCES dim_date (date_key)`,
	},
}
