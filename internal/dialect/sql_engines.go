package dialect

import "fmt"

// Postgres is the identity-rewrite dialect for Direct-SQL against a
// Postgres-class source: double-quoted identifiers, no shimming needed.
type Postgres struct{}

// NewPostgres constructs the Postgres dialect adapter.
func NewPostgres() *Postgres { return &Postgres{} }

func (*Postgres) Name() string          { return "postgres" }
func (*Postgres) Rewrite(sql string) string { return sql }
func (*Postgres) QuoteIdent(name string) string {
	return fmt.Sprintf("%q", name)
}
func (*Postgres) TableRef(fileID string) string {
	if fileID == "" {
		return defaultTable
	}
	return fileID
}

// MySQL is the identity-rewrite dialect for Direct-SQL against a
// MySQL-class source: backtick-quoted identifiers.
type MySQL struct{}

// NewMySQL constructs the MySQL dialect adapter.
func NewMySQL() *MySQL { return &MySQL{} }

func (*MySQL) Name() string          { return "mysql" }
func (*MySQL) Rewrite(sql string) string { return sql }
func (*MySQL) QuoteIdent(name string) string {
	return fmt.Sprintf("`%s`", name)
}
func (*MySQL) TableRef(fileID string) string {
	if fileID == "" {
		return defaultTable
	}
	return fileID
}
