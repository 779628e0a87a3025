package db

// Schema holds the DDL for all tables, in dependency order. The migrate
// script applies it; repository tests check their statements against it so
// the SQL and the shipped schema cannot drift apart.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS parties (
		id BIGSERIAL PRIMARY KEY,
		type TEXT NOT NULL CHECK (type IN ('CLIENT','VENDOR')),
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		tax_id TEXT,
		address TEXT,
		city TEXT,
		country TEXT,
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (type, name)
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_items (
		id BIGSERIAL PRIMARY KEY,
		sku TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		sales_unit_price NUMERIC(14,2) NOT NULL DEFAULT 0,
		purchase_unit_price NUMERIC(14,2) NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		doc_number TEXT NOT NULL UNIQUE,
		party_id BIGINT NOT NULL REFERENCES parties(id),
		issue_date DATE NOT NULL,
		due_date DATE,
		status TEXT NOT NULL DEFAULT 'OPEN' CHECK (status IN ('OPEN','PAID','VOID')),
		subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		shipping_charges NUMERIC(14,2) NOT NULL DEFAULT 0,
		grand_total NUMERIC(14,2) NOT NULL DEFAULT 0,
		balance NUMERIC(14,2) NOT NULL DEFAULT 0,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents (kind)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_party ON documents (party_id)`,
	`CREATE TABLE IF NOT EXISTS document_lines (
		id BIGSERIAL PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		item_id BIGINT REFERENCES catalog_items(id),
		unit TEXT NOT NULL DEFAULT '',
		quantity NUMERIC(14,3) NOT NULL DEFAULT 0,
		unit_price NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		line_total NUMERIC(14,2) NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		line_order INT NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_document_lines_document ON document_lines (document_id)`,
	`CREATE TABLE IF NOT EXISTS document_sequences (
		kind TEXT NOT NULL,
		period TEXT NOT NULL,
		last_value BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (kind, period)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		receipt_ref TEXT NOT NULL UNIQUE,
		document_id BIGINT NOT NULL REFERENCES documents(id),
		amount NUMERIC(14,2) NOT NULL,
		paid_at TIMESTAMPTZ NOT NULL,
		method TEXT NOT NULL,
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_document ON payments (document_id)`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key TEXT PRIMARY KEY,
		module TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// TableDDL returns the CREATE TABLE statement for the named table, or "".
func TableDDL(table string) string {
	prefix := "CREATE TABLE IF NOT EXISTS " + table + " ("
	for _, stmt := range Schema {
		if len(stmt) >= len(prefix) && stmt[:len(prefix)] == prefix {
			return stmt
		}
	}
	return ""
}
