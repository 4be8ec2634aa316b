package storage

// Schema is the single table behind the SQLite store. A NULL value is a
// deletion tombstone, kept so that other instances observe the delete.
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB,
	rev INTEGER NOT NULL,
	origin TEXT NOT NULL,
	updated DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_kv_rev ON kv(rev);
`
