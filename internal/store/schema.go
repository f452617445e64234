package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    fingerprint          TEXT NOT NULL,
    schema_json          TEXT NOT NULL,
    row_count            INTEGER NOT NULL,
    dropped              INTEGER NOT NULL,
    encoding             TEXT,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS postings (
    file_path            TEXT NOT NULL REFERENCES files(file_path) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    account              TEXT NOT NULL,
    account_name         TEXT,
    amount               REAL NOT NULL,
    posting_date         TEXT,
    text                 TEXT,
    document_no          TEXT,
    dimensions           TEXT,
    PRIMARY KEY (file_path, seq)
);

CREATE INDEX IF NOT EXISTS idx_postings_account ON postings(account);
`
