package vectorstore

const documentSchema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    employee_id INTEGER NOT NULL,
    content TEXT NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_documents_employee ON documents(employee_id);
`

// vecSchema is instantiated with the configured embedding dimensions.
const vecSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS vec_documents USING vec0(
    document_rowid INTEGER PRIMARY KEY,
    embedding FLOAT[%d]
);
`
