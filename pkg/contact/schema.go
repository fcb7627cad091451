package contact

// Schema contains the SQL statements to create the contact database schema.
const Schema = `
-- Submissions table: stores contact-form entries received by the relay
CREATE TABLE IF NOT EXISTS submissions (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    message    TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at);
`

const (
	// maxMessageBytes caps the free-text field so a single POST cannot bloat the database.
	maxMessageBytes = 10000

	maxNameBytes  = 200
	maxEmailBytes = 320
)
