package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of SQLite schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	text         TEXT NOT NULL,
	is_mandatory INTEGER NOT NULL DEFAULT 0,
	completed    INTEGER NOT NULL DEFAULT 0,
	date         TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	completed_at DATETIME,
	image_url    TEXT,
	catalog_key  TEXT
);

CREATE INDEX IF NOT EXISTS idx_todos_user_date ON todos(user_id, date);
CREATE INDEX IF NOT EXISTS idx_todos_completed_at ON todos(completed_at);

CREATE UNIQUE INDEX IF NOT EXISTS idx_todos_mandatory_key
	ON todos(user_id, date, catalog_key)
	WHERE catalog_key IS NOT NULL;

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS todo_comments (
	id         TEXT PRIMARY KEY,
	todo_id    TEXT NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
	user_name  TEXT NOT NULL,
	comment    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_todo_comments_todo ON todo_comments(todo_id, created_at);

CREATE VIEW IF NOT EXISTS public_todos AS
	SELECT
		t.id, t.user_id, t.text, t.is_mandatory, t.completed, t.date,
		t.created_at, t.completed_at, t.image_url, t.catalog_key,
		u.name AS user_name
	FROM todos t
	JOIN users u ON u.id = t.user_id
	WHERE t.completed = 1;

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
