package store

// pgMigrations is the ordered list of Postgres schema migrations. They are
// tracked in the same schema_version table layout as the SQLite ones.
var pgMigrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS todos (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	text         TEXT NOT NULL,
	is_mandatory BOOLEAN NOT NULL DEFAULT FALSE,
	completed    BOOLEAN NOT NULL DEFAULT FALSE,
	date         TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
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
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_todo_comments_todo ON todo_comments(todo_id, created_at);

CREATE OR REPLACE VIEW public_todos AS
	SELECT
		t.id, t.user_id, t.text, t.is_mandatory, t.completed, t.date,
		t.created_at, t.completed_at, t.image_url, t.catalog_key,
		u.name AS user_name
	FROM todos t
	JOIN users u ON u.id = t.user_id
	WHERE t.completed;

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE OR REPLACE FUNCTION generate_mandatory_todos(
	p_user_name TEXT,
	p_day       TEXT,
	p_keys      TEXT[],
	p_texts     TEXT[]
) RETURNS INTEGER AS $$
DECLARE
	v_user_id  TEXT;
	v_inserted INTEGER := 0;
	v_rows     INTEGER;
	i          INTEGER;
BEGIN
	SELECT id INTO v_user_id FROM users WHERE name = p_user_name;
	IF v_user_id IS NULL THEN
		RAISE EXCEPTION 'user % not found', p_user_name USING ERRCODE = 'P0002';
	END IF;

	PERFORM 1 FROM todos
	WHERE user_id = v_user_id AND date = p_day AND is_mandatory
	LIMIT 1;
	IF FOUND THEN
		RETURN 0;
	END IF;

	FOR i IN 1 .. coalesce(array_length(p_keys, 1), 0) LOOP
		INSERT INTO todos (
			id, user_id, text, is_mandatory, completed, date, created_at, catalog_key
		) VALUES (
			gen_random_uuid()::text, v_user_id, p_texts[i], TRUE, FALSE, p_day,
			clock_timestamp(), p_keys[i]
		)
		ON CONFLICT DO NOTHING;
		GET DIAGNOSTICS v_rows = ROW_COUNT;
		v_inserted := v_inserted + v_rows;
	END LOOP;

	RETURN v_inserted;
END;
$$ LANGUAGE plpgsql;

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
