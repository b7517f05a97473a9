package report

// schemaSQL is applied on startup with CREATE IF NOT EXISTS semantics so the
// sink works against a fresh database without external migration tooling.
const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS hunter;

CREATE TABLE IF NOT EXISTS hunter.reports (
	id           BIGSERIAL PRIMARY KEY,
	period_start TIMESTAMPTZ NOT NULL,
	period_end   TIMESTAMPTZ NOT NULL,
	config_hash  TEXT NOT NULL,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'processing',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	finished_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS hunter.candidates (
	id               BIGSERIAL PRIMARY KEY,
	report_id        BIGINT NOT NULL REFERENCES hunter.reports(id) ON DELETE CASCADE,
	entity_key       TEXT NOT NULL,
	entity_label     TEXT NOT NULL,
	entity_kind      TEXT NOT NULL,
	features         JSONB NOT NULL,
	momentum         DOUBLE PRECISION NOT NULL,
	novelty          DOUBLE PRECISION NOT NULL,
	quality          DOUBLE PRECISION NOT NULL,
	total_score      DOUBLE PRECISION NOT NULL,
	normalized_score DOUBLE PRECISION NOT NULL,
	UNIQUE (report_id, entity_key)
);

CREATE TABLE IF NOT EXISTS hunter.narratives (
	id           BIGSERIAL PRIMARY KEY,
	report_id    BIGINT NOT NULL REFERENCES hunter.reports(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	summary      TEXT NOT NULL,
	momentum     DOUBLE PRECISION NOT NULL,
	novelty      DOUBLE PRECISION NOT NULL,
	saturation   DOUBLE PRECISION NOT NULL,
	cluster_size INTEGER NOT NULL,
	member_keys  TEXT[] NOT NULL,
	evidence     JSONB NOT NULL,
	ideas        JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_candidates_report ON hunter.candidates(report_id);
CREATE INDEX IF NOT EXISTS idx_narratives_report ON hunter.narratives(report_id);
CREATE INDEX IF NOT EXISTS idx_reports_created ON hunter.reports(created_at DESC);
`
