package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"audio-track-subscription/internal/config"
	pg "audio-track-subscription/internal/infra/db/postgres"
)

// schema creates the tables the repositories expect. The partial unique index
// on (user_id, track_id) backs the grant upsert; legacy title-keyed rows keep
// track_id NULL and stay outside it.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS categories (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tracks (
	id             BIGSERIAL PRIMARY KEY,
	category_id    BIGINT NOT NULL REFERENCES categories(id),
	title          TEXT NOT NULL,
	description    TEXT,
	thumbnail_path TEXT,
	mp3_path       TEXT,
	price_paise    BIGINT NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT 'published',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
	order_id   TEXT PRIMARY KEY,
	payment_id TEXT,
	receipt    TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	amount     NUMERIC(12,2) NOT NULL,
	currency   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'in_transit',
	method     TEXT,
	signature  TEXT,
	user_id    BIGINT REFERENCES users(id),
	track_id   BIGINT REFERENCES tracks(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_status_created
	ON transactions (status, created_at);

CREATE TABLE IF NOT EXISTS subscriptions (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	track_id   BIGINT REFERENCES tracks(id),
	track      TEXT,
	status     TEXT NOT NULL DEFAULT 'active',
	start_date DATE,
	end_date   DATE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_user_track
	ON subscriptions (user_id, track_id) WHERE track_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_subscriptions_user_dates
	ON subscriptions (user_id, status, end_date);
`

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	withSamples := flag.Bool("samples", false, "also insert sample catalog data")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	if !*withSamples {
		return
	}

	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories;`).Scan(&n); err != nil {
		log.Fatalf("count categories: %v", err)
	}
	if n > 0 {
		fmt.Printf("%d categories already present. No changes.\n", n)
		return
	}

	const samples = `
WITH cat AS (
	INSERT INTO categories (name) VALUES ('Meditation'), ('Sleep Stories')
	RETURNING id, name
)
INSERT INTO tracks (category_id, title, description, mp3_path, price_paise)
SELECT id, t.title, t.description, t.mp3_path, t.price_paise
FROM cat
JOIN (VALUES
	('Meditation',    'Morning Calm',   'Ten minute guided start to the day', 'media/morning-calm.mp3',   0),
	('Meditation',    'Deep Focus',     'Forty minute concentration session', 'media/deep-focus.mp3',     14900),
	('Sleep Stories', 'Night Train',    'A slow ride into sleep',             'media/night-train.mp3',    14900)
) AS t(category, title, description, mp3_path, price_paise) ON t.category = cat.name;
`
	if _, err := pool.Exec(ctx, samples); err != nil {
		log.Fatalf("seed samples: %v", err)
	}
	fmt.Println("sample catalog seeded")
}
