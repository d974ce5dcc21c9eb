package store

// Schema v1 - products table shared by Series and Season documents.
// cls is the discriminator; items holds season IDs for a Series and
// the embedded episode tree for a Season.
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  cls TEXT NOT NULL CHECK (cls IN ('Series', 'Season')),
  title TEXT,
  alias TEXT NOT NULL,
  description TEXT,
  num INTEGER,
  quote_json TEXT,
  images_json TEXT NOT NULL DEFAULT '{}',
  items_json TEXT NOT NULL DEFAULT '[]',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Natural key of a Series; target of the upsert
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_series_key
  ON products(title, alias) WHERE cls = 'Series';

CREATE INDEX IF NOT EXISTS idx_products_cls ON products(cls);
`

// Schema v2 - alias lookups for single-series views
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_products_cls_alias ON products(cls, alias);
`
