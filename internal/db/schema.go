package db

import "fmt"

// SchemaSQL returns the database schema initialization SQL. The embedding
// dimension is interpolated into the HNSW index definitions; everything
// else is static.
func SchemaSQL(embeddingDimension int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- DREAM TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS dream SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON dream TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON dream TYPE string;
    DEFINE FIELD IF NOT EXISTS location ON dream TYPE string;
    DEFINE FIELD IF NOT EXISTS emotion ON dream TYPE string;
    DEFINE FIELD IF NOT EXISTS intensity ON dream TYPE int ASSERT $value >= 1 AND $value <= 10;
    -- TODO: Use set<string> when Go SDK supports CBOR tag 56 (v3.0 set type)
    DEFINE FIELD IF NOT EXISTS themes ON dream TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS objects ON dream TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS dream_date ON dream TYPE datetime;
    DEFINE FIELD IF NOT EXISTS embedding ON dream TYPE array<float> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS created ON dream TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS dream_date_idx ON dream FIELDS dream_date;
    DEFINE INDEX IF NOT EXISTS dream_embedding ON dream FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
    DEFINE ANALYZER IF NOT EXISTS dream_analyzer TOKENIZERS class FILTERS lowercase, ascii;
    DEFINE INDEX IF NOT EXISTS dream_description_ft ON dream FIELDS description FULLTEXT ANALYZER dream_analyzer BM25;

    -- ==========================================================================
    -- DEJAVU TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS dejavu SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS description ON dejavu TYPE string;
    DEFINE FIELD IF NOT EXISTS location ON dejavu TYPE string;
    DEFINE FIELD IF NOT EXISTS emotion ON dejavu TYPE string;
    DEFINE FIELD IF NOT EXISTS familiarity ON dejavu TYPE int ASSERT $value >= 1 AND $value <= 10;
    DEFINE FIELD IF NOT EXISTS trigger_context ON dejavu TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS entry_date ON dejavu TYPE datetime;
    DEFINE FIELD IF NOT EXISTS embedding ON dejavu TYPE array<float> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS created ON dejavu TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS dejavu_date_idx ON dejavu FIELDS entry_date;
    DEFINE INDEX IF NOT EXISTS dejavu_embedding ON dejavu FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
    DEFINE ANALYZER IF NOT EXISTS dejavu_analyzer TOKENIZERS class FILTERS lowercase, ascii;
    DEFINE INDEX IF NOT EXISTS dejavu_description_ft ON dejavu FIELDS description FULLTEXT ANALYZER dejavu_analyzer BM25;
`, embeddingDimension, embeddingDimension)
}
