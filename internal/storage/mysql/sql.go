package mysql

const insertAnalysisSQL = `
INSERT INTO analyses
  (target, competitor, region, lang, target_count, status, report)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO analysis_reviews\n  (analysis_id, entity, position, rating, author, `text`, review_date, raw)\nVALUES "

// Re-running an insert for the same (analysis_id, entity, position) keeps the
// newest non-NULL values, same shape as a partial re-ingest.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  rating      = COALESCE(VALUES(rating), analysis_reviews.rating),\n" +
	"  author      = COALESCE(VALUES(author), analysis_reviews.author),\n" +
	"  `text`      = COALESCE(VALUES(`text`), analysis_reviews.`text`),\n" +
	"  review_date = COALESCE(VALUES(review_date), analysis_reviews.review_date),\n" +
	"  raw         = COALESCE(VALUES(raw), analysis_reviews.raw)\n"

const insertMissSQL = `
INSERT INTO lookup_misses (query, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP, http_status = VALUES(http_status), reason = VALUES(reason)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getAnalysisSQL = `
SELECT
  id,
  target,
  competitor,
  region,
  lang,
  target_count,
  status,
  report,
  created_at
FROM analyses
WHERE id = ?
`

const listAnalysisReviewsSQL = "SELECT\n" +
	"  analysis_id,\n" +
	"  entity,\n" +
	"  position,\n" +
	"  rating,\n" +
	"  author,\n" +
	"  `text`,\n" +
	"  review_date,\n" +
	"  raw\n" +
	"FROM analysis_reviews\n" +
	"WHERE analysis_id = ?\n" +
	"ORDER BY entity, position"
