package mysql

const getConfigSQL = `SELECT value FROM configuration WHERE name = ?`

const setConfigSQL = `
INSERT INTO configuration (name, value)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  value      = VALUES(value),
  updated_at = CURRENT_TIMESTAMP
`

// One row per order; the latest attempt wins.
const upsertSubmissionSQL = `
INSERT INTO order_submissions
  (order_id, order_number, status, http_status, error, payload)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  order_number = VALUES(order_number),
  status       = VALUES(status),
  http_status  = VALUES(http_status),
  error        = VALUES(error),
  payload      = VALUES(payload),
  attempts     = order_submissions.attempts + 1,
  updated_at   = CURRENT_TIMESTAMP
`

// Oldest failures first so a bounded resubmit run drains the backlog in order.
const listFailedSubmissionsSQL = `
SELECT order_id, order_number, status, http_status, error, payload
FROM order_submissions
WHERE status = 'failed'
ORDER BY updated_at ASC, order_id ASC
LIMIT ?
`
