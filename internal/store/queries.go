package store

// Calls queries
const (
	queryInsertCall = `
		INSERT INTO calls (id, function_name, arguments, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, now(), now())`

	queryMarkCallProcessing = `
		UPDATE calls SET status = ?, slot = ?, updated_at = now()
		WHERE id = ? AND status = ?`

	queryCompleteCall = `
		UPDATE calls SET status = ?, result = ?, error = ?, updated_at = now()
		WHERE id = ?`
)

var callColumns = []string{
	"id",
	"function_name",
	"arguments",
	"status",
	"slot",
	"result",
	"error",
	"created_at",
	"updated_at",
}
