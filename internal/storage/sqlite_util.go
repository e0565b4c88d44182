package storage

import "database/sql"

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(valid bool, v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: valid}
}
