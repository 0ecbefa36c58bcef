package cockroach

import "database/sql"

// expectOneRow превращает "0 строк затронуто" в notFound
func expectOneRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
