package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// linkIDs inserts (owner, id) rows into junctionTable for every id in ids,
// inside one transaction. If some ids do not exist in parentTable nothing is
// written and the missing ids are returned in ascending order.
func linkIDs(ctx context.Context, db *DB, parentTable, junctionTable, ownerColumn, idColumn string, owner any, ids []int64) ([]int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	missing, err := missingIDs(ctx, tx, parentTable, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return missing, nil
	}

	query, args, err := buildLinkQuery(junctionTable, ownerColumn, idColumn, owner, ids)
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil, nil
}

// missingIDs returns the ids that have no row in table.
func missingIDs(ctx context.Context, q queryer, table string, ids []int64) ([]int64, error) {
	query, args, err := buildExistingIDsQuery(table, ids)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		found[id] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// queryRoles runs a join query returning role columns.
func queryRoles(ctx context.Context, q queryer, query string, args ...any) ([]models.Role, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		roles = append(roles, role)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return roles, nil
}

// queryPermissions runs a join query returning permission columns.
func queryPermissions(ctx context.Context, q queryer, query string, args ...any) ([]models.Permission, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	permissions := make([]models.Permission, 0)
	for rows.Next() {
		permission, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		permissions = append(permissions, permission)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return permissions, nil
}

func scanRole(row rowScanner) (models.Role, error) {
	var r models.Role
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanPermission(row rowScanner) (models.Permission, error) {
	var p models.Permission
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
