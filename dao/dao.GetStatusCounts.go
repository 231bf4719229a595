package dao

import (
	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// GetStatusCounts computes the status tally for a checklist's checks. Counts
// are derived on every call and never stored, so they cannot go stale. All
// four buckets are present, zero filled, and sum to the check count.
func (dao *DataAccessLayer) GetStatusCounts(checklistID []byte) (models.StatusCounts, error) {
	defer util.Time("GetStatusCounts")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return models.StatusCounts{}, NewStorageError(err, "could not begin transaction")
	}
	counts, err := statusCountsForChecklistInTransaction(tx, checklistID)
	if err != nil {
		dao.GetLogger().Error("error in GetStatusCounts", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return counts, asDomainOrStorage(err)
}

// GetPendingCount is the pending bucket of the status tally
func (dao *DataAccessLayer) GetPendingCount(checklistID []byte) (int, error) {
	defer util.Time("GetPendingCount")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return 0, NewStorageError(err, "could not begin transaction")
	}
	pending := 0
	err = checklistExistsInTransaction(tx, checklistID)
	if err == nil {
		pending, err = pendingCountInTransaction(tx, checklistID)
	}
	if err != nil {
		dao.GetLogger().Error("error in GetPendingCount", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return pending, asDomainOrStorage(err)
}

func statusCountsForChecklistInTransaction(tx *sqlx.Tx, checklistID []byte) (models.StatusCounts, error) {
	var counts models.StatusCounts
	if err := checklistExistsInTransaction(tx, checklistID); err != nil {
		return counts, err
	}
	return statusCountsInTransaction(tx, checklistID)
}

type statusCountRow struct {
	Status models.CheckStatus `db:"status"`
	Count  int                `db:"cnt"`
}

func statusCountsInTransaction(tx *sqlx.Tx, checklistID []byte) (models.StatusCounts, error) {
	var counts models.StatusCounts
	var rows []statusCountRow
	countStatement := `
    select
        status
        ,count(*) as cnt
    from checklistitem
    where checklistId = ?
    group by status`
	if err := tx.Select(&rows, countStatement, checklistID); err != nil {
		return counts, err
	}
	for _, row := range rows {
		counts.Add(row.Status, row.Count)
	}
	return counts, nil
}

func pendingCountInTransaction(tx *sqlx.Tx, checklistID []byte) (int, error) {
	var pending int
	err := tx.Get(&pending, `select count(*) from checklistitem where checklistId = ? and status = ?`,
		checklistID, models.CheckStatusPending.String())
	return pending, err
}

func checklistExistsInTransaction(tx *sqlx.Tx, checklistID []byte) error {
	var matched int
	if err := tx.Get(&matched, `select count(*) from checklist where id = ?`, checklistID); err != nil {
		return err
	}
	if matched == 0 {
		return NewNotFoundError("checklist does not exist")
	}
	return nil
}
