package dao

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// GetChecklist retrieves a checklist with all of its checks and the derived
// status counts
func (dao *DataAccessLayer) GetChecklist(id []byte) (models.ECChecklist, error) {
	defer util.Time("GetChecklist")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return models.ECChecklist{}, NewStorageError(err, "could not begin transaction")
	}
	dbChecklist, err := getChecklistInTransaction(tx, id)
	if err != nil {
		dao.GetLogger().Error("error in GetChecklist", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbChecklist, asDomainOrStorage(err)
}

func getChecklistInTransaction(tx *sqlx.Tx, id []byte) (models.ECChecklist, error) {
	var dbChecklist models.ECChecklist
	getChecklistStatement := `
    select
        id
        ,createdDate
        ,createdBy
        ,modifiedDate
        ,modifiedBy
        ,name
        ,description
        ,status
    from checklist
    where id = ?`
	err := tx.Get(&dbChecklist, getChecklistStatement, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return dbChecklist, NewNotFoundError("checklist does not exist")
		}
		return dbChecklist, err
	}
	checks, err := getChecksForChecklistInTransaction(tx, id)
	if err != nil {
		return dbChecklist, err
	}
	dbChecklist.Checks = checks
	dbChecklist.Counts = models.TallyStatusCounts(checks)
	return dbChecklist, nil
}

func getChecksForChecklistInTransaction(tx *sqlx.Tx, checklistID []byte) ([]models.ECCheck, error) {
	var checks []models.ECCheck
	getChecksStatement := `
    select
        id
        ,createdDate
        ,createdBy
        ,modifiedDate
        ,modifiedBy
        ,checklistId
        ,ruleId
        ,ruleCode
        ,ruleTitle
        ,status
        ,notes
        ,evidence
        ,checkedBy
        ,checkedAt
    from checklistitem
    where checklistId = ?
    order by ruleCode asc`
	err := tx.Select(&checks, getChecksStatement, checklistID)
	return checks, err
}
