package dao

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// UpdateCheck records a verification outcome for one check. The check must
// belong to the given checklist; an id from another checklist reads as not
// found. A non pending status stamps checkedBy and checkedAt, re-recording
// them even when the status repeats so the fields always name the last
// toucher. A move back to pending clears them. Notes and evidence merge:
// omitted values are retained and empty strings clear. The result carries the
// owning checklist's status and pending count, read in the same transaction,
// so callers can surface activation readiness without a second round trip.
func (dao *DataAccessLayer) UpdateCheck(checklistID []byte, checkID []byte, patch CheckPatch, actor string) (CheckUpdate, error) {
	defer util.Time("UpdateCheck")()
	logger := dao.GetLogger()
	retryCounter := dao.DeadlockRetryCounter
	retryDelay := dao.DeadlockRetryDelay
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		logger.Error("could not begin transaction", zap.Error(err))
		return CheckUpdate{}, NewStorageError(err, "could not begin transaction")
	}
	result, err := updateCheckInTransaction(tx, checklistID, checkID, patch, actor)
	for retryCounter > 0 && err != nil && util.ContainsAny(err.Error(), retryOnErrorMessageContains) {
		logger.Debug("restarting transaction for updateCheckInTransaction", zap.String("retryReason", util.FirstMatch(err.Error(), retryOnErrorMessageContains)), zap.Int64("retryCounter", retryCounter))
		tx.Rollback()
		time.Sleep(time.Duration(retryDelay) * time.Millisecond)
		retryCounter--
		tx, err = dao.MetadataDB.Beginx()
		if err != nil {
			logger.Error("could not begin transaction", zap.Error(err))
			return CheckUpdate{}, NewStorageError(err, "could not begin transaction")
		}
		result, err = updateCheckInTransaction(tx, checklistID, checkID, patch, actor)
	}
	if err != nil {
		logger.Error("error in UpdateCheck", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return result, asDomainOrStorage(err)
}

func updateCheckInTransaction(tx *sqlx.Tx, checklistID []byte, checkID []byte, patch CheckPatch, actor string) (CheckUpdate, error) {
	var result CheckUpdate

	if _, err := models.ParseCheckStatus(patch.Status.String()); err != nil {
		return result, NewValidationError("%v", err)
	}

	var dbCheck models.ECCheck
	lockStatement := `
    select
        id
        ,createdDate
        ,createdBy
        ,modifiedDate
        ,modifiedBy
        ,checklistId
        ,ruleId
        ,status
        ,notes
        ,evidence
        ,checkedBy
        ,checkedAt
    from checklistitem
    where id = ? and checklistId = ?
    for update`
	err := tx.Get(&dbCheck, lockStatement, checkID, checklistID)
	if err != nil {
		if err == sql.ErrNoRows {
			return result, NewNotFoundError("check does not exist in this checklist")
		}
		return result, err
	}

	newNotes := overlayNullString(dbCheck.Notes, patch.Notes)
	newEvidence := overlayNullString(dbCheck.Evidence, patch.Evidence)

	if patch.Status == models.CheckStatusPending {
		_, err = tx.Exec(`update checklistitem set
            modifiedBy = ?
            ,status = ?
            ,notes = ?
            ,evidence = ?
            ,checkedBy = null
            ,checkedAt = null
        where id = ?`,
			actor, patch.Status.String(), newNotes, newEvidence, checkID)
	} else {
		_, err = tx.Exec(`update checklistitem set
            modifiedBy = ?
            ,status = ?
            ,notes = ?
            ,evidence = ?
            ,checkedBy = ?
            ,checkedAt = now(6)
        where id = ?`,
			actor, patch.Status.String(), newNotes, newEvidence, actor, checkID)
	}
	if err != nil {
		return result, err
	}

	updated, err := getCheckInTransaction(tx, checkID)
	if err != nil {
		return result, err
	}
	var checklistStatus models.ChecklistStatus
	if err := tx.Get(&checklistStatus, `select status from checklist where id = ?`, checklistID); err != nil {
		return result, err
	}
	pending, err := pendingCountInTransaction(tx, checklistID)
	if err != nil {
		return result, err
	}

	result.Check = updated
	result.PriorStatus = dbCheck.Status
	result.ChecklistStatus = checklistStatus
	result.PendingCount = pending
	result.ReadyForActivation = checklistStatus == models.ChecklistStatusDraft && pending == 0
	return result, nil
}

func getCheckInTransaction(tx *sqlx.Tx, checkID []byte) (models.ECCheck, error) {
	var dbCheck models.ECCheck
	getCheckStatement := `
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
    where id = ?`
	err := tx.Get(&dbCheck, getCheckStatement, checkID)
	if err != nil {
		if err == sql.ErrNoRows {
			return dbCheck, NewNotFoundError("check does not exist")
		}
		return dbCheck, err
	}
	return dbCheck, nil
}
