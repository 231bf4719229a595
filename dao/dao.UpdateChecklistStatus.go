package dao

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// UpdateChecklistStatus moves a checklist through its lifecycle. Only draft
// to active, active to archived, and archived to active are legal; anything
// else, including a transition to the current status, is rejected. A move
// into active reads the pending count under the same row lock that guards the
// write, so a concurrent check edit cannot slip a pending check past the
// activation gate.
func (dao *DataAccessLayer) UpdateChecklistStatus(id []byte, newStatus models.ChecklistStatus, actor string) (models.ECChecklist, error) {
	defer util.Time("UpdateChecklistStatus")()
	logger := dao.GetLogger()
	retryCounter := dao.DeadlockRetryCounter
	retryDelay := dao.DeadlockRetryDelay
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		logger.Error("could not begin transaction", zap.Error(err))
		return models.ECChecklist{}, NewStorageError(err, "could not begin transaction")
	}
	dbChecklist, err := updateChecklistStatusInTransaction(tx, id, newStatus, actor)
	for retryCounter > 0 && err != nil && util.ContainsAny(err.Error(), retryOnErrorMessageContains) {
		logger.Debug("restarting transaction for updateChecklistStatusInTransaction", zap.String("retryReason", util.FirstMatch(err.Error(), retryOnErrorMessageContains)), zap.Int64("retryCounter", retryCounter))
		tx.Rollback()
		time.Sleep(time.Duration(retryDelay) * time.Millisecond)
		retryCounter--
		tx, err = dao.MetadataDB.Beginx()
		if err != nil {
			logger.Error("could not begin transaction", zap.Error(err))
			return models.ECChecklist{}, NewStorageError(err, "could not begin transaction")
		}
		dbChecklist, err = updateChecklistStatusInTransaction(tx, id, newStatus, actor)
	}
	if err != nil {
		logger.Error("error in UpdateChecklistStatus", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbChecklist, asDomainOrStorage(err)
}

func updateChecklistStatusInTransaction(tx *sqlx.Tx, id []byte, newStatus models.ChecklistStatus, actor string) (models.ECChecklist, error) {

	if _, err := models.ParseChecklistStatus(newStatus.String()); err != nil {
		return models.ECChecklist{}, NewValidationError("%v", err)
	}

	var currentStatus models.ChecklistStatus
	err := tx.Get(&currentStatus, `select status from checklist where id = ? for update`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ECChecklist{}, NewNotFoundError("checklist does not exist")
		}
		return models.ECChecklist{}, err
	}

	if !currentStatus.CanTransitionTo(newStatus) {
		return models.ECChecklist{}, NewValidationError("illegal status transition from %s to %s", currentStatus, newStatus)
	}

	if newStatus == models.ChecklistStatusActive {
		pending, err := pendingCountInTransaction(tx, id)
		if err != nil {
			return models.ECChecklist{}, err
		}
		if pending > 0 {
			return models.ECChecklist{}, NewConflictError("cannot activate while %d pending checks remain", pending)
		}
	}

	if _, err := tx.Exec(`update checklist set modifiedBy = ?, status = ? where id = ?`,
		actor, newStatus.String(), id); err != nil {
		return models.ECChecklist{}, err
	}

	return getChecklistInTransaction(tx, id)
}
