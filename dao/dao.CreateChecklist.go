package dao

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// CreateChecklist snapshots a selection of active rules into a new draft
// checklist with one pending check per rule. The checklist insert and all
// check inserts commit or roll back together; if any requested rule id is
// unknown or inactive the whole call fails and no rows persist.
func (dao *DataAccessLayer) CreateChecklist(checklist *models.ECChecklist, ruleIDs [][]byte) (models.ECChecklist, error) {
	defer util.Time("CreateChecklist")()
	logger := dao.GetLogger()
	retryCounter := dao.DeadlockRetryCounter
	retryDelay := dao.DeadlockRetryDelay
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		logger.Error("could not begin transaction", zap.Error(err))
		return models.ECChecklist{}, NewStorageError(err, "could not begin transaction")
	}
	dbChecklist, err := createChecklistInTransaction(tx, checklist, ruleIDs)
	for retryCounter > 0 && err != nil && util.ContainsAny(err.Error(), retryOnErrorMessageContains) {
		logger.Debug("restarting transaction for createChecklistInTransaction", zap.String("retryReason", util.FirstMatch(err.Error(), retryOnErrorMessageContains)), zap.Int64("retryCounter", retryCounter))
		tx.Rollback()
		time.Sleep(time.Duration(retryDelay) * time.Millisecond)
		retryCounter--
		tx, err = dao.MetadataDB.Beginx()
		if err != nil {
			logger.Error("could not begin transaction", zap.Error(err))
			return models.ECChecklist{}, NewStorageError(err, "could not begin transaction")
		}
		dbChecklist, err = createChecklistInTransaction(tx, checklist, ruleIDs)
	}
	if err != nil {
		logger.Error("error in CreateChecklist", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbChecklist, asDomainOrStorage(err)
}

func createChecklistInTransaction(tx *sqlx.Tx, checklist *models.ECChecklist, ruleIDs [][]byte) (models.ECChecklist, error) {
	var dbChecklist models.ECChecklist

	checklist.Name = strings.TrimSpace(checklist.Name)
	if len(checklist.Name) == 0 {
		return dbChecklist, NewValidationError("name is required")
	}
	if len(ruleIDs) == 0 {
		return dbChecklist, NewValidationError("at least one rule is required")
	}

	// The checklist owns a set of checks, one per distinct rule
	distinctIDs := make([][]byte, 0, len(ruleIDs))
	seen := make(map[string]bool)
	for _, id := range ruleIDs {
		key := hex.EncodeToString(id)
		if !seen[key] {
			seen[key] = true
			distinctIDs = append(distinctIDs, id)
		}
	}

	snapshots, missing, err := resolveActiveRulesInTransaction(tx, distinctIDs)
	if err != nil {
		return dbChecklist, err
	}
	if len(missing) > 0 {
		return dbChecklist, NewValidationError("rule ids are unknown or inactive: %s", strings.Join(missing, ", "))
	}

	checklistID, err := newID()
	if err != nil {
		return dbChecklist, err
	}
	addChecklistStatement, err := tx.Preparex(`insert into checklist set
        id = ?
        ,createdBy = ?
        ,modifiedBy = ?
        ,name = ?
        ,description = ?
        ,status = ?`)
	if err != nil {
		return dbChecklist, fmt.Errorf("CreateChecklist error preparing add checklist statement, %s", err.Error())
	}
	defer addChecklistStatement.Close()
	if _, err := addChecklistStatement.Exec(checklistID, checklist.CreatedBy, checklist.CreatedBy,
		checklist.Name, checklist.Description, models.ChecklistStatusDraft.String()); err != nil {
		return dbChecklist, err
	}

	addCheckStatement, err := tx.Preparex(`insert into checklistitem set
        id = ?
        ,createdBy = ?
        ,modifiedBy = ?
        ,checklistId = ?
        ,ruleId = ?
        ,ruleCode = ?
        ,ruleTitle = ?
        ,status = ?`)
	if err != nil {
		return dbChecklist, fmt.Errorf("CreateChecklist error preparing add check statement, %s", err.Error())
	}
	defer addCheckStatement.Close()
	for _, ruleID := range distinctIDs {
		checkID, err := newID()
		if err != nil {
			return dbChecklist, err
		}
		snap := snapshots[hex.EncodeToString(ruleID)]
		if _, err := addCheckStatement.Exec(checkID, checklist.CreatedBy, checklist.CreatedBy,
			checklistID, ruleID, snap.Code, snap.Title, models.CheckStatusPending.String()); err != nil {
			return dbChecklist, err
		}
	}

	return getChecklistInTransaction(tx, checklistID)
}

// ruleSnapshot carries the rule fields frozen onto each check at checklist
// creation
type ruleSnapshot struct {
	ID    []byte `db:"id"`
	Code  string `db:"ruleCode"`
	Title string `db:"title"`
}

// resolveActiveRulesInTransaction resolves the requested rule ids against
// active rules, keyed by hex id, and reports every id that cannot be snapshot
func resolveActiveRulesInTransaction(tx *sqlx.Tx, ruleIDs [][]byte) (map[string]ruleSnapshot, []string, error) {
	query, args, err := sqlx.In(`select id, ruleCode, title from rule where id in (?) and isActive = 1`, ruleIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("CreateChecklist error expanding rule id query, %s", err.Error())
	}
	var found []ruleSnapshot
	if err := tx.Select(&found, query, args...); err != nil {
		return nil, nil, err
	}
	snapshots := make(map[string]ruleSnapshot, len(found))
	for _, snap := range found {
		snapshots[hex.EncodeToString(snap.ID)] = snap
	}
	var missing []string
	for _, id := range ruleIDs {
		if key := hex.EncodeToString(id); snapshots[key].ID == nil {
			missing = append(missing, key)
		}
	}
	return snapshots, missing, nil
}
