package dao

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// DeleteRule removes or deactivates a rule. A rule referenced by no check is
// hard deleted. A rule referenced by any check anywhere is instead
// deactivated so historical checks stay resolvable, and the result reports
// which action was taken.
func (dao *DataAccessLayer) DeleteRule(id []byte, actor string) (RuleDeletion, error) {
	defer util.Time("DeleteRule")()
	logger := dao.GetLogger()
	retryCounter := dao.DeadlockRetryCounter
	retryDelay := dao.DeadlockRetryDelay
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		logger.Error("could not begin transaction", zap.Error(err))
		return RuleDeletion{}, NewStorageError(err, "could not begin transaction")
	}
	deletion, err := deleteRuleInTransaction(tx, id, actor)
	for retryCounter > 0 && err != nil && util.ContainsAny(err.Error(), retryOnErrorMessageContains) {
		logger.Debug("restarting transaction for deleteRuleInTransaction", zap.String("retryReason", util.FirstMatch(err.Error(), retryOnErrorMessageContains)), zap.Int64("retryCounter", retryCounter))
		tx.Rollback()
		time.Sleep(time.Duration(retryDelay) * time.Millisecond)
		retryCounter--
		tx, err = dao.MetadataDB.Beginx()
		if err != nil {
			logger.Error("could not begin transaction", zap.Error(err))
			return RuleDeletion{}, NewStorageError(err, "could not begin transaction")
		}
		deletion, err = deleteRuleInTransaction(tx, id, actor)
	}
	if err != nil {
		logger.Error("error in DeleteRule", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return deletion, asDomainOrStorage(err)
}

func deleteRuleInTransaction(tx *sqlx.Tx, id []byte, actor string) (RuleDeletion, error) {
	var deletion RuleDeletion

	dbRule, err := getRuleForUpdateInTransaction(tx, id)
	if err != nil {
		return deletion, err
	}

	var references int
	if err := tx.Get(&references, `select count(*) from checklistitem where ruleId = ?`, id); err != nil {
		return deletion, err
	}

	if references == 0 {
		deleteRuleStatement, err := tx.Preparex(`delete from rule where id = ?`)
		if err != nil {
			return deletion, fmt.Errorf("DeleteRule error preparing delete rule statement, %s", err.Error())
		}
		defer deleteRuleStatement.Close()
		result, err := deleteRuleStatement.Exec(id)
		if err != nil {
			return deletion, err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return deletion, err
		}
		if rowsAffected <= 0 {
			return deletion, fmt.Errorf("DeleteRule rule was not deleted")
		}
		deletion.Rule = dbRule
		deletion.Deleted = true
		return deletion, nil
	}

	deactivateStatement, err := tx.Preparex(`update rule set modifiedBy = ?, isActive = 0 where id = ?`)
	if err != nil {
		return deletion, fmt.Errorf("DeleteRule error preparing deactivate rule statement, %s", err.Error())
	}
	defer deactivateStatement.Close()
	if _, err := deactivateStatement.Exec(actor, id); err != nil {
		return deletion, err
	}
	dbRule, err = getRuleInTransaction(tx, id)
	if err != nil {
		return deletion, err
	}
	deletion.Rule = dbRule
	deletion.Deactivated = true
	return deletion, nil
}
