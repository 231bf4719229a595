package dao

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// UpdateRule applies a partial update to an existing rule. Fields absent from
// the patch retain their stored values. A changed rule code is re-validated
// for uniqueness excluding the rule itself, and a changed section reference is
// validated for existence.
func (dao *DataAccessLayer) UpdateRule(id []byte, patch RulePatch, actor string) (models.ECRule, error) {
	defer util.Time("UpdateRule")()
	logger := dao.GetLogger()
	retryCounter := dao.DeadlockRetryCounter
	retryDelay := dao.DeadlockRetryDelay
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		logger.Error("could not begin transaction", zap.Error(err))
		return models.ECRule{}, NewStorageError(err, "could not begin transaction")
	}
	dbRule, err := updateRuleInTransaction(tx, id, patch, actor)
	for retryCounter > 0 && err != nil && util.ContainsAny(err.Error(), retryOnErrorMessageContains) {
		logger.Debug("restarting transaction for updateRuleInTransaction", zap.String("retryReason", util.FirstMatch(err.Error(), retryOnErrorMessageContains)), zap.Int64("retryCounter", retryCounter))
		tx.Rollback()
		time.Sleep(time.Duration(retryDelay) * time.Millisecond)
		retryCounter--
		tx, err = dao.MetadataDB.Beginx()
		if err != nil {
			logger.Error("could not begin transaction", zap.Error(err))
			return models.ECRule{}, NewStorageError(err, "could not begin transaction")
		}
		dbRule, err = updateRuleInTransaction(tx, id, patch, actor)
	}
	if err != nil {
		logger.Error("error in UpdateRule", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbRule, asDomainOrStorage(err)
}

func updateRuleInTransaction(tx *sqlx.Tx, id []byte, patch RulePatch, actor string) (models.ECRule, error) {

	dbRule, err := getRuleForUpdateInTransaction(tx, id)
	if err != nil {
		return models.ECRule{}, err
	}

	if patch.RuleCode != nil {
		newCode := strings.TrimSpace(*patch.RuleCode)
		if len(newCode) == 0 {
			return models.ECRule{}, NewValidationError("rule code is required")
		}
		if newCode != dbRule.RuleCode {
			var matched int
			if err := tx.Get(&matched, `select count(*) from rule where ruleCode = ? and id <> ?`, newCode, id); err != nil {
				return models.ECRule{}, err
			}
			if matched > 0 {
				return models.ECRule{}, NewConflictError("rule code %s already exists", newCode)
			}
		}
		dbRule.RuleCode = newCode
	}
	if patch.Title != nil {
		if len(strings.TrimSpace(*patch.Title)) == 0 {
			return models.ECRule{}, NewValidationError("title is required")
		}
		dbRule.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		if len(strings.TrimSpace(*patch.Description)) == 0 {
			return models.ECRule{}, NewValidationError("description is required")
		}
		dbRule.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Severity != nil {
		if _, err := models.ParseRuleSeverity(patch.Severity.String()); err != nil {
			return models.ECRule{}, NewValidationError("%v", err)
		}
		dbRule.Severity = *patch.Severity
	}
	if patch.RuleType != nil {
		if _, err := models.ParseRuleType(patch.RuleType.String()); err != nil {
			return models.ECRule{}, NewValidationError("%v", err)
		}
		dbRule.RuleType = *patch.RuleType
	}
	if patch.SectionRef != nil {
		if newRef := *patch.SectionRef; len(newRef) == 0 {
			dbRule.SectionRef = models.NullString{}
		} else {
			if newRef != dbRule.SectionRef.String {
				exists, err := sectionExistsInTransaction(tx, newRef)
				if err != nil {
					return models.ECRule{}, err
				}
				if !exists {
					return models.ECRule{}, NewNotFoundError("section %s does not exist", newRef)
				}
			}
			dbRule.SectionRef = models.ToNullString(newRef)
		}
	}
	dbRule.VerificationMethod = overlayNullString(dbRule.VerificationMethod, patch.VerificationMethod)
	dbRule.EvaluationCriteria = overlayNullString(dbRule.EvaluationCriteria, patch.EvaluationCriteria)
	dbRule.FailureImpact = overlayNullString(dbRule.FailureImpact, patch.FailureImpact)
	dbRule.RemediationAdvice = overlayNullString(dbRule.RemediationAdvice, patch.RemediationAdvice)
	if patch.IsActive != nil {
		dbRule.IsActive = *patch.IsActive
	}

	updateRuleStatement, err := tx.Preparex(`update rule set
        modifiedBy = ?
        ,sectionRef = ?
        ,ruleCode = ?
        ,title = ?
        ,description = ?
        ,severity = ?
        ,ruleType = ?
        ,verificationMethod = ?
        ,evaluationCriteria = ?
        ,failureImpact = ?
        ,remediationAdvice = ?
        ,isActive = ?
    where id = ?`)
	if err != nil {
		return models.ECRule{}, fmt.Errorf("UpdateRule error preparing update rule statement, %s", err.Error())
	}
	defer updateRuleStatement.Close()
	if _, err := updateRuleStatement.Exec(actor, dbRule.SectionRef, dbRule.RuleCode,
		dbRule.Title, dbRule.Description, dbRule.Severity.String(), dbRule.RuleType.String(),
		dbRule.VerificationMethod, dbRule.EvaluationCriteria, dbRule.FailureImpact,
		dbRule.RemediationAdvice, dbRule.IsActive, id); err != nil {
		if isDuplicateEntry(err) {
			return models.ECRule{}, NewConflictError("rule code %s already exists", dbRule.RuleCode)
		}
		return models.ECRule{}, err
	}
	return getRuleInTransaction(tx, id)
}

// overlayNullString applies the merge update convention for nullable text: a
// nil pointer retains the stored value, an empty string clears the field, and
// anything else replaces it.
func overlayNullString(current models.NullString, update *string) models.NullString {
	if update == nil {
		return current
	}
	if len(*update) == 0 {
		return models.NullString{}
	}
	return models.ToNullString(*update)
}
