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

// CreateRule adds a new rule definition to the database based upon the passed
// in settings. Rule code, title and description are required. Severity and
// type receive their defaults when unset, and a new rule is always created
// active. Once added, the record is retrieved to pick up generated fields.
func (dao *DataAccessLayer) CreateRule(rule *models.ECRule) (models.ECRule, error) {
	defer util.Time("CreateRule")()
	logger := dao.GetLogger()
	retryCounter := dao.DeadlockRetryCounter
	retryDelay := dao.DeadlockRetryDelay
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		logger.Error("could not begin transaction", zap.Error(err))
		return models.ECRule{}, NewStorageError(err, "could not begin transaction")
	}
	dbRule, err := createRuleInTransaction(tx, rule)
	for retryCounter > 0 && err != nil && util.ContainsAny(err.Error(), retryOnErrorMessageContains) {
		logger.Debug("restarting transaction for createRuleInTransaction", zap.String("retryReason", util.FirstMatch(err.Error(), retryOnErrorMessageContains)), zap.Int64("retryCounter", retryCounter))
		tx.Rollback()
		time.Sleep(time.Duration(retryDelay) * time.Millisecond)
		retryCounter--
		tx, err = dao.MetadataDB.Beginx()
		if err != nil {
			logger.Error("could not begin transaction", zap.Error(err))
			return models.ECRule{}, NewStorageError(err, "could not begin transaction")
		}
		dbRule, err = createRuleInTransaction(tx, rule)
	}
	if err != nil {
		logger.Error("error in CreateRule", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbRule, asDomainOrStorage(err)
}

func createRuleInTransaction(tx *sqlx.Tx, rule *models.ECRule) (models.ECRule, error) {
	var dbRule models.ECRule

	rule.RuleCode = strings.TrimSpace(rule.RuleCode)
	rule.Title = strings.TrimSpace(rule.Title)
	rule.Description = strings.TrimSpace(rule.Description)
	if len(rule.RuleCode) == 0 {
		return dbRule, NewValidationError("rule code is required")
	}
	if len(rule.Title) == 0 {
		return dbRule, NewValidationError("title is required")
	}
	if len(rule.Description) == 0 {
		return dbRule, NewValidationError("description is required")
	}
	if len(rule.Severity) == 0 {
		rule.Severity = models.DefaultRuleSeverity
	}
	if len(rule.RuleType) == 0 {
		rule.RuleType = models.DefaultRuleType
	}
	// The protocol boundary parses enums already. Re-check here to cover
	// callers that construct models directly.
	if _, err := models.ParseRuleSeverity(rule.Severity.String()); err != nil {
		return dbRule, NewValidationError("%v", err)
	}
	if _, err := models.ParseRuleType(rule.RuleType.String()); err != nil {
		return dbRule, NewValidationError("%v", err)
	}
	// Rules are always born active
	rule.IsActive = true

	if rule.SectionRef.Valid && len(rule.SectionRef.String) > 0 {
		exists, err := sectionExistsInTransaction(tx, rule.SectionRef.String)
		if err != nil {
			return dbRule, err
		}
		if !exists {
			return dbRule, NewNotFoundError("section %s does not exist", rule.SectionRef.String)
		}
	}

	// Fast path uniqueness check. The unique key ix_ruleCode has the final
	// say under concurrent creation.
	var matched int
	if err := tx.Get(&matched, `select count(*) from rule where ruleCode = ?`, rule.RuleCode); err != nil {
		return dbRule, err
	}
	if matched > 0 {
		return dbRule, NewConflictError("rule code %s already exists", rule.RuleCode)
	}

	id, err := newID()
	if err != nil {
		return dbRule, err
	}
	addRuleStatement, err := tx.Preparex(`insert into rule set
        id = ?
        ,createdBy = ?
        ,modifiedBy = ?
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
        ,isActive = ?`)
	if err != nil {
		return dbRule, fmt.Errorf("CreateRule error preparing add rule statement, %s", err.Error())
	}
	defer addRuleStatement.Close()
	if _, err := addRuleStatement.Exec(id, rule.CreatedBy, rule.CreatedBy,
		rule.SectionRef, rule.RuleCode, rule.Title, rule.Description,
		rule.Severity.String(), rule.RuleType.String(), rule.VerificationMethod,
		rule.EvaluationCriteria, rule.FailureImpact, rule.RemediationAdvice,
		rule.IsActive); err != nil {
		if isDuplicateEntry(err) {
			return dbRule, NewConflictError("rule code %s already exists", rule.RuleCode)
		}
		return dbRule, err
	}
	return getRuleInTransaction(tx, id)
}
