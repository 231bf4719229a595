package dao

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// GetRule retrieves a single rule definition by its identifier
func (dao *DataAccessLayer) GetRule(id []byte) (models.ECRule, error) {
	defer util.Time("GetRule")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return models.ECRule{}, NewStorageError(err, "could not begin transaction")
	}
	dbRule, err := getRuleInTransaction(tx, id)
	if err != nil {
		dao.GetLogger().Error("error in GetRule", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return dbRule, asDomainOrStorage(err)
}

func getRuleInTransaction(tx *sqlx.Tx, id []byte) (models.ECRule, error) {
	var dbRule models.ECRule
	getRuleStatement := `
    select
        id
        ,createdDate
        ,createdBy
        ,modifiedDate
        ,modifiedBy
        ,sectionRef
        ,ruleCode
        ,title
        ,description
        ,severity
        ,ruleType
        ,verificationMethod
        ,evaluationCriteria
        ,failureImpact
        ,remediationAdvice
        ,isActive
    from rule
    where id = ?`
	err := tx.Get(&dbRule, getRuleStatement, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return dbRule, NewNotFoundError("rule does not exist")
		}
		return dbRule, err
	}
	return dbRule, nil
}

// getRuleForUpdateInTransaction locks the rule row for the remainder of the
// transaction so guard decisions and the subsequent write act as one unit.
func getRuleForUpdateInTransaction(tx *sqlx.Tx, id []byte) (models.ECRule, error) {
	var dbRule models.ECRule
	stmt := `
    select
        id
        ,createdDate
        ,createdBy
        ,modifiedDate
        ,modifiedBy
        ,sectionRef
        ,ruleCode
        ,title
        ,description
        ,severity
        ,ruleType
        ,verificationMethod
        ,evaluationCriteria
        ,failureImpact
        ,remediationAdvice
        ,isActive
    from rule
    where id = ?
    for update`
	err := tx.Get(&dbRule, stmt, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return dbRule, NewNotFoundError("rule does not exist")
		}
		return dbRule, err
	}
	return dbRule, nil
}
