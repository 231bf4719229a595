package dao

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// ListRules retrieves a page of rule definitions matching the filter, ordered
// by rule code ascending. Inactive rules are excluded unless the filter asks
// for all rules.
func (dao *DataAccessLayer) ListRules(pagingRequest PagingRequest, filter RuleFilter) (models.ECRuleResultset, error) {
	defer util.Time("ListRules")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return models.ECRuleResultset{}, NewStorageError(err, "could not begin transaction")
	}
	response, err := listRulesInTransaction(tx, pagingRequest, filter)
	if err != nil {
		dao.GetLogger().Error("error in ListRules", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return response, asDomainOrStorage(err)
}

func listRulesInTransaction(tx *sqlx.Tx, pagingRequest PagingRequest, filter RuleFilter) (models.ECRuleResultset, error) {
	response := models.ECRuleResultset{}
	query := `
    select
        sql_calc_found_rows
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
    where 1=1`
	args := []interface{}{}
	if !filter.AllRules {
		query += " and isActive = 1"
	}
	if len(filter.SectionRef) > 0 {
		query += " and sectionRef = ?"
		args = append(args, filter.SectionRef)
	}
	if len(filter.Severity) > 0 {
		query += " and severity = ?"
		args = append(args, filter.Severity.String())
	}
	if len(filter.RuleType) > 0 {
		query += " and ruleType = ?"
		args = append(args, filter.RuleType.String())
	}
	// ruleCode is unique, so this ordering is total and stable
	query += " order by ruleCode asc"
	query += fmt.Sprintf(" limit %d offset %d",
		GetLimit(pagingRequest.PageNumber, pagingRequest.PageSize),
		GetOffset(pagingRequest.PageNumber, pagingRequest.PageSize))
	err := tx.Select(&response.Rules, query, args...)
	if err != nil {
		return response, err
	}
	// Paging stats guidance
	err = tx.Get(&response.TotalRows, "select found_rows()")
	if err != nil {
		return response, err
	}
	response.PageNumber = GetSanitizedPageNumber(pagingRequest.PageNumber)
	response.PageSize = GetSanitizedPageSize(pagingRequest.PageSize)
	response.PageRows = len(response.Rules)
	response.PageCount = GetPageCount(response.TotalRows, response.PageSize)
	return response, nil
}
