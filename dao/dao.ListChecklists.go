package dao

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/metadata/models"
	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// ListChecklists retrieves a page of checklists matching the filter, each
// annotated with its derived status counts. Counts for the whole page are
// computed by one grouped query rather than a query per checklist.
func (dao *DataAccessLayer) ListChecklists(pagingRequest PagingRequest, filter ChecklistFilter) (models.ECChecklistResultset, error) {
	defer util.Time("ListChecklists")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return models.ECChecklistResultset{}, NewStorageError(err, "could not begin transaction")
	}
	response, err := listChecklistsInTransaction(tx, pagingRequest, filter)
	if err != nil {
		dao.GetLogger().Error("error in ListChecklists", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return response, asDomainOrStorage(err)
}

func listChecklistsInTransaction(tx *sqlx.Tx, pagingRequest PagingRequest, filter ChecklistFilter) (models.ECChecklistResultset, error) {
	response := models.ECChecklistResultset{}
	query := `
    select
        sql_calc_found_rows
        id
        ,createdDate
        ,createdBy
        ,modifiedDate
        ,modifiedBy
        ,name
        ,description
        ,status
    from checklist
    where 1=1`
	args := []interface{}{}
	if len(filter.Status) > 0 {
		query += " and status = ?"
		args = append(args, filter.Status.String())
	}
	query += " order by createdDate desc, id desc"
	query += fmt.Sprintf(" limit %d offset %d",
		GetLimit(pagingRequest.PageNumber, pagingRequest.PageSize),
		GetOffset(pagingRequest.PageNumber, pagingRequest.PageSize))
	err := tx.Select(&response.Checklists, query, args...)
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
	response.PageRows = len(response.Checklists)
	response.PageCount = GetPageCount(response.TotalRows, response.PageSize)
	if len(response.Checklists) == 0 {
		return response, nil
	}

	// Annotate the page with counts in one grouped query
	ids := make([][]byte, len(response.Checklists))
	for i := range response.Checklists {
		ids[i] = response.Checklists[i].ID
	}
	countQuery, countArgs, err := sqlx.In(`
    select
        checklistId
        ,status
        ,count(*) as cnt
    from checklistitem
    where checklistId in (?)
    group by checklistId, status`, ids)
	if err != nil {
		return response, fmt.Errorf("ListChecklists error expanding count query, %s", err.Error())
	}
	var rows []groupedStatusCountRow
	if err := tx.Select(&rows, countQuery, countArgs...); err != nil {
		return response, err
	}
	countsByChecklist := make(map[string]models.StatusCounts)
	for _, row := range rows {
		counts := countsByChecklist[hex.EncodeToString(row.ChecklistID)]
		counts.Add(row.Status, row.Count)
		countsByChecklist[hex.EncodeToString(row.ChecklistID)] = counts
	}
	for i := range response.Checklists {
		response.Checklists[i].Counts = countsByChecklist[hex.EncodeToString(response.Checklists[i].ID)]
	}
	return response, nil
}

type groupedStatusCountRow struct {
	ChecklistID []byte             `db:"checklistId"`
	Status      models.CheckStatus `db:"status"`
	Count       int                `db:"cnt"`
}
