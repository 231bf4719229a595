package dao

import (
	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/util"
	"github.com/jmoiron/sqlx"
)

// SectionExists reports whether a standards section with the given reference
// code exists. The section table is read only reference data owned by the
// standards subsystem; this lookup is the only use the engine makes of it.
func (dao *DataAccessLayer) SectionExists(refCode string) (bool, error) {
	defer util.Time("SectionExists")()
	tx, err := dao.MetadataDB.Beginx()
	if err != nil {
		dao.GetLogger().Error("could not begin transaction", zap.Error(err))
		return false, NewStorageError(err, "could not begin transaction")
	}
	exists, err := sectionExistsInTransaction(tx, refCode)
	if err != nil {
		dao.GetLogger().Error("error in SectionExists", zap.Error(err))
		tx.Rollback()
	} else {
		tx.Commit()
	}
	return exists, asDomainOrStorage(err)
}

func sectionExistsInTransaction(tx *sqlx.Tx, refCode string) (bool, error) {
	var matched int
	if err := tx.Get(&matched, `select count(*) from section where refCode = ?`, refCode); err != nil {
		return false, err
	}
	return matched > 0, nil
}
