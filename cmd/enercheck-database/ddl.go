package main

import (
	"encoding/hex"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/util"
)

var createTableDBState = `
create table if not exists dbstate
(
  createdDate timestamp(6) not null default current_timestamp(6)
  ,modifiedDate timestamp(6) not null default current_timestamp(6) on update current_timestamp(6)
  ,schemaVersion varchar(255) not null
  ,identifier varchar(32) not null
  ,primary key (identifier)
) engine=innodb default charset=utf8 collate=utf8_unicode_ci`

var createTableSection = `
create table if not exists section
(
  id binary(16) not null
  ,createdDate timestamp(6) not null default current_timestamp(6)
  ,createdBy varchar(255) not null
  ,modifiedDate timestamp(6) not null default current_timestamp(6) on update current_timestamp(6)
  ,modifiedBy varchar(255) not null
  ,refCode varchar(32) not null
  ,title varchar(255) not null
  ,body text null
  ,primary key (id)
  ,unique key ix_refCode (refCode)
) engine=innodb default charset=utf8 collate=utf8_unicode_ci`

var createTableRule = `
create table if not exists rule
(
  id binary(16) not null
  ,createdDate timestamp(6) not null default current_timestamp(6)
  ,createdBy varchar(255) not null
  ,modifiedDate timestamp(6) not null default current_timestamp(6) on update current_timestamp(6)
  ,modifiedBy varchar(255) not null
  ,sectionRef varchar(32) null
  ,ruleCode varchar(64) not null
  ,title varchar(255) not null
  ,description text not null
  ,severity varchar(16) not null
  ,ruleType varchar(16) not null
  ,verificationMethod text null
  ,evaluationCriteria text null
  ,failureImpact text null
  ,remediationAdvice text null
  ,isActive tinyint(1) not null default 1
  ,primary key (id)
  ,unique key ix_ruleCode (ruleCode)
  ,key ix_sectionRef (sectionRef)
  ,key ix_isActive (isActive)
) engine=innodb default charset=utf8 collate=utf8_unicode_ci`

var createTableChecklist = `
create table if not exists checklist
(
  id binary(16) not null
  ,createdDate timestamp(6) not null default current_timestamp(6)
  ,createdBy varchar(255) not null
  ,modifiedDate timestamp(6) not null default current_timestamp(6) on update current_timestamp(6)
  ,modifiedBy varchar(255) not null
  ,name varchar(255) not null
  ,description text null
  ,status varchar(16) not null default 'draft'
  ,primary key (id)
  ,key ix_status (status)
  ,key ix_createdDate (createdDate)
) engine=innodb default charset=utf8 collate=utf8_unicode_ci`

var createTableChecklistItem = `
create table if not exists checklistitem
(
  id binary(16) not null
  ,createdDate timestamp(6) not null default current_timestamp(6)
  ,createdBy varchar(255) not null
  ,modifiedDate timestamp(6) not null default current_timestamp(6) on update current_timestamp(6)
  ,modifiedBy varchar(255) not null
  ,checklistId binary(16) not null
  ,ruleId binary(16) not null
  ,ruleCode varchar(64) not null
  ,ruleTitle varchar(255) not null
  ,status varchar(16) not null default 'pending'
  ,notes text null
  ,evidence text null
  ,checkedBy varchar(255) null
  ,checkedAt timestamp(6) null
  ,primary key (id)
  ,key ix_checklistId (checklistId)
  ,key ix_ruleId (ruleId)
) engine=innodb default charset=utf8 collate=utf8_unicode_ci`

// Checks follow their checklist to the grave. Rules referenced by any check
// must be deactivated rather than removed; the restrict constraint backs up
// the guard in the application.
var createConstraintStatements = []string{
	`alter table checklistitem add constraint fk_checklistitem_checklist foreign key (checklistId) references checklist(id) on delete cascade`,
	`alter table checklistitem add constraint fk_checklistitem_rule foreign key (ruleId) references rule(id) on delete restrict`,
}

var dropTableStatements = []string{
	`drop table if exists checklistitem`,
	`drop table if exists checklist`,
	`drop table if exists rule`,
	`drop table if exists section`,
	`drop table if exists dbstate`,
}

// sectionSeed is the standards reference data shipped with a new database.
// Rules may only cite sections present here.
var sectionSeed = []struct {
	refCode string
	title   string
}{
	{"110.26", "Spaces About Electrical Equipment"},
	{"210.8", "Ground-Fault Circuit-Interrupter Protection for Personnel"},
	{"240.4", "Protection of Conductors"},
	{"310.16", "Ampacities of Insulated Conductors"},
	{"408.4", "Field Identification Required"},
}

// createSchema executes all necessary DDL. Any error is immediately returned.
func createSchema(db *sqlx.DB) error {

	if err := dropTables(db); err != nil {
		fmt.Println("ignoring table drop failure")
		fmt.Printf("err: %v", err)
	}

	// Set collation
	if err := execStmt(db, "ALTER DATABASE CHARACTER SET utf8 COLLATE utf8_unicode_ci"); err != nil {
		return err
	}
	if err := execStmt(db, "SET character_set_client = utf8"); err != nil {
		return err
	}
	if err := execStmt(db, "SET collation_connection = @@collation_database"); err != nil {
		return err
	}

	// Create tables
	if err := createTables(db); err != nil {
		return err
	}

	// Create constraints
	if err := createConstraints(db); err != nil {
		return err
	}

	// Data for state
	if err := seedState(db); err != nil {
		return err
	}

	// Standards reference data
	if err := seedSections(db); err != nil {
		return err
	}

	return nil
}

// createTables explicitly invokes every required create table statement.
func createTables(db *sqlx.DB) error {
	if err := execStmt(db, createTableDBState); err != nil {
		return err
	}
	if err := execStmt(db, createTableSection); err != nil {
		return err
	}
	if err := execStmt(db, createTableRule); err != nil {
		return err
	}
	if err := execStmt(db, createTableChecklist); err != nil {
		return err
	}
	if err := execStmt(db, createTableChecklistItem); err != nil {
		return err
	}
	return nil
}

func createConstraints(db *sqlx.DB) error {
	for _, stmt := range createConstraintStatements {
		if err := execStmt(db, stmt); err != nil {
			return err
		}
	}
	return nil
}

func dropTables(db *sqlx.DB) error {
	for _, stmt := range dropTableStatements {
		if err := execStmt(db, stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedState writes the single bookkeeping row with the schema version the
// code was built against and a fresh instance identifier.
func seedState(db *sqlx.DB) error {
	guid, err := util.NewGUID()
	if err != nil {
		return err
	}
	_, err = db.Exec(`insert into dbstate set schemaVersion = ?, identifier = ?`,
		dao.SchemaVersion, guid[0:8])
	return err
}

func seedSections(db *sqlx.DB) error {
	const seedActor = "enercheck-database"
	stmt := `insert into section set id = ?, createdBy = ?, modifiedBy = ?, refCode = ?, title = ?`
	for _, s := range sectionSeed {
		guid, err := util.NewGUID()
		if err != nil {
			return err
		}
		id, err := hex.DecodeString(guid)
		if err != nil {
			return err
		}
		if _, err := db.Exec(stmt, id, seedActor, seedActor, s.refCode, s.title); err != nil {
			return err
		}
	}
	return nil
}
