package dao

import (
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/enercheck/compliance-server/metadata/models"
	"go.uber.org/zap"
)

// FakeDAO is an in memory DAO suitable for tests. It applies the same domain
// semantics as DataAccessLayer against maps guarded by a mutex, so server
// tests observe realistic create, update and guard behavior without a
// database. Set Err to force every operation to fail with it.
type FakeDAO struct {
	Logger      *zap.Logger
	Err         error
	DBStateData models.DBState

	mu         sync.Mutex
	rules      map[string]models.ECRule
	checklists map[string]models.ECChecklist
	checks     map[string]models.ECCheck
	sections   map[string]bool
}

// NewFakeDAO provides a FakeDAO ready for use with empty stores
func NewFakeDAO() *FakeDAO {
	return &FakeDAO{
		Logger:      zap.NewNop(),
		DBStateData: models.DBState{SchemaVersion: SchemaVersion, Identifier: "fake"},
		rules:       make(map[string]models.ECRule),
		checklists:  make(map[string]models.ECChecklist),
		checks:      make(map[string]models.ECCheck),
		sections:    make(map[string]bool),
	}
}

func fakeCompileCheck() DAO {
	// function exists to make compiler complain when interface changes.
	return &FakeDAO{}
}

// AddSection registers a standards section reference for existence lookups
func (fake *FakeDAO) AddSection(refCode string) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.sections == nil {
		fake.sections = make(map[string]bool)
	}
	fake.sections[refCode] = true
}

// CreateRule for FakeDAO.
func (fake *FakeDAO) CreateRule(rule *models.ECRule) (models.ECRule, error) {
	if fake.Err != nil {
		return models.ECRule{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	rule.RuleCode = strings.TrimSpace(rule.RuleCode)
	rule.Title = strings.TrimSpace(rule.Title)
	rule.Description = strings.TrimSpace(rule.Description)
	if len(rule.RuleCode) == 0 {
		return models.ECRule{}, NewValidationError("rule code is required")
	}
	if len(rule.Title) == 0 {
		return models.ECRule{}, NewValidationError("title is required")
	}
	if len(rule.Description) == 0 {
		return models.ECRule{}, NewValidationError("description is required")
	}
	if len(rule.Severity) == 0 {
		rule.Severity = models.DefaultRuleSeverity
	}
	if len(rule.RuleType) == 0 {
		rule.RuleType = models.DefaultRuleType
	}
	if _, err := models.ParseRuleSeverity(rule.Severity.String()); err != nil {
		return models.ECRule{}, NewValidationError("%v", err)
	}
	if _, err := models.ParseRuleType(rule.RuleType.String()); err != nil {
		return models.ECRule{}, NewValidationError("%v", err)
	}
	if rule.SectionRef.Valid && len(rule.SectionRef.String) > 0 && !fake.sections[rule.SectionRef.String] {
		return models.ECRule{}, NewNotFoundError("section %s does not exist", rule.SectionRef.String)
	}
	for _, existing := range fake.rules {
		if existing.RuleCode == rule.RuleCode {
			return models.ECRule{}, NewConflictError("rule code %s already exists", rule.RuleCode)
		}
	}

	stored := *rule
	id, err := newID()
	if err != nil {
		return models.ECRule{}, err
	}
	now := time.Now().UTC()
	stored.ID = id
	stored.CreatedDate = now
	stored.ModifiedDate = now
	stored.ModifiedBy = stored.CreatedBy
	stored.IsActive = true
	fake.rules[hex.EncodeToString(id)] = stored
	return stored, nil
}

// GetRule for FakeDAO.
func (fake *FakeDAO) GetRule(id []byte) (models.ECRule, error) {
	if fake.Err != nil {
		return models.ECRule{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	stored, ok := fake.rules[hex.EncodeToString(id)]
	if !ok {
		return models.ECRule{}, NewNotFoundError("rule does not exist")
	}
	return stored, nil
}

// UpdateRule for FakeDAO.
func (fake *FakeDAO) UpdateRule(id []byte, patch RulePatch, actor string) (models.ECRule, error) {
	if fake.Err != nil {
		return models.ECRule{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	key := hex.EncodeToString(id)
	stored, ok := fake.rules[key]
	if !ok {
		return models.ECRule{}, NewNotFoundError("rule does not exist")
	}
	if patch.RuleCode != nil {
		newCode := strings.TrimSpace(*patch.RuleCode)
		if len(newCode) == 0 {
			return models.ECRule{}, NewValidationError("rule code is required")
		}
		for otherKey, other := range fake.rules {
			if otherKey != key && other.RuleCode == newCode {
				return models.ECRule{}, NewConflictError("rule code %s already exists", newCode)
			}
		}
		stored.RuleCode = newCode
	}
	if patch.Title != nil {
		if len(strings.TrimSpace(*patch.Title)) == 0 {
			return models.ECRule{}, NewValidationError("title is required")
		}
		stored.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		if len(strings.TrimSpace(*patch.Description)) == 0 {
			return models.ECRule{}, NewValidationError("description is required")
		}
		stored.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Severity != nil {
		if _, err := models.ParseRuleSeverity(patch.Severity.String()); err != nil {
			return models.ECRule{}, NewValidationError("%v", err)
		}
		stored.Severity = *patch.Severity
	}
	if patch.RuleType != nil {
		if _, err := models.ParseRuleType(patch.RuleType.String()); err != nil {
			return models.ECRule{}, NewValidationError("%v", err)
		}
		stored.RuleType = *patch.RuleType
	}
	if patch.SectionRef != nil {
		if newRef := *patch.SectionRef; len(newRef) == 0 {
			stored.SectionRef = models.NullString{}
		} else {
			if newRef != stored.SectionRef.String && !fake.sections[newRef] {
				return models.ECRule{}, NewNotFoundError("section %s does not exist", newRef)
			}
			stored.SectionRef = models.ToNullString(newRef)
		}
	}
	stored.VerificationMethod = overlayNullString(stored.VerificationMethod, patch.VerificationMethod)
	stored.EvaluationCriteria = overlayNullString(stored.EvaluationCriteria, patch.EvaluationCriteria)
	stored.FailureImpact = overlayNullString(stored.FailureImpact, patch.FailureImpact)
	stored.RemediationAdvice = overlayNullString(stored.RemediationAdvice, patch.RemediationAdvice)
	if patch.IsActive != nil {
		stored.IsActive = *patch.IsActive
	}
	stored.ModifiedBy = actor
	stored.ModifiedDate = time.Now().UTC()
	fake.rules[key] = stored
	return stored, nil
}

// ListRules for FakeDAO.
func (fake *FakeDAO) ListRules(pagingRequest PagingRequest, filter RuleFilter) (models.ECRuleResultset, error) {
	if fake.Err != nil {
		return models.ECRuleResultset{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	var matched []models.ECRule
	for _, rule := range fake.rules {
		if !filter.AllRules && !rule.IsActive {
			continue
		}
		if len(filter.SectionRef) > 0 && rule.SectionRef.String != filter.SectionRef {
			continue
		}
		if len(filter.Severity) > 0 && rule.Severity != filter.Severity {
			continue
		}
		if len(filter.RuleType) > 0 && rule.RuleType != filter.RuleType {
			continue
		}
		matched = append(matched, rule)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].RuleCode < matched[j].RuleCode })

	response := models.ECRuleResultset{}
	response.TotalRows = len(matched)
	response.PageNumber = GetSanitizedPageNumber(pagingRequest.PageNumber)
	response.PageSize = GetSanitizedPageSize(pagingRequest.PageSize)
	response.PageCount = GetPageCount(response.TotalRows, response.PageSize)
	response.Rules = pageOfRules(matched, pagingRequest)
	response.PageRows = len(response.Rules)
	return response, nil
}

func pageOfRules(rules []models.ECRule, pagingRequest PagingRequest) []models.ECRule {
	offset := GetOffset(pagingRequest.PageNumber, pagingRequest.PageSize)
	limit := GetLimit(pagingRequest.PageNumber, pagingRequest.PageSize)
	if offset >= len(rules) {
		return nil
	}
	end := offset + limit
	if end > len(rules) {
		end = len(rules)
	}
	return rules[offset:end]
}

// DeleteRule for FakeDAO.
func (fake *FakeDAO) DeleteRule(id []byte, actor string) (RuleDeletion, error) {
	if fake.Err != nil {
		return RuleDeletion{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	key := hex.EncodeToString(id)
	stored, ok := fake.rules[key]
	if !ok {
		return RuleDeletion{}, NewNotFoundError("rule does not exist")
	}
	references := 0
	for _, check := range fake.checks {
		if hex.EncodeToString(check.RuleID) == key {
			references++
		}
	}
	if references == 0 {
		delete(fake.rules, key)
		return RuleDeletion{Rule: stored, Deleted: true}, nil
	}
	stored.IsActive = false
	stored.ModifiedBy = actor
	stored.ModifiedDate = time.Now().UTC()
	fake.rules[key] = stored
	return RuleDeletion{Rule: stored, Deactivated: true}, nil
}

// CreateChecklist for FakeDAO.
func (fake *FakeDAO) CreateChecklist(checklist *models.ECChecklist, ruleIDs [][]byte) (models.ECChecklist, error) {
	if fake.Err != nil {
		return models.ECChecklist{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	checklist.Name = strings.TrimSpace(checklist.Name)
	if len(checklist.Name) == 0 {
		return models.ECChecklist{}, NewValidationError("name is required")
	}
	if len(ruleIDs) == 0 {
		return models.ECChecklist{}, NewValidationError("at least one rule is required")
	}

	distinctIDs := make([][]byte, 0, len(ruleIDs))
	seen := make(map[string]bool)
	for _, id := range ruleIDs {
		key := hex.EncodeToString(id)
		if !seen[key] {
			seen[key] = true
			distinctIDs = append(distinctIDs, id)
		}
	}
	var missing []string
	for _, id := range distinctIDs {
		rule, ok := fake.rules[hex.EncodeToString(id)]
		if !ok || !rule.IsActive {
			missing = append(missing, hex.EncodeToString(id))
		}
	}
	if len(missing) > 0 {
		return models.ECChecklist{}, NewValidationError("rule ids are unknown or inactive: %s", strings.Join(missing, ", "))
	}

	// Generate every id before mutating so a failure leaves no partial state
	checklistID, err := newID()
	if err != nil {
		return models.ECChecklist{}, err
	}
	checkIDs := make([][]byte, len(distinctIDs))
	for i := range distinctIDs {
		if checkIDs[i], err = newID(); err != nil {
			return models.ECChecklist{}, err
		}
	}

	stored := *checklist
	now := time.Now().UTC()
	stored.ID = checklistID
	stored.CreatedDate = now
	stored.ModifiedDate = now
	stored.ModifiedBy = stored.CreatedBy
	stored.Status = models.ChecklistStatusDraft
	stored.Checks = nil
	stored.Counts = models.StatusCounts{}
	fake.checklists[hex.EncodeToString(checklistID)] = stored

	for i, ruleID := range distinctIDs {
		rule := fake.rules[hex.EncodeToString(ruleID)]
		var check models.ECCheck
		check.ID = checkIDs[i]
		check.CreatedDate = now
		check.CreatedBy = stored.CreatedBy
		check.ModifiedDate = now
		check.ModifiedBy = stored.CreatedBy
		check.ChecklistID = checklistID
		check.RuleID = ruleID
		check.Status = models.CheckStatusPending
		check.RuleCode = rule.RuleCode
		check.RuleTitle = rule.Title
		fake.checks[hex.EncodeToString(check.ID)] = check
	}

	return fake.checklistWithChecks(checklistID)
}

// GetChecklist for FakeDAO.
func (fake *FakeDAO) GetChecklist(id []byte) (models.ECChecklist, error) {
	if fake.Err != nil {
		return models.ECChecklist{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.checklistWithChecks(id)
}

// checklistWithChecks assembles a checklist copy with sorted checks and a
// fresh tally. Callers hold the mutex.
func (fake *FakeDAO) checklistWithChecks(id []byte) (models.ECChecklist, error) {
	key := hex.EncodeToString(id)
	stored, ok := fake.checklists[key]
	if !ok {
		return models.ECChecklist{}, NewNotFoundError("checklist does not exist")
	}
	var checks []models.ECCheck
	for _, check := range fake.checks {
		if hex.EncodeToString(check.ChecklistID) == key {
			checks = append(checks, check)
		}
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].RuleCode < checks[j].RuleCode })
	stored.Checks = checks
	stored.Counts = models.TallyStatusCounts(checks)
	return stored, nil
}

// ListChecklists for FakeDAO.
func (fake *FakeDAO) ListChecklists(pagingRequest PagingRequest, filter ChecklistFilter) (models.ECChecklistResultset, error) {
	if fake.Err != nil {
		return models.ECChecklistResultset{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	var matched []models.ECChecklist
	for key := range fake.checklists {
		checklist := fake.checklists[key]
		if len(filter.Status) > 0 && checklist.Status != filter.Status {
			continue
		}
		withChecks, err := fake.checklistWithChecks(checklist.ID)
		if err != nil {
			return models.ECChecklistResultset{}, err
		}
		withChecks.Checks = nil
		matched = append(matched, withChecks)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedDate.Equal(matched[j].CreatedDate) {
			return matched[i].CreatedDate.After(matched[j].CreatedDate)
		}
		return hex.EncodeToString(matched[i].ID) > hex.EncodeToString(matched[j].ID)
	})

	response := models.ECChecklistResultset{}
	response.TotalRows = len(matched)
	response.PageNumber = GetSanitizedPageNumber(pagingRequest.PageNumber)
	response.PageSize = GetSanitizedPageSize(pagingRequest.PageSize)
	response.PageCount = GetPageCount(response.TotalRows, response.PageSize)
	offset := GetOffset(pagingRequest.PageNumber, pagingRequest.PageSize)
	limit := GetLimit(pagingRequest.PageNumber, pagingRequest.PageSize)
	if offset < len(matched) {
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		response.Checklists = matched[offset:end]
	}
	response.PageRows = len(response.Checklists)
	return response, nil
}

// UpdateChecklistStatus for FakeDAO.
func (fake *FakeDAO) UpdateChecklistStatus(id []byte, newStatus models.ChecklistStatus, actor string) (models.ECChecklist, error) {
	if fake.Err != nil {
		return models.ECChecklist{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if _, err := models.ParseChecklistStatus(newStatus.String()); err != nil {
		return models.ECChecklist{}, NewValidationError("%v", err)
	}
	key := hex.EncodeToString(id)
	stored, ok := fake.checklists[key]
	if !ok {
		return models.ECChecklist{}, NewNotFoundError("checklist does not exist")
	}
	if !stored.Status.CanTransitionTo(newStatus) {
		return models.ECChecklist{}, NewValidationError("illegal status transition from %s to %s", stored.Status, newStatus)
	}
	if newStatus == models.ChecklistStatusActive {
		pending := fake.pendingCount(key)
		if pending > 0 {
			return models.ECChecklist{}, NewConflictError("cannot activate while %d pending checks remain", pending)
		}
	}
	stored.Status = newStatus
	stored.ModifiedBy = actor
	stored.ModifiedDate = time.Now().UTC()
	fake.checklists[key] = stored
	return fake.checklistWithChecks(id)
}

// UpdateCheck for FakeDAO.
func (fake *FakeDAO) UpdateCheck(checklistID []byte, checkID []byte, patch CheckPatch, actor string) (CheckUpdate, error) {
	if fake.Err != nil {
		return CheckUpdate{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if _, err := models.ParseCheckStatus(patch.Status.String()); err != nil {
		return CheckUpdate{}, NewValidationError("%v", err)
	}
	key := hex.EncodeToString(checkID)
	stored, ok := fake.checks[key]
	if !ok || hex.EncodeToString(stored.ChecklistID) != hex.EncodeToString(checklistID) {
		return CheckUpdate{}, NewNotFoundError("check does not exist in this checklist")
	}
	checklist, ok := fake.checklists[hex.EncodeToString(checklistID)]
	if !ok {
		return CheckUpdate{}, NewNotFoundError("checklist does not exist")
	}

	now := time.Now().UTC()
	priorStatus := stored.Status
	stored.Status = patch.Status
	stored.Notes = overlayNullString(stored.Notes, patch.Notes)
	stored.Evidence = overlayNullString(stored.Evidence, patch.Evidence)
	if patch.Status == models.CheckStatusPending {
		stored.CheckedBy = models.NullString{}
		stored.CheckedAt = models.NullTime{}
	} else {
		stored.CheckedBy = models.ToNullString(actor)
		stored.CheckedAt = models.ToNullTime(now)
	}
	stored.ModifiedBy = actor
	stored.ModifiedDate = now
	fake.checks[key] = stored

	pending := fake.pendingCount(hex.EncodeToString(checklistID))
	return CheckUpdate{
		Check:              stored,
		PriorStatus:        priorStatus,
		ChecklistStatus:    checklist.Status,
		PendingCount:       pending,
		ReadyForActivation: checklist.Status == models.ChecklistStatusDraft && pending == 0,
	}, nil
}

// GetStatusCounts for FakeDAO.
func (fake *FakeDAO) GetStatusCounts(checklistID []byte) (models.StatusCounts, error) {
	if fake.Err != nil {
		return models.StatusCounts{}, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	withChecks, err := fake.checklistWithChecks(checklistID)
	if err != nil {
		return models.StatusCounts{}, err
	}
	return withChecks.Counts, nil
}

// GetPendingCount for FakeDAO.
func (fake *FakeDAO) GetPendingCount(checklistID []byte) (int, error) {
	if fake.Err != nil {
		return 0, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if _, ok := fake.checklists[hex.EncodeToString(checklistID)]; !ok {
		return 0, NewNotFoundError("checklist does not exist")
	}
	return fake.pendingCount(hex.EncodeToString(checklistID)), nil
}

// pendingCount tallies pending checks for a checklist key. Callers hold the
// mutex.
func (fake *FakeDAO) pendingCount(checklistKey string) int {
	pending := 0
	for _, check := range fake.checks {
		if hex.EncodeToString(check.ChecklistID) == checklistKey && check.Status == models.CheckStatusPending {
			pending++
		}
	}
	return pending
}

// SectionExists for FakeDAO.
func (fake *FakeDAO) SectionExists(refCode string) (bool, error) {
	if fake.Err != nil {
		return false, fake.Err
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.sections[refCode], nil
}

// GetDBState for FakeDAO.
func (fake *FakeDAO) GetDBState() (models.DBState, error) {
	if fake.Err != nil {
		return models.DBState{}, fake.Err
	}
	return fake.DBStateData, nil
}

// GetLogger for FakeDAO.
func (fake *FakeDAO) GetLogger() *zap.Logger {
	if fake.Logger == nil {
		return zap.NewNop()
	}
	return fake.Logger
}
