package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"scout-assist/config"
	"scout-assist/internal/authz"
	"scout-assist/internal/llm"
	"scout-assist/internal/model"
	"scout-assist/internal/repository"
)

// ── 测试辅助 ──

type mockRepos struct {
	users      *mockUserRepo
	jobTypes   *mockJobTypeRepo
	rules      *mockOutputRuleRepo
	templates  *mockTemplateRepo
	teams      *mockTeamRepo
	history    *mockHistoryRepo
	usage      *mockUsageRepo
	audit      *mockAuditRepo
	repository *repository.Repository
}

func newMockRepos() *mockRepos {
	teams := newMockTeamRepo()
	templates := newMockTemplateRepo(teams)
	users := newMockUserRepo()
	templates.users = users
	teams.users = users
	m := &mockRepos{
		users:     users,
		jobTypes:  newMockJobTypeRepo(templates),
		rules:     newMockOutputRuleRepo(teams),
		templates: templates,
		teams:     teams,
		history:   newMockHistoryRepo(),
		usage:     &mockUsageRepo{},
		audit:     &mockAuditRepo{},
	}
	m.repository = &repository.Repository{
		User:       m.users,
		JobType:    m.jobTypes,
		OutputRule: m.rules,
		Template:   m.templates,
		Team:       m.teams,
		History:    m.history,
		Usage:      m.usage,
		Audit:      m.audit,
	}
	return m
}

func testPolicy() *authz.Policy {
	p, err := authz.NewPolicy(config.DefaultRoles())
	if err != nil {
		panic(err)
	}
	return p
}

func principalOf(u *model.User) authz.Principal {
	return authz.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

var mockClock = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	user.ID = m.nextID
	if user.Status == "" {
		user.Status = model.UserStatusActive
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.CreatedAt = mockClock
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if !filter.Scope.Contains(u.ID) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(u.Username, filter.Keyword) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockUserRepo) add(username, role string) *model.User {
	u := &model.User{Username: username, PasswordHash: mustHash("password123"), Role: role}
	_ = m.Create(context.Background(), u)
	return u
}

// ── Mock JobTypeRepository ──

type mockJobTypeRepo struct {
	items     map[uint]*model.JobType
	nextID    uint
	templates *mockTemplateRepo
}

func newMockJobTypeRepo(templates *mockTemplateRepo) *mockJobTypeRepo {
	return &mockJobTypeRepo{items: make(map[uint]*model.JobType), templates: templates}
}

func (m *mockJobTypeRepo) Create(_ context.Context, jt *model.JobType) error {
	m.nextID++
	jt.ID = m.nextID
	jt.CreatedAt = mockClock.Add(time.Duration(jt.ID) * time.Second)
	cp := *jt
	m.items[jt.ID] = &cp
	return nil
}

func (m *mockJobTypeRepo) GetByID(_ context.Context, id uint) (*model.JobType, error) {
	if jt, ok := m.items[id]; ok {
		cp := *jt
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobTypeRepo) GetByName(_ context.Context, name string) (*model.JobType, error) {
	for _, jt := range m.items {
		if jt.Name == name {
			cp := *jt
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobTypeRepo) List(_ context.Context) ([]model.JobType, error) {
	var result []model.JobType
	for _, jt := range m.items {
		result = append(result, *jt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockJobTypeRepo) Update(_ context.Context, jt *model.JobType) error {
	cp := *jt
	m.items[jt.ID] = &cp
	return nil
}

func (m *mockJobTypeRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockJobTypeRepo) CountTemplates(_ context.Context, id uint) (int64, error) {
	var n int64
	for _, t := range m.templates.items {
		if t.JobTypeID == id {
			n++
		}
	}
	return n, nil
}

func (m *mockJobTypeRepo) add(name, definition string) *model.JobType {
	jt := &model.JobType{Name: name, Definition: definition}
	_ = m.Create(context.Background(), jt)
	return jt
}

// ── Mock OutputRuleRepository ──

type mockOutputRuleRepo struct {
	rules  map[uint]*model.OutputRule
	nextID uint
	teams  *mockTeamRepo
}

func newMockOutputRuleRepo(teams *mockTeamRepo) *mockOutputRuleRepo {
	return &mockOutputRuleRepo{rules: make(map[uint]*model.OutputRule), teams: teams}
}

func (m *mockOutputRuleRepo) Create(_ context.Context, rule *model.OutputRule) error {
	m.nextID++
	rule.ID = m.nextID
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

func (m *mockOutputRuleRepo) GetByID(_ context.Context, id uint) (*model.OutputRule, error) {
	if r, ok := m.rules[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOutputRuleRepo) List(_ context.Context, filter repository.OutputRuleFilter) ([]model.OutputRule, error) {
	var result []model.OutputRule
	for _, r := range m.rules {
		if (filter.ActiveOnly || filter.VisibleTo != nil) && !r.IsActive {
			continue
		}
		if filter.VisibleTo != nil && !m.teams.ruleVisibleTo(r.ID, *filter.VisibleTo) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockOutputRuleRepo) Update(_ context.Context, rule *model.OutputRule) error {
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

func (m *mockOutputRuleRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.rules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *mockOutputRuleRepo) add(name, text string) *model.OutputRule {
	r := &model.OutputRule{Name: name, RuleText: text, IsActive: true}
	_ = m.Create(context.Background(), r)
	return r
}

// ── Mock TemplateRepository ──

type mockTemplateRepo struct {
	items       map[uint]*model.Template
	assignments map[uint]map[uint]bool // templateID → userIDs
	nextID      uint
	teams       *mockTeamRepo
	users       *mockUserRepo
	dupErr      error
}

func newMockTemplateRepo(teams *mockTeamRepo) *mockTemplateRepo {
	return &mockTemplateRepo{
		items:       make(map[uint]*model.Template),
		assignments: make(map[uint]map[uint]bool),
		teams:       teams,
	}
}

func (m *mockTemplateRepo) Create(_ context.Context, tpl *model.Template, assignUserIDs []uint) error {
	for _, t := range m.items {
		if t.Name == tpl.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	tpl.ID = m.nextID
	tpl.CreatedAt = mockClock
	cp := *tpl
	m.items[tpl.ID] = &cp
	m.assignments[tpl.ID] = make(map[uint]bool)
	for _, uid := range assignUserIDs {
		m.assignments[tpl.ID][uid] = true
	}
	return nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id uint) (*model.Template, error) {
	if t, ok := m.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTemplateRepo) GetByName(_ context.Context, name string) (*model.Template, error) {
	for _, t := range m.items {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTemplateRepo) List(ctx context.Context, filter repository.TemplateFilter) ([]model.Template, error) {
	var result []model.Template
	for _, t := range m.items {
		if filter.JobTypeID != nil && t.JobTypeID != *filter.JobTypeID {
			continue
		}
		if filter.VisibleTo != nil {
			if ok, _ := m.IsVisibleTo(ctx, t.ID, *filter.VisibleTo); !ok {
				continue
			}
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTemplateRepo) Update(_ context.Context, tpl *model.Template) error {
	cp := *tpl
	m.items[tpl.ID] = &cp
	return nil
}

func (m *mockTemplateRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	delete(m.assignments, id)
	return nil
}

func (m *mockTemplateRepo) IsVisibleTo(_ context.Context, templateID, userID uint) (bool, error) {
	if m.assignments[templateID][userID] {
		return true, nil
	}
	return m.teams.templateVisibleTo(templateID, userID), nil
}

func (m *mockTemplateRepo) IsAssignedTo(_ context.Context, templateID, userID uint) (bool, error) {
	return m.assignments[templateID][userID], nil
}

func (m *mockTemplateRepo) ListAssignedUsers(ctx context.Context, templateID uint) ([]model.User, error) {
	return m.users.ListByIDs(ctx, m.assignedIDs(templateID))
}

func (m *mockTemplateRepo) ReplaceAssignments(_ context.Context, templateID uint, userIDs []uint) error {
	set := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}
	m.assignments[templateID] = set
	return nil
}

// Duplicate 与真实实现一致：失败时不留下任何新行
func (m *mockTemplateRepo) Duplicate(ctx context.Context, srcID uint, newName string, opts repository.DuplicateOptions) (*model.Template, error) {
	src, ok := m.items[srcID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if m.dupErr != nil {
		return nil, m.dupErr
	}

	cp := *src
	cp.ID = 0
	cp.Name = newName
	cp.CreatedBy = &opts.ActorID
	cp.UpdatedBy = &opts.ActorID

	var assign []uint
	if opts.CopyAssignments {
		assign = m.assignedIDs(srcID)
	} else if opts.AssignUserID != 0 {
		assign = []uint{opts.AssignUserID}
	}
	if err := m.Create(ctx, &cp, assign); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (m *mockTemplateRepo) assignedIDs(templateID uint) []uint {
	var ids []uint
	for uid := range m.assignments[templateID] {
		ids = append(ids, uid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams     map[uint]*model.Team
	members   map[uint]map[uint]*model.TeamMember // teamID → userID → member
	templates map[uint][]uint
	rules     map[uint][]uint
	nextID    uint
	users     *mockUserRepo
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{
		teams:     make(map[uint]*model.Team),
		members:   make(map[uint]map[uint]*model.TeamMember),
		templates: make(map[uint][]uint),
		rules:     make(map[uint][]uint),
	}
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	for _, t := range m.teams {
		if t.Name == team.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	team.ID = m.nextID
	team.CreatedAt = mockClock
	cp := *team
	m.teams[team.ID] = &cp
	m.members[team.ID] = make(map[uint]*model.TeamMember)
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id uint) (*model.Team, error) {
	if t, ok := m.teams[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) GetByName(_ context.Context, name string) (*model.Team, error) {
	for _, t := range m.teams {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) List(_ context.Context) ([]model.TeamSummary, error) {
	var result []model.TeamSummary
	for id, t := range m.teams {
		row := model.TeamSummary{Team: *t}
		for _, mem := range m.members[id] {
			row.MemberCount++
			if mem.IsManager {
				row.ManagerCount++
			}
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTeamRepo) ListByUser(_ context.Context, userID uint) ([]model.Team, error) {
	var result []model.Team
	for id, t := range m.teams {
		if _, ok := m.members[id][userID]; ok {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTeamRepo) Update(_ context.Context, team *model.Team) error {
	cp := *team
	m.teams[team.ID] = &cp
	return nil
}

func (m *mockTeamRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.teams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.teams, id)
	delete(m.members, id)
	delete(m.templates, id)
	delete(m.rules, id)
	return nil
}

func (m *mockTeamRepo) AddMember(_ context.Context, member *model.TeamMember) error {
	if _, ok := m.members[member.TeamID][member.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *member
	cp.CreatedAt = mockClock
	m.members[member.TeamID][member.UserID] = &cp
	return nil
}

func (m *mockTeamRepo) GetMember(_ context.Context, teamID, userID uint) (*model.TeamMember, error) {
	if mem, ok := m.members[teamID][userID]; ok {
		cp := *mem
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) SetManager(_ context.Context, teamID, userID uint, isManager bool) error {
	mem, ok := m.members[teamID][userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	mem.IsManager = isManager
	return nil
}

func (m *mockTeamRepo) RemoveMember(_ context.Context, teamID, userID uint) error {
	if _, ok := m.members[teamID][userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.members[teamID], userID)
	return nil
}

func (m *mockTeamRepo) ListMembers(_ context.Context, teamID uint) ([]model.TeamMember, error) {
	var result []model.TeamMember
	for _, mem := range m.members[teamID] {
		cp := *mem
		if m.users != nil {
			if u, ok := m.users.users[mem.UserID]; ok {
				uc := *u
				cp.User = &uc
			}
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockTeamRepo) ManagedUserIDs(_ context.Context, managerID uint) ([]uint, error) {
	seen := map[uint]bool{managerID: true}
	ids := []uint{managerID}
	for _, members := range m.members {
		mgr, ok := members[managerID]
		if !ok || !mgr.IsManager {
			continue
		}
		for uid := range members {
			if !seen[uid] {
				seen[uid] = true
				ids = append(ids, uid)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockTeamRepo) ListTemplateIDs(_ context.Context, teamID uint) ([]uint, error) {
	return m.templates[teamID], nil
}

func (m *mockTeamRepo) ReplaceTemplates(_ context.Context, teamID uint, templateIDs []uint) error {
	m.templates[teamID] = dedupe(templateIDs)
	return nil
}

func (m *mockTeamRepo) ListOutputRuleIDs(_ context.Context, teamID uint) ([]uint, error) {
	return m.rules[teamID], nil
}

func (m *mockTeamRepo) ReplaceOutputRules(_ context.Context, teamID uint, ruleIDs []uint) error {
	m.rules[teamID] = dedupe(ruleIDs)
	return nil
}

func (m *mockTeamRepo) templateVisibleTo(templateID, userID uint) bool {
	for teamID, ids := range m.templates {
		if _, ok := m.members[teamID][userID]; !ok {
			continue
		}
		for _, id := range ids {
			if id == templateID {
				return true
			}
		}
	}
	return false
}

func (m *mockTeamRepo) ruleVisibleTo(ruleID, userID uint) bool {
	for teamID, ids := range m.rules {
		if _, ok := m.members[teamID][userID]; !ok {
			continue
		}
		for _, id := range ids {
			if id == ruleID {
				return true
			}
		}
	}
	return false
}

// ── Mock HistoryRepository ──

type mockHistoryRepo struct {
	rows      map[uint]*model.GenerationHistory
	nextID    uint
	createErr error
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{rows: make(map[uint]*model.GenerationHistory)}
}

func (m *mockHistoryRepo) Create(_ context.Context, h *model.GenerationHistory) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	h.ID = m.nextID
	if h.CreatedAt.IsZero() {
		h.CreatedAt = mockClock.Add(time.Duration(h.ID) * time.Minute)
	}
	cp := *h
	m.rows[h.ID] = &cp
	return nil
}

func (m *mockHistoryRepo) GetByID(_ context.Context, id uint) (*model.GenerationHistory, error) {
	if h, ok := m.rows[id]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHistoryRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *mockHistoryRepo) List(_ context.Context, filter repository.HistoryFilter, offset, limit int) ([]model.GenerationHistory, int64, error) {
	all := m.filtered(filter)
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockHistoryRepo) Each(_ context.Context, filter repository.HistoryFilter, batchSize int, fn func([]model.GenerationHistory) error) error {
	all := m.filtered(filter)
	for start := 0; start < len(all); start += batchSize {
		end := start + batchSize
		if end > len(all) {
			end = len(all)
		}
		if err := fn(all[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockHistoryRepo) filtered(filter repository.HistoryFilter) []model.GenerationHistory {
	var all []model.GenerationHistory
	for _, h := range m.rows {
		if !filter.Scope.Contains(h.UserID) {
			continue
		}
		if filter.UserID != nil && h.UserID != *filter.UserID {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(h.StudentProfile+h.GeneratedComment, filter.Keyword) {
			continue
		}
		all = append(all, *h)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

// ── Mock UsageRepository ──

type mockUsageRepo struct {
	logs      []model.UsageLog
	createErr error
}

func (m *mockUsageRepo) Create(_ context.Context, log *model.UsageLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	log.ID = uint(len(m.logs) + 1)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = mockClock
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockUsageRepo) ListSince(_ context.Context, since time.Time) ([]model.UsageLog, error) {
	var result []model.UsageLog
	for _, l := range m.logs {
		if since.IsZero() || !l.CreatedAt.Before(since) {
			result = append(result, l)
		}
	}
	return result, nil
}

// ── Mock AuditRepository ──

type mockAuditRepo struct {
	logins      []model.LoginLog
	activities  []model.ActivityLog
	loginErr    error
	activityErr error
}

func (m *mockAuditRepo) CreateLoginLog(_ context.Context, log *model.LoginLog) error {
	if m.loginErr != nil {
		return m.loginErr
	}
	log.ID = uint(len(m.logins) + 1)
	m.logins = append(m.logins, *log)
	return nil
}

func (m *mockAuditRepo) CreateActivityLog(_ context.Context, log *model.ActivityLog) error {
	if m.activityErr != nil {
		return m.activityErr
	}
	log.ID = uint(len(m.activities) + 1)
	m.activities = append(m.activities, *log)
	return nil
}

func (m *mockAuditRepo) ListLoginLogs(_ context.Context, filter repository.LogFilter, offset, limit int) ([]model.LoginLog, int64, error) {
	var all []model.LoginLog
	for _, l := range m.logins {
		if filter.Scope.Contains(l.UserID) && (filter.UserID == nil || *filter.UserID == l.UserID) {
			all = append(all, l)
		}
	}
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockAuditRepo) ListActivityLogs(_ context.Context, filter repository.LogFilter, offset, limit int) ([]model.ActivityLog, int64, error) {
	var all []model.ActivityLog
	for _, l := range m.activities {
		if !filter.Scope.Contains(l.UserID) {
			continue
		}
		if filter.UserID != nil && *filter.UserID != l.UserID {
			continue
		}
		if filter.Action != "" && filter.Action != l.Action {
			continue
		}
		all = append(all, l)
	}
	return page(all, offset, limit), int64(len(all)), nil
}

// ── Mock Generator ──

type mockGenerator struct {
	calls   int
	lastReq llm.Request
	result  *llm.Result
	err     error
}

func (g *mockGenerator) Generate(_ context.Context, req llm.Request) (*llm.Result, error) {
	g.calls++
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

// ── 通用 ──

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
